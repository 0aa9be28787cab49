package govee

import "encoding/binary"

// DeviceLayout describes the manufacturer-data framing of one Govee model.
// A payload matches a layout only when both the two-byte model prefix and
// the exact total length agree; prefix alone is not enough, since truncated
// or housekeeping frames can carry a matching prefix with the wrong length.
type DeviceLayout struct {
	Model  string
	Prefix uint16 // first two payload bytes, big-endian
	Length int    // exact expected payload length
	Offset int    // start of the (temp int16, hum uint16, batt uint8) triple
}

// layouts is the table of supported models. New models are added here, not
// with parsing logic changes.
var layouts = []DeviceLayout{
	{Model: "H5074", Prefix: 0x88EC, Length: 9, Offset: 3},
	{Model: "H5179", Prefix: 0x0188, Length: 11, Offset: 6},
}

// Classify returns the layout matching the given manufacturer data, if any.
// No match is a normal outcome: unrelated devices and Govee housekeeping
// broadcasts land here all the time.
func Classify(data []byte) (DeviceLayout, bool) {
	if len(data) < 2 {
		return DeviceLayout{}, false
	}
	prefix := binary.BigEndian.Uint16(data[:2])
	for _, l := range layouts {
		if prefix == l.Prefix && len(data) == l.Length {
			return l, true
		}
	}
	return DeviceLayout{}, false
}
