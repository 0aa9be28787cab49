package govee

import (
	"encoding/binary"
	"time"
)

// Reading is one decoded sensor measurement.
type Reading struct {
	Temperature float64 // °C, two decimal places
	Humidity    float64 // %RH, two decimal places
	Battery     int     // 0-100
	At          time.Time
}

// Decode extracts the fixed-offset (temperature, humidity, battery) triple
// from a payload already matched by Classify. The classifier's length check
// guarantees the triple fits inside the payload.
func Decode(data []byte, layout DeviceLayout, at time.Time) Reading {
	rawTemp := binary.LittleEndian.Uint16(data[layout.Offset:])
	rawHum := binary.LittleEndian.Uint16(data[layout.Offset+2:])
	batt := data[layout.Offset+4]
	return Reading{
		Temperature: float64(twosComplement16(rawTemp)) / 100.0,
		Humidity:    float64(rawHum) / 100.0,
		Battery:     int(batt),
		At:          at,
	}
}

// twosComplement16 reinterprets a raw unsigned 16-bit field as signed,
// recovering sub-zero temperatures.
func twosComplement16(v uint16) int {
	if v&0x8000 != 0 {
		return int(v) - (1 << 16)
	}
	return int(v)
}
