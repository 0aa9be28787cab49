package govee

import "time"

// DefaultLogInterval is the debounce window between publishes per device.
// Govee beacons rebroadcast every few hundred milliseconds; without the
// gate every rebroadcast would hit the bus.
const DefaultLogInterval = 59 * time.Second

// ShouldPublish reports whether the device is due for a publish: the
// debounce window must have strictly elapsed since the last publish and the
// device must hold a complete reading. The gate never mutates state; the
// caller advances LastPublish after committing to an emission, keeping the
// decision independently testable.
func ShouldPublish(st *DeviceState, now time.Time, interval time.Duration) bool {
	if st == nil || st.Reading == nil {
		return false
	}
	return now.Sub(st.LastPublish) > interval
}
