package govee

import (
	"strings"
	"sync"
	"time"
)

// namePrefix is the advertised-name prefix Govee beacons carry.
const namePrefix = "Govee"

// DeviceState is the mutable per-device record held by the Registry.
type DeviceState struct {
	Address string
	Name    string

	// LastPublish is advanced by the pipeline after an event has been
	// accepted for publishing; the zero value means "never published".
	LastPublish time.Time

	// Reading is nil until the first decoded broadcast arrives.
	Reading *Reading

	// RSSI keeps the last known nonzero value. Govee firmware reports 0
	// on some broadcasts; a zero must not clobber a real measurement.
	RSSI int16
}

// Registry maps hardware addresses to device state. One mutex guards the
// whole map: the device population in a deployment is small and fixed, so
// per-address locking buys nothing. The registry is an explicit value owned
// by the pipeline, not package state, so independent pipelines (and tests)
// never share devices.
type Registry struct {
	mu      sync.Mutex
	devices map[string]*DeviceState
}

func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*DeviceState)}
}

// Register creates a device entry the first time an advertisement named
// with the Govee product prefix is seen for the address, and returns the
// existing entry unchanged on every later call. Names without the prefix
// never create entries. Govee firmware advertises names like
// "Govee_H5074'1A2B"; everything from the first apostrophe on is a
// firmware-appended suffix and is stripped from the display name.
func (r *Registry) Register(address, rawName string) (*DeviceState, bool) {
	if !strings.HasPrefix(rawName, namePrefix) {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.devices[address]; ok {
		return st, false
	}
	name, _, _ := strings.Cut(rawName, "'")
	st := &DeviceState{Address: address, Name: name}
	r.devices[address] = st
	return st, true
}

// Lookup returns the state for a known address, or nil.
func (r *Registry) Lookup(address string) *DeviceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.devices[address]
}

// Update stores a decoded reading on a known device. RSSI is overwritten
// only when the incoming value is nonzero, preserving the last good value.
// Unknown addresses are ignored: readings only count for devices that have
// introduced themselves by name first.
func (r *Registry) Update(address string, reading Reading, rssi int16) *DeviceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.devices[address]
	if !ok {
		return nil
	}
	st.Reading = &reading
	if rssi != 0 {
		st.RSSI = rssi
	}
	return st
}

// Len reports the number of known devices.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}
