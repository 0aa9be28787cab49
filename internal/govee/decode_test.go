package govee

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("H5074 positive reading", func(t *testing.T) {
		data := h5074Payload(2130, 5520, 88)
		layout, ok := Classify(data)
		if !ok {
			t.Fatal("Classify() ok = false, want true")
		}
		got := Decode(data, layout, now)
		if got.Temperature != 21.30 {
			t.Errorf("Temperature = %v, want 21.30", got.Temperature)
		}
		if got.Humidity != 55.20 {
			t.Errorf("Humidity = %v, want 55.20", got.Humidity)
		}
		if got.Battery != 88 {
			t.Errorf("Battery = %d, want 88", got.Battery)
		}
		if !got.At.Equal(now) {
			t.Errorf("At = %v, want %v", got.At, now)
		}
	})

	t.Run("H5179 sub-zero temperature", func(t *testing.T) {
		data := h5179Payload(-550, 4010, 64)
		layout, ok := Classify(data)
		if !ok {
			t.Fatal("Classify() ok = false, want true")
		}
		got := Decode(data, layout, now)
		if got.Temperature != -5.50 {
			t.Errorf("Temperature = %v, want -5.50", got.Temperature)
		}
		if got.Humidity != 40.10 {
			t.Errorf("Humidity = %v, want 40.10", got.Humidity)
		}
		if got.Battery != 64 {
			t.Errorf("Battery = %d, want 64", got.Battery)
		}
	})
}

func TestTwosComplement16_RoundTrip(t *testing.T) {
	// Encode every plausible temperature (-200.00..200.00 °C in
	// hundredths) as the on-air little-endian field and recover it.
	for want := -20000; want <= 20000; want++ {
		var field [2]byte
		binary.LittleEndian.PutUint16(field[:], uint16(int16(want)))
		raw := binary.LittleEndian.Uint16(field[:])
		if got := twosComplement16(raw); got != want {
			t.Fatalf("twosComplement16(%#04x) = %d, want %d", raw, got, want)
		}
	}
}
