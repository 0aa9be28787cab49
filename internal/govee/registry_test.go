package govee

import (
	"testing"
	"time"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("creates entry for vendor-prefixed name", func(t *testing.T) {
		r := NewRegistry()
		st, created := r.Register("A4:C1:38:00:00:01", "Govee_H5074_1A2B")
		if !created {
			t.Fatal("created = false, want true")
		}
		if st.Name != "Govee_H5074_1A2B" {
			t.Errorf("Name = %q, want Govee_H5074_1A2B", st.Name)
		}
		if !st.LastPublish.IsZero() {
			t.Errorf("LastPublish = %v, want zero", st.LastPublish)
		}
		if st.Reading != nil {
			t.Errorf("Reading = %v, want nil", st.Reading)
		}
	})

	t.Run("truncates display name at the first apostrophe", func(t *testing.T) {
		r := NewRegistry()
		st, _ := r.Register("A4:C1:38:00:00:02", "GoveeX'ABC'DEF")
		if st.Name != "GoveeX" {
			t.Errorf("Name = %q, want GoveeX", st.Name)
		}
	})

	t.Run("ignores names without the vendor prefix", func(t *testing.T) {
		r := NewRegistry()
		for _, name := range []string{"", "Tile", "govee_lowercase", "MyGovee"} {
			if st, created := r.Register("A4:C1:38:00:00:03", name); st != nil || created {
				t.Errorf("Register(%q) = (%v, %v), want (nil, false)", name, st, created)
			}
		}
		if r.Len() != 0 {
			t.Errorf("Len() = %d, want 0", r.Len())
		}
	})

	t.Run("re-registration is idempotent", func(t *testing.T) {
		r := NewRegistry()
		addr := "A4:C1:38:00:00:04"
		first, _ := r.Register(addr, "Govee_H5179'X")

		// Accumulate some state, then sight the device again.
		reading := Reading{Temperature: 20, Humidity: 50, Battery: 90, At: time.Unix(100, 0)}
		r.Update(addr, reading, -60)
		first.LastPublish = time.Unix(100, 0)

		again, created := r.Register(addr, "Govee_H5179'X")
		if created {
			t.Error("created = true on re-registration, want false")
		}
		if again != first {
			t.Error("Register returned a different DeviceState identity")
		}
		if again.Reading == nil || again.Reading.Temperature != 20 {
			t.Error("re-registration reset the stored reading")
		}
		if !again.LastPublish.Equal(time.Unix(100, 0)) {
			t.Errorf("LastPublish = %v, want %v", again.LastPublish, time.Unix(100, 0))
		}
	})
}

func TestRegistry_Update(t *testing.T) {
	t.Run("stores reading and nonzero rssi", func(t *testing.T) {
		r := NewRegistry()
		addr := "A4:C1:38:00:00:05"
		r.Register(addr, "Govee_H5074")

		st := r.Update(addr, Reading{Temperature: 21.3, Humidity: 55.2, Battery: 88, At: time.Unix(10, 0)}, -72)
		if st == nil {
			t.Fatal("Update() = nil, want state")
		}
		if st.RSSI != -72 {
			t.Errorf("RSSI = %d, want -72", st.RSSI)
		}
	})

	t.Run("zero rssi does not clobber the last known value", func(t *testing.T) {
		r := NewRegistry()
		addr := "A4:C1:38:00:00:06"
		r.Register(addr, "Govee_H5074")

		r.Update(addr, Reading{Temperature: 21.3, Humidity: 55.2, Battery: 88}, -72)
		st := r.Update(addr, Reading{Temperature: 21.4, Humidity: 55.0, Battery: 88}, 0)
		if st.RSSI != -72 {
			t.Errorf("RSSI = %d, want -72 retained", st.RSSI)
		}
		if st.Reading.Temperature != 21.4 {
			t.Errorf("Temperature = %v, want 21.4 (reading itself must update)", st.Reading.Temperature)
		}
	})

	t.Run("unknown address is ignored", func(t *testing.T) {
		r := NewRegistry()
		if st := r.Update("unknown", Reading{}, -50); st != nil {
			t.Errorf("Update() = %v, want nil", st)
		}
	})
}
