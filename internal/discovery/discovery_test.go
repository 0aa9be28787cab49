package discovery

import (
	"encoding/json"
	"log/slog"
	"testing"
)

type retainedCall struct {
	topic   string
	payload []byte
}

type fakeRetained struct {
	calls []retainedCall
}

func (f *fakeRetained) PublishRetained(topic string, payload []byte) error {
	f.calls = append(f.calls, retainedCall{topic, append([]byte(nil), payload...)})
	return nil
}

func TestUniqueID(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{name: "colon separators removed", address: "A4:C1:38:AA:BB:CC", want: "govee_a4c138aabbcc"},
		{name: "dash separators removed", address: "A4-C1-38-AA-BB-CC", want: "govee_a4c138aabbcc"},
		{name: "already bare", address: "a4c138aabbcc", want: "govee_a4c138aabbcc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueID(tt.address); got != tt.want {
				t.Errorf("UniqueID(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestAnnouncer_Announce(t *testing.T) {
	sink := &fakeRetained{}
	a := NewAnnouncer(sink, "homeassistant", slog.Default())

	if err := a.Announce("A4:C1:38:AA:BB:CC", "GoveeX", "govee/sensor_data"); err != nil {
		t.Fatalf("Announce() error = %v, want nil", err)
	}

	if len(sink.calls) != len(entities) {
		t.Fatalf("published %d configs, want %d", len(sink.calls), len(entities))
	}

	wantTopics := map[string]bool{
		"homeassistant/sensor/govee_a4c138aabbcc_temperature/config": false,
		"homeassistant/sensor/govee_a4c138aabbcc_humidity/config":    false,
		"homeassistant/sensor/govee_a4c138aabbcc_battery/config":     false,
		"homeassistant/sensor/govee_a4c138aabbcc_rssi/config":        false,
	}
	for _, c := range sink.calls {
		if _, ok := wantTopics[c.topic]; !ok {
			t.Errorf("unexpected config topic %q", c.topic)
			continue
		}
		wantTopics[c.topic] = true
	}
	for topic, seen := range wantTopics {
		if !seen {
			t.Errorf("missing config topic %q", topic)
		}
	}

	var cfg SensorConfig
	if err := json.Unmarshal(sink.calls[0].payload, &cfg); err != nil {
		t.Fatalf("config payload is not valid JSON: %v", err)
	}
	if cfg.StateTopic != "govee/sensor_data" {
		t.Errorf("StateTopic = %q, want govee/sensor_data", cfg.StateTopic)
	}
	if cfg.ValueTemplate != "{{ value_json.temperature }}" {
		t.Errorf("ValueTemplate = %q, want {{ value_json.temperature }}", cfg.ValueTemplate)
	}
	if cfg.UniqueID != "govee_a4c138aabbcc_temperature" {
		t.Errorf("UniqueID = %q, want govee_a4c138aabbcc_temperature", cfg.UniqueID)
	}
	if len(cfg.Device.Identifiers) != 1 || cfg.Device.Identifiers[0] != "govee_a4c138aabbcc" {
		t.Errorf("Device.Identifiers = %v, want [govee_a4c138aabbcc]", cfg.Device.Identifiers)
	}
	if cfg.Device.Name != "GoveeX" {
		t.Errorf("Device.Name = %q, want GoveeX", cfg.Device.Name)
	}
}
