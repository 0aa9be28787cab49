// Package discovery emits Home Assistant MQTT discovery messages for
// newly sighted sensors, so the platform auto-configures display entities
// without manual YAML.
package discovery

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// RetainedPublisher is the slice of the MQTT client discovery needs:
// config messages must be retained so entities survive a platform restart.
type RetainedPublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// DeviceInfo is the HA device registry block shared by all entities of one
// physical sensor, so the platform groups them under a single device page.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model,omitempty"`
}

// SensorConfig is the JSON payload of one HA MQTT sensor discovery message.
type SensorConfig struct {
	Name              string     `json:"name"`
	UniqueID          string     `json:"unique_id"`
	StateTopic        string     `json:"state_topic"`
	ValueTemplate     string     `json:"value_template"`
	UnitOfMeasurement string     `json:"unit_of_measurement,omitempty"`
	DeviceClass       string     `json:"device_class,omitempty"`
	StateClass        string     `json:"state_class,omitempty"`
	EntityCategory    string     `json:"entity_category,omitempty"`
	Device            DeviceInfo `json:"device"`
}

// entity describes one field of the sensor-event record as an HA entity.
type entity struct {
	field          string
	name           string
	unit           string
	deviceClass    string
	entityCategory string
}

var entities = []entity{
	{field: "temperature", name: "Temperature", unit: "°C", deviceClass: "temperature"},
	{field: "humidity", name: "Humidity", unit: "%", deviceClass: "humidity"},
	{field: "battery", name: "Battery", unit: "%", deviceClass: "battery", entityCategory: "diagnostic"},
	{field: "rssi", name: "Signal strength", unit: "dBm", deviceClass: "signal_strength", entityCategory: "diagnostic"},
}

// Announcer publishes one retained discovery config per entity under
// <prefix>/sensor/<uid>_<field>/config.
type Announcer struct {
	publisher RetainedPublisher
	prefix    string
	logger    *slog.Logger
}

func NewAnnouncer(publisher RetainedPublisher, prefix string, logger *slog.Logger) *Announcer {
	return &Announcer{publisher: publisher, prefix: prefix, logger: logger}
}

// Announce publishes the discovery configs for one device. The caller is
// responsible for invoking it at most once per device.
func (a *Announcer) Announce(address, name, stateTopic string) error {
	uid := UniqueID(address)
	device := DeviceInfo{
		Identifiers:  []string{uid},
		Name:         name,
		Manufacturer: "Govee",
	}

	for _, e := range entities {
		cfg := SensorConfig{
			Name:              fmt.Sprintf("%s %s", name, e.name),
			UniqueID:          fmt.Sprintf("%s_%s", uid, e.field),
			StateTopic:        stateTopic,
			ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", e.field),
			UnitOfMeasurement: e.unit,
			DeviceClass:       e.deviceClass,
			StateClass:        "measurement",
			EntityCategory:    e.entityCategory,
			Device:            device,
		}
		payload, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal discovery config: %w", err)
		}
		topic := fmt.Sprintf("%s/sensor/%s/config", a.prefix, cfg.UniqueID)
		if err := a.publisher.PublishRetained(topic, payload); err != nil {
			return fmt.Errorf("announce %s: %w", topic, err)
		}
	}

	a.logger.Info("discovery announced", "address", address, "name", name, "unique_id", uid)
	return nil
}

// UniqueID derives a stable HA unique id from a hardware address,
// lower-cased with address separators removed.
func UniqueID(address string) string {
	r := strings.NewReplacer(":", "", "-", "")
	return "govee_" + strings.ToLower(r.Replace(address))
}
