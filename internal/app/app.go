package app

import (
	"context"
	"log/slog"

	"github.com/nullsumme/govee-ble-to-mqtt/internal/ble"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/config"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/discovery"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/govee"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/mqtt"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/pipeline"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("initializing bridge",
		"mqtt_broker", cfg.MQTTBroker,
		"mqtt_port", cfg.MQTTPort,
		"mqtt_topic", cfg.MQTTTopic,
		"log_interval", cfg.LogInterval,
		"discovery", cfg.DiscoveryEnabled,
	)

	mqttClient, err := mqtt.NewClient(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect()

	go func() {
		// Connect to MQTT broker with retry and backoff
		if err := mqttClient.Connect(ctx); err != nil {
			slog.Error("mqtt connect failed", "error", err)
		}
	}()

	var announcer pipeline.Announcer
	if cfg.DiscoveryEnabled {
		announcer = discovery.NewAnnouncer(mqttClient, cfg.DiscoveryPrefix, slog.Default())
	}

	pipe := pipeline.New(govee.NewRegistry(), mqttClient, announcer, slog.Default(), pipeline.Options{
		Topic:         cfg.MQTTTopic,
		LogInterval:   cfg.LogInterval,
		IntakeBuffer:  cfg.IntakeBuffer,
		PublishBuffer: cfg.PublishBuffer,
		LogRaw:        cfg.LogRaw,
	})

	listener := ble.NewListener(ble.Options{Adapter: cfg.BLEAdapter})
	go func() {
		if err := listener.Run(ctx, pipe.Handle); err != nil {
			slog.Error("ble listener failed", "error", err)
		}
	}()

	err = pipe.Run(ctx)

	slog.Info("bridge shutting down")
	return err
}
