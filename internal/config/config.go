package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	LogRaw   bool

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string

	LogInterval time.Duration
	BLEAdapter  string

	DiscoveryEnabled bool
	DiscoveryPrefix  string

	IntakeBuffer  int
	PublishBuffer int
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	logRaw, err := parseBool("LOG_RAW", false)
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "govee-ble-to-mqtt"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "govee/sensor_data"
	}

	logIntervalStr := strings.TrimSpace(os.Getenv("LOG_INTERVAL"))
	if logIntervalStr == "" {
		logIntervalStr = "59s"
	}
	logInterval, err := time.ParseDuration(logIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_INTERVAL %q: %w", logIntervalStr, err)
	}
	if logInterval <= 0 {
		return Config{}, fmt.Errorf("LOG_INTERVAL must be positive, got %v", logInterval)
	}

	bleAdapter := strings.TrimSpace(os.Getenv("BLE_ADAPTER"))
	if bleAdapter == "" {
		bleAdapter = "hci0"
	}

	discoveryEnabled, err := parseBool("DISCOVERY_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	discoveryPrefix := strings.TrimSpace(os.Getenv("DISCOVERY_PREFIX"))
	if discoveryPrefix == "" {
		discoveryPrefix = "homeassistant"
	}

	intakeBuffer, err := parsePositiveInt("INTAKE_BUFFER", 256)
	if err != nil {
		return Config{}, err
	}

	publishBuffer, err := parsePositiveInt("PUBLISH_BUFFER", 64)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:           appEnv,
		LogLevel:         level,
		LogRaw:           logRaw,
		MQTTBroker:       mqttBroker,
		MQTTPort:         mqttPort,
		MQTTClientID:     mqttClientID,
		MQTTUsername:     strings.TrimSpace(os.Getenv("MQTT_USERNAME")),
		MQTTPassword:     os.Getenv("MQTT_PASSWORD"),
		MQTTTopic:        mqttTopic,
		LogInterval:      logInterval,
		BLEAdapter:       bleAdapter,
		DiscoveryEnabled: discoveryEnabled,
		DiscoveryPrefix:  discoveryPrefix,
		IntakeBuffer:     intakeBuffer,
		PublishBuffer:    publishBuffer,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func parseBool(name string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

func parsePositiveInt(name string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return v, nil
}
