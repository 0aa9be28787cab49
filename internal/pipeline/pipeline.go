// Package pipeline wires advertisement intake to MQTT publishing: classify,
// decode, track per-device state, debounce, emit.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nullsumme/govee-ble-to-mqtt/internal/ble"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/govee"
	"github.com/nullsumme/govee-ble-to-mqtt/internal/utils"
)

// Publisher is the slice of the MQTT client the pipeline publishes through.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Announcer advertises a newly publishing device to a discovery protocol.
// A nil Announcer disables discovery.
type Announcer interface {
	Announce(address, name, stateTopic string) error
}

// SensorEvent is one finalized reading handed to the publish sink. Address
// and name ride along for logging and discovery but are not part of the
// serialized record.
type SensorEvent struct {
	Address string `json:"-"`
	Name    string `json:"-"`

	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Battery     int     `json:"battery"`
	RSSI        int16   `json:"rssi"`
	Timestamp   int64   `json:"timestamp"`

	// firstPublish asks the publish worker to announce the device before
	// the event goes out.
	firstPublish bool
}

type Options struct {
	Topic         string
	LogInterval   time.Duration
	IntakeBuffer  int
	PublishBuffer int
	LogRaw        bool
	ShutdownGrace time.Duration
}

// Pipeline processes a single ordered stream of advertisements. Intake is
// decoupled from decoding by a bounded channel, and decoding from broker
// round trips by a second one, so a slow broker cannot stall the scan
// callback and cost readings.
type Pipeline struct {
	opts      Options
	registry  *govee.Registry
	publisher Publisher
	announcer Announcer
	logger    *slog.Logger

	intake chan ble.Advertisement
	outbox chan SensorEvent
}

func New(registry *govee.Registry, publisher Publisher, announcer Announcer, logger *slog.Logger, opts Options) *Pipeline {
	if opts.LogInterval <= 0 {
		opts.LogInterval = govee.DefaultLogInterval
	}
	if opts.IntakeBuffer <= 0 {
		opts.IntakeBuffer = 256
	}
	if opts.PublishBuffer <= 0 {
		opts.PublishBuffer = 64
	}
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = 3 * time.Second
	}
	return &Pipeline{
		opts:      opts,
		registry:  registry,
		publisher: publisher,
		announcer: announcer,
		logger:    logger,
		intake:    make(chan ble.Advertisement, opts.IntakeBuffer),
		outbox:    make(chan SensorEvent, opts.PublishBuffer),
	}
}

// Handle enqueues one advertisement for processing. It never blocks the
// scan callback: when the intake queue is full the advertisement is dropped
// and the beacon's sub-second rebroadcast delivers the same data shortly.
func (p *Pipeline) Handle(adv ble.Advertisement) {
	select {
	case p.intake <- adv:
	default:
		p.logger.Warn("intake queue full, dropping advertisement", "address", adv.Address)
	}
}

// Run processes advertisements until ctx is cancelled, then drains queued
// publishes for at most the configured grace period.
func (p *Pipeline) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.publishLoop()
	}()

	for {
		select {
		case <-ctx.Done():
			close(p.outbox)
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(p.opts.ShutdownGrace):
				p.logger.Warn("publish drain timed out, abandoning queued events", "grace", p.opts.ShutdownGrace)
			}
			return ctx.Err()
		case adv := <-p.intake:
			p.process(adv)
		}
	}
}

func (p *Pipeline) process(adv ble.Advertisement) {
	if st, created := p.registry.Register(adv.Address, adv.LocalName); created {
		p.logger.Info("found device", "address", adv.Address, "name", st.Name)
	}

	for _, field := range adv.ManufacturerData {
		raw := field.Raw()
		if p.opts.LogRaw {
			p.logger.Debug("manufacturer data", "address", adv.Address, "data", utils.BytesToHex(raw))
		}

		layout, ok := govee.Classify(raw)
		if !ok {
			continue
		}

		st := p.registry.Lookup(adv.Address)
		if st == nil {
			// Sensor frame from a device that never advertised its name;
			// without a registration there is nothing to attach it to.
			continue
		}

		now := adv.SeenAt
		reading := govee.Decode(raw, layout, now)
		st = p.registry.Update(adv.Address, reading, adv.RSSI)

		if !govee.ShouldPublish(st, now, p.opts.LogInterval) {
			continue
		}

		ev := SensorEvent{
			Address:      st.Address,
			Name:         st.Name,
			Temperature:  reading.Temperature,
			Humidity:     reading.Humidity,
			Battery:      reading.Battery,
			RSSI:         st.RSSI,
			Timestamp:    now.Unix(),
			firstPublish: st.LastPublish.IsZero(),
		}

		// Commit before the broker round trip: a publish failure drops
		// this one reading instead of retrying against a beacon that
		// rebroadcasts the same data within the second anyway.
		st.LastPublish = now

		select {
		case p.outbox <- ev:
		default:
			p.logger.Warn("publish queue full, dropping event", "address", ev.Address, "name", ev.Name)
		}
	}
}

func (p *Pipeline) publishLoop() {
	for ev := range p.outbox {
		if ev.firstPublish && p.announcer != nil {
			if err := p.announcer.Announce(ev.Address, ev.Name, p.opts.Topic); err != nil {
				p.logger.Warn("discovery announcement failed", "address", ev.Address, "error", err)
			}
		}

		payload, err := json.Marshal(ev)
		if err != nil {
			p.logger.Error("marshal event", "address", ev.Address, "error", err)
			continue
		}
		if err := p.publisher.Publish(p.opts.Topic, payload); err != nil {
			p.logger.Warn("publish failed, dropping reading",
				"address", ev.Address,
				"name", ev.Name,
				"temperature", ev.Temperature,
				"humidity", ev.Humidity,
				"error", err,
			)
			continue
		}
		p.logger.Info("reading published",
			"address", ev.Address,
			"name", ev.Name,
			"temperature", ev.Temperature,
			"humidity", ev.Humidity,
			"battery", ev.Battery,
			"rssi", ev.RSSI,
		)
	}
}
