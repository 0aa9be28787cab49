package ble

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tinygo.org/x/bluetooth"
)

// ManufacturerField is one manufacturer-specific element of an
// advertisement, keyed by the Bluetooth SIG company identifier.
type ManufacturerField struct {
	CompanyID uint16
	Data      []byte
}

// Raw reconstructs the on-air manufacturer data element: the two company-ID
// bytes in transmission (little-endian) order followed by the vendor
// payload. Vendors like Govee define their framing over this whole
// sequence, so offsets are counted from the company-ID bytes.
func (f ManufacturerField) Raw() []byte {
	raw := make([]byte, 0, 2+len(f.Data))
	raw = append(raw, byte(f.CompanyID), byte(f.CompanyID>>8))
	return append(raw, f.Data...)
}

// Advertisement is a single observation of a broadcasting device.
type Advertisement struct {
	Address          string
	LocalName        string
	ManufacturerData []ManufacturerField
	RSSI             int16
	SeenAt           time.Time
}

type Options struct {
	Adapter string // "hci0" by default
}

// Listener wraps BlueZ scanning with context cancellation. It delivers
// every observed advertisement; telling sensor frames apart from unrelated
// traffic belongs to the consumer.
type Listener struct {
	adapter *bluetooth.Adapter
	opts    Options
}

func NewListener(opts Options) *Listener {
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}

	return &Listener{
		adapter: bluetooth.NewAdapter(opts.Adapter),
		opts:    opts,
	}
}

func (l *Listener) Run(ctx context.Context, onAdvertisement func(Advertisement)) error {
	slog.Info("ble: enabling adapter", "adapter", l.opts.Adapter)
	if err := l.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", l.opts.Adapter, err)
	}

	go func() {
		<-ctx.Done()
		_ = l.adapter.StopScan()
	}()

	slog.Info("ble: scanning started", "adapter", l.opts.Adapter)

	// adapter.Scan blocks until StopScan() or error.
	err := l.adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
		adv := Advertisement{
			Address:   r.Address.String(),
			LocalName: r.LocalName(),
			RSSI:      r.RSSI,
			SeenAt:    time.Now(),
		}
		for _, md := range r.ManufacturerData() {
			adv.ManufacturerData = append(adv.ManufacturerData, ManufacturerField{
				CompanyID: md.CompanyID,
				Data:      append([]byte(nil), md.Data...),
			})
		}

		if onAdvertisement != nil {
			onAdvertisement(adv)
		}
	})

	// If ctx canceled, treat as clean shutdown.
	if ctx.Err() != nil {
		slog.Info("ble: scanning stopped (context canceled)")
		return nil
	}

	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}

	slog.Info("ble: scanning stopped")
	return nil
}
