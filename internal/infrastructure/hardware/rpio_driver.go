package hardware

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIODriver drives BCM GPIO pins through /dev/gpiomem.
type RPIODriver struct{}

func NewRPIODriver() *RPIODriver {
	return &RPIODriver{}
}

func (d *RPIODriver) Open() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open gpio memory range: %w", err)
	}
	return nil
}

func (d *RPIODriver) Close() error {
	return rpio.Close()
}

func (d *RPIODriver) OutputPin(pin int, activeLow bool) (OutputPin, error) {
	p := rpio.Pin(pin)
	p.Output()

	out := &rpioPin{pin: p, activeLow: activeLow}
	// Start de-energized.
	if err := out.Set(false); err != nil {
		return nil, err
	}
	return out, nil
}

type rpioPin struct {
	pin       rpio.Pin
	activeLow bool
}

func (p *rpioPin) Set(active bool) error {
	if active != p.activeLow {
		p.pin.High()
	} else {
		p.pin.Low()
	}
	return nil
}
