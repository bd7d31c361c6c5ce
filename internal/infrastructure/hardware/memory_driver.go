package hardware

import (
	"fmt"
	"sync"
)

// MemoryDriver keeps pin levels in memory. It records every transition
// so tests can assert actuation sequences, and can inject write faults
// per pin.
type MemoryDriver struct {
	mu     sync.Mutex
	levels map[int]bool
	failed map[int]bool
	events []string
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		levels: make(map[int]bool),
		failed: make(map[int]bool),
	}
}

func (d *MemoryDriver) Open() error  { return nil }
func (d *MemoryDriver) Close() error { return nil }

func (d *MemoryDriver) OutputPin(pin int, activeLow bool) (OutputPin, error) {
	return &memPin{driver: d, pin: pin}, nil
}

// FailPin makes every subsequent write to pin return an error.
func (d *MemoryDriver) FailPin(pin int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed[pin] = true
}

// Active reports whether pin is currently energized.
func (d *MemoryDriver) Active(pin int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[pin]
}

// Events returns a copy of all recorded pin transitions in order.
func (d *MemoryDriver) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	copy(out, d.events)
	return out
}

type memPin struct {
	driver *MemoryDriver
	pin    int
}

func (p *memPin) Set(active bool) error {
	d := p.driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed[p.pin] {
		return fmt.Errorf("pin %d write failed", p.pin)
	}
	d.levels[p.pin] = active
	state := "off"
	if active {
		state = "on"
	}
	d.events = append(d.events, fmt.Sprintf("pin%d=%s", p.pin, state))
	return nil
}
