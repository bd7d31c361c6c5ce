package hardware

// OutputPin is one digital output. Set(true) energizes the load; the
// driver owns the electrical polarity.
type OutputPin interface {
	Set(active bool) error
}

// Driver binds logical pins to a GPIO backend. The rpio driver talks to
// the Raspberry Pi header; the memory driver serves tests and
// deployments without hardware attached.
type Driver interface {
	Open() error
	Close() error
	OutputPin(pin int, activeLow bool) (OutputPin, error)
}
