package hardware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smart-locker/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrUnknownChannel = errors.New("unknown actuator channel")
	ErrChannelBusy    = errors.New("actuator channel busy")
	ErrHardwareFault  = errors.New("actuator hardware fault")
)

const (
	openingPulse = 200 * time.Millisecond
	openingGap   = 100 * time.Millisecond
	closingPulse = 500 * time.Millisecond
)

// Config describes the physical channels the controller owns.
type Config struct {
	// Hold is how long a channel stays energized per open cycle.
	Hold time.Duration
	// ChannelPins maps channel ID to its GPIO pin.
	ChannelPins map[int]int
	// ActiveLow is the solenoid polarity.
	ActiveLow bool
	// BuzzerPin enables audio cues; zero leaves the controller silent.
	BuzzerPin int
}

// Controller sequences timed unlock cycles over exclusive actuator
// channels. Every exit path of Open de-energizes the channel, including
// cancellation and fault.
type Controller struct {
	driver   Driver
	hold     time.Duration
	buzzer   OutputPin // nil when audio feedback is not configured
	channels map[int]*channel

	shutdownOnce sync.Once
}

type channel struct {
	id   int
	pin  OutputPin
	slot chan struct{} // exclusivity token, capacity 1
}

func NewController(driver Driver, cfg Config) (*Controller, error) {
	if cfg.Hold <= 0 {
		cfg.Hold = 5 * time.Second
	}

	if err := driver.Open(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHardwareFault, err)
	}

	c := &Controller{
		driver:   driver,
		hold:     cfg.Hold,
		channels: make(map[int]*channel, len(cfg.ChannelPins)),
	}

	for id, pin := range cfg.ChannelPins {
		out, err := driver.OutputPin(pin, cfg.ActiveLow)
		if err != nil {
			_ = driver.Close()
			return nil, fmt.Errorf("%w: channel %d pin %d: %v", ErrHardwareFault, id, pin, err)
		}
		slot := make(chan struct{}, 1)
		slot <- struct{}{}
		c.channels[id] = &channel{id: id, pin: out, slot: slot}
	}

	if cfg.BuzzerPin > 0 {
		// The buzzer is always active-high.
		out, err := driver.OutputPin(cfg.BuzzerPin, false)
		if err != nil {
			_ = driver.Close()
			return nil, fmt.Errorf("%w: buzzer pin %d: %v", ErrHardwareFault, cfg.BuzzerPin, err)
		}
		c.buzzer = out
	}

	return c, nil
}

// Open runs one unlock cycle on the channel: two-pulse opening cue,
// energize, hold window, closing cue, de-energize. The hold is a
// cancellable suspension; on cancellation the channel is de-energized
// before Open returns. A concurrent Open on the same channel is
// rejected with ErrChannelBusy.
func (c *Controller) Open(ctx context.Context, channelID int) (err error) {
	ch, ok := c.channels[channelID]
	if !ok {
		return ErrUnknownChannel
	}

	select {
	case <-ch.slot:
	default:
		return ErrChannelBusy
	}
	defer func() { ch.slot <- struct{}{} }()

	if err := c.cue(ctx, 2, openingPulse, openingGap); err != nil {
		return err
	}

	if err := ch.pin.Set(true); err != nil {
		return fmt.Errorf("%w: channel %d: %v", ErrHardwareFault, channelID, err)
	}
	defer func() {
		if offErr := ch.pin.Set(false); offErr != nil {
			logger.Error("Failed to de-energize channel",
				zap.Int("channel", channelID),
				zap.Error(offErr),
			)
			if err == nil {
				err = fmt.Errorf("%w: channel %d: %v", ErrHardwareFault, channelID, offErr)
			}
		}
	}()

	timer := time.NewTimer(c.hold)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	return c.cue(ctx, 1, closingPulse, 0)
}

// Shutdown de-energizes every channel and releases the GPIO backend.
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		for id, ch := range c.channels {
			if err := ch.pin.Set(false); err != nil {
				logger.Error("Failed to de-energize channel on shutdown",
					zap.Int("channel", id),
					zap.Error(err),
				)
			}
		}
		if c.buzzer != nil {
			_ = c.buzzer.Set(false)
		}
		if err := c.driver.Close(); err != nil {
			logger.Error("Failed to close gpio driver", zap.Error(err))
		}
	})
}

func (c *Controller) cue(ctx context.Context, pulses int, on, gap time.Duration) error {
	if c.buzzer == nil {
		return nil
	}

	for i := 0; i < pulses; i++ {
		if err := c.buzzer.Set(true); err != nil {
			return fmt.Errorf("%w: buzzer: %v", ErrHardwareFault, err)
		}
		if err := sleep(ctx, on); err != nil {
			_ = c.buzzer.Set(false)
			return err
		}
		if err := c.buzzer.Set(false); err != nil {
			return fmt.Errorf("%w: buzzer: %v", ErrHardwareFault, err)
		}
		if gap > 0 && i < pulses-1 {
			if err := sleep(ctx, gap); err != nil {
				return err
			}
		}
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
