package hardware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSolenoidPin = 17
	testBuzzerPin   = 22
)

func newTestController(t *testing.T, hold time.Duration, buzzerPin int) (*Controller, *MemoryDriver) {
	t.Helper()
	driver := NewMemoryDriver()
	c, err := NewController(driver, Config{
		Hold:        hold,
		ChannelPins: map[int]int{1: testSolenoidPin, 2: 27},
		ActiveLow:   true,
		BuzzerPin:   buzzerPin,
	})
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c, driver
}

func TestOpenSequence(t *testing.T) {
	c, driver := newTestController(t, 10*time.Millisecond, testBuzzerPin)

	require.NoError(t, c.Open(context.Background(), 1))

	// Two opening buzzer pulses, energize, hold, closing pulse,
	// de-energize.
	assert.Equal(t, []string{
		"pin22=on", "pin22=off",
		"pin22=on", "pin22=off",
		"pin17=on",
		"pin22=on", "pin22=off",
		"pin17=off",
	}, driver.Events())
	assert.False(t, driver.Active(testSolenoidPin))
}

func TestOpenWithoutBuzzer(t *testing.T) {
	c, driver := newTestController(t, 10*time.Millisecond, 0)

	require.NoError(t, c.Open(context.Background(), 1))

	assert.Equal(t, []string{"pin17=on", "pin17=off"}, driver.Events())
}

func TestOpenUnknownChannel(t *testing.T) {
	c, _ := newTestController(t, 10*time.Millisecond, 0)

	err := c.Open(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestOpenCancellationDeEnergizes(t *testing.T) {
	c, driver := newTestController(t, time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Open(ctx, 1) }()

	// Wait for the channel to energize, then cancel mid-hold.
	require.Eventually(t, func() bool {
		return driver.Active(testSolenoidPin)
	}, time.Second, time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Open did not return after cancellation")
	}
	assert.False(t, driver.Active(testSolenoidPin), "channel must be de-energized on cancellation")
}

func TestOpenChannelBusy(t *testing.T) {
	c, driver := newTestController(t, time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Open(ctx, 1) }()

	require.Eventually(t, func() bool {
		return driver.Active(testSolenoidPin)
	}, time.Second, time.Millisecond)

	err := c.Open(context.Background(), 1)
	assert.ErrorIs(t, err, ErrChannelBusy)

	// A different channel is independent: it proceeds past the slot
	// check even while channel 1 is held.
	expired, expire := context.WithCancel(context.Background())
	expire()
	err = c.Open(expired, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, driver.Active(27))

	cancel()
	<-done
}

func TestOpenReleasesSlotAfterCycle(t *testing.T) {
	c, _ := newTestController(t, time.Millisecond, 0)

	require.NoError(t, c.Open(context.Background(), 1))
	require.NoError(t, c.Open(context.Background(), 1), "slot must be free after a completed cycle")
}

func TestOpenFaultStillReturnsError(t *testing.T) {
	driver := NewMemoryDriver()
	c, err := NewController(driver, Config{
		Hold:        time.Millisecond,
		ChannelPins: map[int]int{1: testSolenoidPin},
		ActiveLow:   true,
	})
	require.NoError(t, err)
	defer c.Shutdown()

	driver.FailPin(testSolenoidPin)

	err = c.Open(context.Background(), 1)
	assert.ErrorIs(t, err, ErrHardwareFault)

	// A faulted cycle must still hand the slot back.
	err = c.Open(context.Background(), 1)
	assert.ErrorIs(t, err, ErrHardwareFault)
	assert.NotErrorIs(t, err, ErrChannelBusy)
}

func TestBuzzerFaultAbortsBeforeEnergize(t *testing.T) {
	driver := NewMemoryDriver()
	c, err := NewController(driver, Config{
		Hold:        time.Millisecond,
		ChannelPins: map[int]int{1: testSolenoidPin},
		ActiveLow:   true,
		BuzzerPin:   testBuzzerPin,
	})
	require.NoError(t, err)
	defer c.Shutdown()

	driver.FailPin(testBuzzerPin)

	err = c.Open(context.Background(), 1)
	assert.ErrorIs(t, err, ErrHardwareFault)
	assert.False(t, driver.Active(testSolenoidPin), "solenoid must never energize when the cue fails")
}

func TestShutdownDeEnergizesEverything(t *testing.T) {
	c, driver := newTestController(t, time.Minute, testBuzzerPin)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Open(ctx, 1) }()

	require.Eventually(t, func() bool {
		return driver.Active(testSolenoidPin)
	}, time.Second, time.Millisecond)

	c.Shutdown()
	assert.False(t, driver.Active(testSolenoidPin))
	assert.False(t, driver.Active(testBuzzerPin))

	cancel()
	<-done
}
