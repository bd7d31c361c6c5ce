package session

import (
	"context"
	"errors"
	"sync"
	"time"

	domainLocker "smart-locker/internal/domain/locker"
	"smart-locker/internal/infrastructure/hardware"
	"smart-locker/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionClosed = errors.New("session is closed")

// Registry is the occupancy ledger as the session sees it.
type Registry interface {
	ListState(ctx context.Context) ([]domainLocker.State, error)
	Assign(ctx context.Context, lockerID int, userID uuid.UUID, item string) (string, error)
	Release(ctx context.Context, lockerID int, userID uuid.UUID) (string, error)
}

// Actuator drives one exclusive physical channel per call.
type Actuator interface {
	Open(ctx context.Context, channelID int) error
}

// Event describes one occupancy transition for telemetry consumers.
type Event struct {
	Type      string    `json:"type"`
	LockerID  int       `json:"locker_id"`
	Username  string    `json:"username"`
	Item      string    `json:"item,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventAssigned      = "assigned"
	EventReleased      = "released"
	EventHardwareFault = "hardware_fault"
)

// EventSink receives occupancy events; implementations must not block.
type EventSink interface {
	Publish(Event)
}

// Broadcaster pushes the fresh ledger to live dashboard clients.
type Broadcaster interface {
	BroadcastState([]domainLocker.State)
}

type Outcome string

const (
	OutcomePlaced   Outcome = "placed"
	OutcomeClaimed  Outcome = "claimed"
	OutcomeDenied   Outcome = "denied"
	OutcomeConflict Outcome = "conflict"
)

// ToggleResult reports one interaction. Lockers always carries the
// state re-read after the attempt, successful or not.
type ToggleResult struct {
	Outcome  Outcome `json:"outcome"`
	LockerID int     `json:"locker_id"`
	Item     string  `json:"item,omitempty"`
	// HardwareFault is set when the occupancy write succeeded but the
	// actuation failed; the write is not rolled back automatically.
	HardwareFault bool `json:"hardware_fault,omitempty"`
	// CompensationAvailable tells the client a release can be offered
	// to undo the recorded occupancy.
	CompensationAvailable bool                 `json:"compensation_available,omitempty"`
	Lockers               []domainLocker.State `json:"lockers"`
}

// Session is the per-authenticated-user orchestrator of the
// click-to-toggle workflow. One interaction runs at a time; every
// interaction starts from a fresh ledger read.
type Session struct {
	UserID   uuid.UUID
	Username string

	registry  Registry
	actuator  Actuator
	channelOf map[int]int
	events    EventSink   // optional
	broadcast Broadcaster // optional

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func newSession(userID uuid.UUID, username string, registry Registry, actuator Actuator, channelOf map[int]int, events EventSink, broadcast Broadcaster) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		UserID:    userID,
		Username:  username,
		registry:  registry,
		actuator:  actuator,
		channelOf: channelOf,
		events:    events,
		broadcast: broadcast,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ListState reads the ledger fresh; nothing is cached across
// interactions.
func (s *Session) ListState(ctx context.Context) ([]domainLocker.State, error) {
	return s.registry.ListState(ctx)
}

// Toggle runs one interaction against the locker: place an item when it
// is free, claim the stored item when this user holds it, deny
// otherwise. The occupancy write happens before the actuation attempt.
func (s *Session) Toggle(ctx context.Context, lockerID int, item string) (*ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}

	states, err := s.registry.ListState(ctx)
	if err != nil {
		return nil, err
	}

	current := findState(states, lockerID)
	if current == nil {
		return nil, domainLocker.ErrLockerNotFound
	}

	switch current.RelativeTo(s.Username) {
	case domainLocker.Free:
		return s.place(ctx, lockerID, item)
	case domainLocker.OccupiedBySelf:
		return s.claim(ctx, lockerID)
	default:
		return &ToggleResult{
			Outcome:  OutcomeDenied,
			LockerID: lockerID,
			Lockers:  states,
		}, domainLocker.ErrNotOwner
	}
}

func (s *Session) place(ctx context.Context, lockerID int, item string) (*ToggleResult, error) {
	cleaned, err := s.registry.Assign(ctx, lockerID, s.UserID, item)
	if err != nil {
		if errors.Is(err, domainLocker.ErrAlreadyOccupied) {
			// Lost the occupancy race; re-read so the caller lands on
			// the winner's view.
			return s.conflict(ctx, lockerID, err)
		}
		return nil, err
	}

	s.publish(EventAssigned, lockerID, cleaned)

	result := &ToggleResult{
		Outcome:  OutcomePlaced,
		LockerID: lockerID,
		Item:     cleaned,
	}

	actErr := s.actuate(ctx, lockerID)
	s.finish(ctx, result, actErr, lockerID)

	return result, actErr
}

func (s *Session) claim(ctx context.Context, lockerID int) (*ToggleResult, error) {
	item, err := s.registry.Release(ctx, lockerID, s.UserID)
	if err != nil {
		if errors.Is(err, domainLocker.ErrNotOwner) || errors.Is(err, domainLocker.ErrLockerEmpty) {
			// Stale view; somebody changed the row since our read.
			return s.conflict(ctx, lockerID, err)
		}
		return nil, err
	}

	s.publish(EventReleased, lockerID, item)

	result := &ToggleResult{
		Outcome:  OutcomeClaimed,
		LockerID: lockerID,
		Item:     item,
	}

	actErr := s.actuate(ctx, lockerID)
	s.finish(ctx, result, actErr, lockerID)

	return result, actErr
}

// actuate opens the locker's channel under both the request context and
// the session context, so a logout mid-hold cancels the actuation; the
// controller de-energizes the channel before the cancellation
// completes.
func (s *Session) actuate(ctx context.Context, lockerID int) error {
	channelID, ok := s.channelOf[lockerID]
	if !ok {
		return hardware.ErrUnknownChannel
	}

	actCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	s.wg.Add(1)
	defer s.wg.Done()

	return s.actuator.Open(actCtx, channelID)
}

// finish re-derives the ledger after the attempt and annotates the
// result when the actuation failed after a successful write.
func (s *Session) finish(ctx context.Context, result *ToggleResult, actErr error, lockerID int) {
	if actErr != nil {
		result.HardwareFault = true
		result.CompensationAvailable = true
		s.publish(EventHardwareFault, lockerID, result.Item)
		logger.Error("Actuation failed after occupancy write",
			zap.Int("locker_id", lockerID),
			zap.String("username", s.Username),
			zap.Error(actErr),
		)
	}

	states, err := s.registry.ListState(ctx)
	if err != nil {
		logger.Warn("Failed to re-read locker state", zap.Error(err))
		return
	}
	result.Lockers = states

	if s.broadcast != nil {
		s.broadcast.BroadcastState(states)
	}
}

func (s *Session) conflict(ctx context.Context, lockerID int, cause error) (*ToggleResult, error) {
	result := &ToggleResult{
		Outcome:  OutcomeConflict,
		LockerID: lockerID,
	}
	if states, err := s.registry.ListState(ctx); err == nil {
		result.Lockers = states
	}
	return result, cause
}

func (s *Session) publish(eventType string, lockerID int, item string) {
	if s.events == nil {
		return
	}
	s.events.Publish(Event{
		Type:      eventType,
		LockerID:  lockerID,
		Username:  s.Username,
		Item:      item,
		Timestamp: time.Now(),
	})
}

// Close cancels any in-flight actuation and waits for it to finish, so
// no channel this session owns is left energized and no pending
// actuation is orphaned.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

func findState(states []domainLocker.State, lockerID int) *domainLocker.State {
	for i := range states {
		if states[i].LockerID == lockerID {
			return &states[i]
		}
	}
	return nil
}
