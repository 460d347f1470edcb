package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/metrics"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/session"
	"github.com/mmynk/fairshare/internal/storage"
)

// entry serializes mutate-and-save for one session so snapshots reach the
// store in the order they were produced.
type entry struct {
	mu sync.Mutex
	s  *session.Session

	// deleted and evicted are set under mu once the entry leaves the map.
	deleted bool
	evicted bool

	// lastUsed is guarded by SessionService.mu.
	lastUsed time.Time
}

// SessionService keeps live bill sessions in memory and autosaves every
// successful mutation to storage. Idle sessions are dropped from memory by
// EvictIdle and reloaded on next use.
type SessionService struct {
	store         storage.Store
	opts          session.Options
	defaultPeople int
	metrics       *metrics.Metrics
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// Config controls how new sessions are created.
type Config struct {
	Session       session.Options
	DefaultPeople int
	Metrics       *metrics.Metrics
}

// NewSessionService creates a new SessionService with the given storage backend.
func NewSessionService(store storage.Store, cfg Config) *SessionService {
	return &SessionService{
		store:         store,
		opts:          cfg.Session,
		defaultPeople: cfg.DefaultPeople,
		metrics:       cfg.Metrics,
		now:           time.Now,
		sessions:      make(map[string]*entry),
	}
}

// load returns the live session, reading it from storage on first use.
func (s *SessionService) load(ctx context.Context, sessionID string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[sessionID]; ok {
		e.lastUsed = s.now()
		return e, nil
	}

	snap, err := s.store.LoadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	e := &entry{s: session.FromSnapshot(snap, s.opts), lastUsed: s.now()}
	s.sessions[sessionID] = e
	s.metrics.SetActiveSessions(len(s.sessions))
	slog.Debug("Session loaded from storage", "session_id", sessionID)
	return e, nil
}

// acquire returns the live session with its lock held. An entry evicted
// while we waited is reloaded; a deleted one reports not found.
func (s *SessionService) acquire(ctx context.Context, sessionID string) (*entry, error) {
	for {
		e, err := s.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		switch {
		case e.deleted:
			e.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
		case e.evicted:
			e.mu.Unlock()
			continue
		}
		return e, nil
	}
}

// mutate applies fn to the session and persists the result. If saving fails
// the in-memory session is rolled back to its previous state.
func (s *SessionService) mutate(ctx context.Context, sessionID, op string, fn func(*session.Session) error) (models.Snapshot, error) {
	e, err := s.acquire(ctx, sessionID)
	if err != nil {
		s.metrics.ObserveMutation(op, err)
		return models.Snapshot{}, err
	}
	defer e.mu.Unlock()

	prev := e.s.Snapshot()
	if err := fn(e.s); err != nil {
		slog.Warn("Session mutation rejected", "session_id", sessionID, "operation", op, "error", err)
		s.metrics.ObserveMutation(op, err)
		return models.Snapshot{}, err
	}

	next := e.s.Snapshot()
	if err := s.store.SaveSnapshot(ctx, sessionID, next); err != nil {
		e.s = session.FromSnapshot(prev, s.opts)
		slog.Error("Failed to save session", "session_id", sessionID, "operation", op, "error", err)
		s.metrics.ObserveMutation(op, err)
		return models.Snapshot{}, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Debug("Session updated", "session_id", sessionID, "operation", op, "step", next.Step)
	s.metrics.ObserveMutation(op, nil)
	return next, nil
}

// read runs fn against the live session without persisting anything.
func (s *SessionService) read(ctx context.Context, sessionID string, fn func(*session.Session)) error {
	e, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	fn(e.s)
	return nil
}

// forget removes e from the map if it is still the live entry for sessionID.
// Callers hold e.mu.
func (s *SessionService) forget(sessionID string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sessionID] == e {
		delete(s.sessions, sessionID)
	}
	s.metrics.SetActiveSessions(len(s.sessions))
}

// EvictIdle drops sessions unused for longer than maxIdle from memory and
// returns how many were dropped. Sessions busy with a mutation are skipped.
func (s *SessionService) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	evicted := 0
	for id, e := range s.sessions {
		if e.lastUsed.After(cutoff) || !e.mu.TryLock() {
			continue
		}
		e.evicted = true
		delete(s.sessions, id)
		e.mu.Unlock()
		evicted++
	}
	if evicted > 0 {
		s.metrics.SetActiveSessions(len(s.sessions))
		slog.Debug("Evicted idle sessions", "count", evicted, "remaining", len(s.sessions))
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *SessionService) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(maxIdle)
		}
	}
}

// CreateSession starts a new bill with the default number of people.
func (s *SessionService) CreateSession(ctx context.Context) (string, models.Snapshot, error) {
	sessionID := uuid.New().String()
	sess := session.New(s.opts)
	if err := sess.SetPeopleCount(s.defaultPeople); err != nil {
		return "", models.Snapshot{}, err
	}

	snap := sess.Snapshot()
	if err := s.store.SaveSnapshot(ctx, sessionID, snap); err != nil {
		slog.Error("CreateSession failed", "error", err)
		return "", models.Snapshot{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	s.sessions[sessionID] = &entry{s: sess, lastUsed: s.now()}
	s.metrics.SetActiveSessions(len(s.sessions))
	s.mu.Unlock()

	slog.Info("Session created", "session_id", sessionID, "people", len(snap.People))
	return sessionID, snap, nil
}

// GetSession returns the current snapshot of a session.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.read(ctx, sessionID, func(sess *session.Session) {
		snap = sess.Snapshot()
	})
	return snap, err
}

// DeleteSession removes a session from memory and storage. It waits for any
// mutation in flight so a pending save cannot bring the session back.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	e, err := s.acquire(ctx, sessionID)
	if err != nil {
		slog.Warn("DeleteSession failed", "session_id", sessionID, "error", err)
		return err
	}
	defer e.mu.Unlock()

	if err := s.store.DeleteSnapshot(ctx, sessionID); err != nil {
		slog.Warn("DeleteSession failed", "session_id", sessionID, "error", err)
		return err
	}
	e.deleted = true
	s.forget(sessionID, e)
	slog.Info("Session deleted", "session_id", sessionID)
	return nil
}

// ListSessions returns every stored session.
func (s *SessionService) ListSessions(ctx context.Context) ([]storage.SessionInfo, error) {
	return s.store.ListSessions(ctx)
}

// SetPeopleCount grows or truncates the people registry.
func (s *SessionService) SetPeopleCount(ctx context.Context, sessionID string, n int) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "set_people_count", func(sess *session.Session) error {
		return sess.SetPeopleCount(n)
	})
}

// RenamePerson changes one person's name.
func (s *SessionService) RenamePerson(ctx context.Context, sessionID, personID, name string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "rename_person", func(sess *session.Session) error {
		return sess.RenamePerson(personID, name)
	})
}

// ResetAllNames restores default names.
func (s *SessionService) ResetAllNames(ctx context.Context, sessionID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "reset_names", func(sess *session.Session) error {
		sess.ResetAllNames()
		return nil
	})
}

// AddItem adds quantity units of an item and returns the stored item.
func (s *SessionService) AddItem(ctx context.Context, sessionID, name string, unitPrice models.Cents, quantity int, mode models.PricingMode) (models.ExpenseItem, error) {
	var item models.ExpenseItem
	_, err := s.mutate(ctx, sessionID, "add_item", func(sess *session.Session) error {
		var err error
		item, err = sess.AddItemBatch(name, unitPrice, quantity, mode)
		return err
	})
	if err != nil {
		return models.ExpenseItem{}, err
	}
	return item, nil
}

// RemoveItem deletes an item.
func (s *SessionService) RemoveItem(ctx context.Context, sessionID, itemID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "remove_item", func(sess *session.Session) error {
		return sess.RemoveItem(itemID)
	})
}

// Increment assigns one more unit or share.
func (s *SessionService) Increment(ctx context.Context, sessionID, itemID, personID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "increment", func(sess *session.Session) error {
		return sess.Increment(itemID, personID)
	})
}

// Decrement removes one unit or share.
func (s *SessionService) Decrement(ctx context.Context, sessionID, itemID, personID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "decrement", func(sess *session.Session) error {
		return sess.Decrement(itemID, personID)
	})
}

// TogglePerson puts a person in or out of an item.
func (s *SessionService) TogglePerson(ctx context.Context, sessionID, itemID, personID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "toggle_person", func(sess *session.Session) error {
		return sess.TogglePerson(itemID, personID)
	})
}

// ToggleAll selects or clears everyone on an item.
func (s *SessionService) ToggleAll(ctx context.Context, sessionID, itemID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "toggle_all", func(sess *session.Session) error {
		return sess.ToggleAll(itemID)
	})
}

// UpdateConfig replaces the bill configuration.
func (s *SessionService) UpdateConfig(ctx context.Context, sessionID string, cfg models.BillConfig) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "update_config", func(sess *session.Session) error {
		return sess.UpdateConfig(cfg)
	})
}

// SetOverride sets or clears (nil) a person's fixed payment.
func (s *SessionService) SetOverride(ctx context.Context, sessionID, personID string, value *models.Cents) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "set_override", func(sess *session.Session) error {
		return sess.SetOverride(personID, value)
	})
}

// SetStep moves the session to step.
func (s *SessionService) SetStep(ctx context.Context, sessionID string, step models.Step) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "set_step", func(sess *session.Session) error {
		return sess.SetStep(step)
	})
}

// Reset starts a new round with the same people and config.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (models.Snapshot, error) {
	return s.mutate(ctx, sessionID, "reset", func(sess *session.Session) error {
		sess.Reset()
		return nil
	})
}

// Allocations computes what everyone owes right now.
func (s *SessionService) Allocations(ctx context.Context, sessionID string) (*calculator.Result, error) {
	res, _, err := s.Summary(ctx, sessionID)
	return res, err
}

// TableTotals returns raw sums for the expenses step.
func (s *SessionService) TableTotals(ctx context.Context, sessionID string) (calculator.TableTotals, error) {
	var totals calculator.TableTotals
	err := s.read(ctx, sessionID, func(sess *session.Session) {
		totals = sess.TableTotals()
	})
	return totals, err
}

// Summary returns the allocation and the table totals computed from the same
// state of the session.
func (s *SessionService) Summary(ctx context.Context, sessionID string) (*calculator.Result, calculator.TableTotals, error) {
	var (
		res    *calculator.Result
		totals calculator.TableTotals
	)
	err := s.read(ctx, sessionID, func(sess *session.Session) {
		res, totals = sess.Summary()
	})
	if err != nil {
		return nil, calculator.TableTotals{}, err
	}
	s.metrics.ObserveAllocation(len(res.Allocations))
	slog.Debug("Allocation computed",
		"session_id", sessionID,
		"grand_total", res.GrandTotalOriginal,
		"remaining", res.RemainingBill,
		"total_manual", res.TotalManual,
	)
	return res, totals, nil
}
