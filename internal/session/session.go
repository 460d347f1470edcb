// Package session holds the state of one bill being split and exposes the
// mutation API used by the presentation layer.
//
// Every mutation clones the current state, applies the change to the clone
// and publishes it under a single write lock, so readers never observe a
// partially applied change.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/ledger"
	"github.com/mmynk/fairshare/internal/models"
)

// Options controls naming and ID generation. Zero values fall back to defaults.
type Options struct {
	// FirstPersonName is the default name of the first person ("Eu").
	FirstPersonName string

	// PersonNamePrefix builds the default names of everyone else ("Pessoa 2", ...).
	PersonNamePrefix string

	// NewID generates person and item IDs. Defaults to random UUIDs.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.FirstPersonName == "" {
		o.FirstPersonName = "Eu"
	}
	if o.PersonNamePrefix == "" {
		o.PersonNamePrefix = "Pessoa"
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.New().String() }
	}
	return o
}

type state struct {
	step      models.Step
	people    []models.Person
	config    models.BillConfig
	items     []models.ExpenseItem
	overrides map[string]models.Cents
}

func (st *state) clone() *state {
	c := &state{
		step:      st.step,
		people:    append([]models.Person(nil), st.people...),
		config:    st.config,
		items:     make([]models.ExpenseItem, len(st.items)),
		overrides: make(map[string]models.Cents, len(st.overrides)),
	}
	for i, item := range st.items {
		c.items[i] = item.Clone()
	}
	for id, v := range st.overrides {
		c.overrides[id] = v
	}
	return c
}

func (st *state) input() calculator.Input {
	return calculator.Input{
		People:    st.people,
		Items:     st.items,
		Config:    st.config,
		Overrides: st.overrides,
	}
}

func (st *state) personIndex(id string) int {
	for i, p := range st.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (st *state) item(id string) (*models.ExpenseItem, error) {
	for i := range st.items {
		if st.items[i].ID == id {
			return &st.items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrItemNotFound, id)
}

func (st *state) personIDs() []string {
	ids := make([]string, len(st.people))
	for i, p := range st.people {
		ids[i] = p.ID
	}
	return ids
}

// Session is one bill being split. It is safe for concurrent use.
type Session struct {
	opts Options

	mu sync.RWMutex
	st *state
}

// New creates an empty session at the setup step with the default config.
func New(opts Options) *Session {
	return &Session{
		opts: opts.withDefaults(),
		st: &state{
			step:      models.StepSetup,
			config:    models.DefaultBillConfig(),
			overrides: make(map[string]models.Cents),
		},
	}
}

// FromSnapshot restores a session from its persisted shape.
func FromSnapshot(snap models.Snapshot, opts Options) *Session {
	s := New(opts)
	st := &state{
		step:      snap.Step,
		people:    append([]models.Person(nil), snap.People...),
		config:    snap.Config,
		items:     make([]models.ExpenseItem, len(snap.Items)),
		overrides: make(map[string]models.Cents, len(snap.ManualPayments)),
	}
	if st.step == "" {
		st.step = models.StepSetup
	}
	for i, item := range snap.Items {
		st.items[i] = item.Clone()
	}
	for id, v := range snap.ManualPayments {
		st.overrides[id] = v
	}
	s.st = st
	return s
}

// update applies fn to a copy of the current state and publishes the copy
// only if fn succeeds.
func (s *Session) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Session) current() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

// Snapshot returns a deep copy of the session in its persisted shape.
func (s *Session) Snapshot() models.Snapshot {
	st := s.current().clone()
	return models.Snapshot{
		SchemaVersion:  models.SnapshotSchemaVersion,
		Step:           st.step,
		People:         st.people,
		Config:         st.config,
		Items:          st.items,
		ManualPayments: st.overrides,
	}
}

// Step returns the current step.
func (s *Session) Step() models.Step {
	return s.current().step
}

// People returns a copy of the registry in order.
func (s *Session) People() []models.Person {
	return append([]models.Person(nil), s.current().people...)
}

// Config returns the current bill configuration.
func (s *Session) Config() models.BillConfig {
	return s.current().config
}

// Items returns deep copies of the expense items in insertion order.
func (s *Session) Items() []models.ExpenseItem {
	return s.current().clone().items
}

// Overrides returns a copy of the manual payments.
func (s *Session) Overrides() map[string]models.Cents {
	return s.current().clone().overrides
}

// Allocations computes the allocation from the current state. Nothing is cached.
func (s *Session) Allocations() *calculator.Result {
	return calculator.Allocate(s.current().input())
}

// TableTotals returns the raw sums for the expenses step.
func (s *Session) TableTotals() calculator.TableTotals {
	return calculator.CalculateTableTotals(s.current().input())
}

// Summary computes the allocation and table totals from one published state.
func (s *Session) Summary() (*calculator.Result, calculator.TableTotals) {
	in := s.current().input()
	return calculator.Allocate(in), calculator.CalculateTableTotals(in)
}

// SetStep moves to step. Any valid step may be entered from any other.
func (s *Session) SetStep(step models.Step) error {
	if _, err := models.ParseStep(string(step)); err != nil {
		return err
	}
	return s.update(func(st *state) error {
		st.step = step
		return nil
	})
}

// Reset returns to setup and clears items and overrides. People and config
// are kept for the next round at the same table.
func (s *Session) Reset() {
	_ = s.update(func(st *state) error {
		st.step = models.StepSetup
		st.items = nil
		st.overrides = make(map[string]models.Cents)
		return nil
	})
}

// UpdateConfig replaces the whole bill configuration.
func (s *Session) UpdateConfig(cfg models.BillConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.update(func(st *state) error {
		st.config = cfg
		return nil
	})
}

// SetOverride fixes what a person pays. A nil value clears the override.
//
// Negative values are rejected, and so are values that together with the
// other overrides would exceed the grand total by more than a cent.
func (s *Session) SetOverride(personID string, value *models.Cents) error {
	return s.update(func(st *state) error {
		if st.personIndex(personID) < 0 {
			return fmt.Errorf("%w: %s", models.ErrPersonNotFound, personID)
		}
		if value == nil {
			delete(st.overrides, personID)
			return nil
		}
		if *value < 0 {
			return fmt.Errorf("override for %s: %w", personID, models.ErrNegativeAmount)
		}

		grand := calculator.Allocate(st.input()).GrandTotalOriginal
		others := 0.0
		for _, p := range st.people {
			if v, ok := st.overrides[p.ID]; ok && p.ID != personID {
				others += v.Float()
			}
		}
		available := max(0, grand-others)
		if value.Float() > available+models.CentTolerance {
			return fmt.Errorf("%w: at most %.0f available, got %d",
				models.ErrOverrideExceedsBill, available, *value)
		}

		st.overrides[personID] = *value
		return nil
	})
}

// itemAssignment runs fn on the ledger of itemID after checking personID exists.
func (s *Session) itemAssignment(itemID, personID string, fn func(l *ledger.Ledger)) error {
	return s.update(func(st *state) error {
		item, err := st.item(itemID)
		if err != nil {
			return err
		}
		if st.personIndex(personID) < 0 {
			return fmt.Errorf("%w: %s", models.ErrPersonNotFound, personID)
		}
		if item.Assignments == nil {
			item.Assignments = ledger.New()
		}
		fn(item.Assignments)
		return nil
	})
}

// Increment assigns one more unit or share of itemID to personID.
func (s *Session) Increment(itemID, personID string) error {
	return s.itemAssignment(itemID, personID, func(l *ledger.Ledger) { l.Increment(personID) })
}

// Decrement removes one unit or share of itemID from personID. Removing from
// a person with none is a no-op.
func (s *Session) Decrement(itemID, personID string) error {
	return s.itemAssignment(itemID, personID, func(l *ledger.Ledger) { l.Decrement(personID) })
}

// TogglePerson puts personID in or out of itemID, ignoring share counts.
func (s *Session) TogglePerson(itemID, personID string) error {
	return s.itemAssignment(itemID, personID, func(l *ledger.Ledger) { l.TogglePerson(personID) })
}

// ToggleAll selects everyone for itemID, or clears everyone if all are selected.
func (s *Session) ToggleAll(itemID string) error {
	return s.update(func(st *state) error {
		item, err := st.item(itemID)
		if err != nil {
			return err
		}
		if item.Assignments == nil {
			item.Assignments = ledger.New()
		}
		item.Assignments.ToggleAll(st.personIDs())
		return nil
	})
}
