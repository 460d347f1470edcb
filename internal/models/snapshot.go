package models

import (
	"encoding/json"
	"fmt"

	"github.com/mmynk/fairshare/internal/ledger"
)

// Step is a stage of the bill flow.
type Step string

const (
	StepSetup        Step = "setup"
	StepExpenses     Step = "expenses"
	StepDistribution Step = "distribution"
	StepSummary      Step = "summary"
)

// ParseStep parses a step name.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepSetup, StepExpenses, StepDistribution, StepSummary:
		return Step(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStep, s)
	}
}

// SnapshotSchemaVersion is the schema version written by EncodeSnapshot.
const SnapshotSchemaVersion = 1

// Snapshot is the persisted shape of a bill session.
type Snapshot struct {
	// SchemaVersion identifies the layout. Version 0 is the unversioned
	// layout where assignments were stored as a list in "assignedTo".
	SchemaVersion int `json:"schemaVersion"`

	Step   Step          `json:"step"`
	People []Person      `json:"people"`
	Config BillConfig    `json:"config"`
	Items  []ExpenseItem `json:"items"`

	// ManualPayments maps person ID to a fixed payment. Absent means the
	// person pays their proportional share.
	ManualPayments map[string]Cents `json:"manualPayments"`
}

// EncodeSnapshot serializes s with the current schema version.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	s.SchemaVersion = SnapshotSchemaVersion
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

type wireItem struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	UnitPrice   Cents          `json:"price"`
	PricingMode PricingMode    `json:"pricingMode"`
	Assignments *ledger.Ledger `json:"assignments"`
	AssignedTo  []string       `json:"assignedTo"`
}

type wireSnapshot struct {
	SchemaVersion  int               `json:"schemaVersion"`
	Step           Step              `json:"step"`
	People         []Person          `json:"people"`
	Config         *BillConfig       `json:"config"`
	Items          []wireItem        `json:"items"`
	ManualPayments map[string]*Cents `json:"manualPayments"`
}

// DecodeSnapshot parses a snapshot of any supported schema version and
// upgrades it to the current layout.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if w.SchemaVersion < 0 || w.SchemaVersion > SnapshotSchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, w.SchemaVersion)
	}

	s := Snapshot{
		SchemaVersion:  SnapshotSchemaVersion,
		Step:           w.Step,
		People:         w.People,
		Config:         DefaultBillConfig(),
		ManualPayments: make(map[string]Cents, len(w.ManualPayments)),
	}
	if s.Step == "" {
		s.Step = StepSetup
	}
	if _, err := ParseStep(string(s.Step)); err != nil {
		return Snapshot{}, err
	}
	if w.Config != nil {
		s.Config = *w.Config
	}
	if err := s.Config.Validate(); err != nil {
		return Snapshot{}, err
	}

	for _, wi := range w.Items {
		item := ExpenseItem{
			ID:          wi.ID,
			Name:        wi.Name,
			UnitPrice:   wi.UnitPrice,
			PricingMode: wi.PricingMode,
			Assignments: wi.Assignments,
		}
		if item.PricingMode == "" {
			item.PricingMode = PricingUnit
		}
		if item.UnitPrice < 0 {
			return Snapshot{}, fmt.Errorf("item %s: %w", item.ID, ErrNegativeAmount)
		}
		if item.Assignments == nil {
			item.Assignments = ledger.FromList(wi.AssignedTo)
		}
		s.Items = append(s.Items, item)
	}

	for id, v := range w.ManualPayments {
		if v == nil {
			continue
		}
		if *v < 0 {
			return Snapshot{}, fmt.Errorf("manual payment for %s: %w", id, ErrNegativeAmount)
		}
		s.ManualPayments[id] = *v
	}

	return s, nil
}
