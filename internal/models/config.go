package models

import "fmt"

// BillMode selects whether a per-person base price applies.
type BillMode string

const (
	// BillModeRodizio charges every person FixedCost (all-you-can-eat).
	BillModeRodizio BillMode = "rodizio"

	// BillModeBar has no per-person base price.
	BillModeBar BillMode = "bar"
)

// CouvertMode decides whether the couvert is charged per person or per table.
type CouvertMode string

const (
	// CouvertPerPerson charges the full couvert to every person.
	CouvertPerPerson CouvertMode = "person"

	// CouvertPerTable splits one couvert across the table.
	CouvertPerTable CouvertMode = "table"
)

// BillConfig holds the fee and tax parameters shared by every person.
// It is always replaced as a whole.
type BillConfig struct {
	// BillMode selects rodizio (fixed base per person) or bar.
	BillMode BillMode `json:"billMode"`

	// FixedCost is the base price per person; ignored in bar mode.
	FixedCost Cents `json:"fixedCost"`

	// Couvert is the cover charge, per person or per table depending on CouvertMode.
	Couvert Cents `json:"couvert"`

	// CouvertMode decides how Couvert is charged.
	CouvertMode CouvertMode `json:"couvertMode"`

	// ServiceTax is the service fraction applied on top of each subtotal, in [0, 1].
	ServiceTax float64 `json:"serviceTax"`
}

// DefaultBillConfig returns the configuration a new session starts with.
func DefaultBillConfig() BillConfig {
	return BillConfig{
		BillMode:    BillModeRodizio,
		FixedCost:   0,
		Couvert:     0,
		CouvertMode: CouvertPerPerson,
		ServiceTax:  0.1,
	}
}

// Validate checks the enum values and ranges.
func (c BillConfig) Validate() error {
	switch c.BillMode {
	case BillModeRodizio, BillModeBar:
	default:
		return fmt.Errorf("%w: unknown bill mode %q", ErrInvalidConfig, c.BillMode)
	}
	switch c.CouvertMode {
	case CouvertPerPerson, CouvertPerTable:
	default:
		return fmt.Errorf("%w: unknown couvert mode %q", ErrInvalidConfig, c.CouvertMode)
	}
	if c.FixedCost < 0 || c.Couvert < 0 {
		return fmt.Errorf("%w: fixed cost and couvert must be non-negative", ErrInvalidConfig)
	}
	if c.ServiceTax < 0 || c.ServiceTax > 1 {
		return fmt.Errorf("%w: service tax %v outside [0, 1]", ErrInvalidConfig, c.ServiceTax)
	}
	return nil
}

// EffectiveFixedCost returns the per-person base price, which is zero in bar mode.
func (c BillConfig) EffectiveFixedCost() Cents {
	if c.BillMode == BillModeBar {
		return 0
	}
	return c.FixedCost
}
