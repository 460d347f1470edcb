package models

import (
	"fmt"

	"github.com/mmynk/fairshare/internal/ledger"
)

// PricingMode decides how an item's price is charged to its assignees.
type PricingMode string

const (
	// PricingUnit charges the unit price once per occurrence.
	PricingUnit PricingMode = "unit"

	// PricingShared splits the price evenly across all occurrences.
	PricingShared PricingMode = "shared"
)

// ParsePricingMode parses a pricing mode name. "fixed" is accepted as the
// legacy name of PricingShared.
func ParsePricingMode(s string) (PricingMode, error) {
	switch s {
	case string(PricingUnit):
		return PricingUnit, nil
	case string(PricingShared), "fixed":
		return PricingShared, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPricingMode, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value means
// unit pricing, the same as an absent field.
func (m *PricingMode) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = PricingUnit
		return nil
	}
	parsed, err := ParsePricingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ExpenseItem represents a single priced line on the tab.
type ExpenseItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the description shown to people (e.g., "Pizza", "Cerveja").
	Name string `json:"name"`

	// UnitPrice is the price per unit for PricingUnit items, or the whole
	// price for PricingShared items.
	UnitPrice Cents `json:"price"`

	// PricingMode selects per-unit or shared charging.
	PricingMode PricingMode `json:"pricingMode"`

	// Assignments records who consumed how many units or shares.
	Assignments *ledger.Ledger `json:"assignments"`
}

// Clone returns a deep copy of the item.
func (i ExpenseItem) Clone() ExpenseItem {
	i.Assignments = i.Assignments.Clone()
	return i
}

// IsShared reports whether the item is split among its shares.
func (i ExpenseItem) IsShared() bool {
	return i.PricingMode == PricingShared
}
