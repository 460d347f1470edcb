package session

import (
	"fmt"

	"github.com/mmynk/fairshare/internal/ledger"
	"github.com/mmynk/fairshare/internal/models"
)

// AddItem appends an unassigned item and returns it.
func (s *Session) AddItem(name string, unitPrice models.Cents, mode models.PricingMode) (models.ExpenseItem, error) {
	if unitPrice < 0 {
		return models.ExpenseItem{}, fmt.Errorf("item %q: %w", name, models.ErrNegativeAmount)
	}
	mode, err := models.ParsePricingMode(string(mode))
	if err != nil {
		return models.ExpenseItem{}, err
	}

	item := models.ExpenseItem{
		ID:          s.opts.NewID(),
		Name:        name,
		UnitPrice:   unitPrice,
		PricingMode: mode,
		Assignments: ledger.New(),
	}
	err = s.update(func(st *state) error {
		st.items = append(st.items, item)
		return nil
	})
	if err != nil {
		return models.ExpenseItem{}, err
	}
	return item.Clone(), nil
}

// AddItemBatch adds quantity units of an item. Shared items bought more than
// once become a single shared item named "<name> (Nx)" priced for the whole
// batch; everything else is added as is.
func (s *Session) AddItemBatch(name string, unitPrice models.Cents, quantity int, mode models.PricingMode) (models.ExpenseItem, error) {
	if quantity < 1 {
		return models.ExpenseItem{}, fmt.Errorf("%w: %d", models.ErrInvalidQuantity, quantity)
	}
	mode, err := models.ParsePricingMode(string(mode))
	if err != nil {
		return models.ExpenseItem{}, err
	}
	if mode == models.PricingShared && quantity > 1 {
		return s.AddItem(fmt.Sprintf("%s (%dx)", name, quantity), unitPrice*models.Cents(quantity), mode)
	}
	return s.AddItem(name, unitPrice, mode)
}

// RemoveItem deletes an item together with its assignments.
func (s *Session) RemoveItem(id string) error {
	return s.update(func(st *state) error {
		for i := range st.items {
			if st.items[i].ID == id {
				st.items = append(st.items[:i], st.items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", models.ErrItemNotFound, id)
	})
}
