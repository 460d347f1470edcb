package calculator

import (
	"sort"

	"github.com/mmynk/fairshare/internal/models"
)

// Status groups people on the summary by how their payment was decided.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusSponsor  Status = "sponsor"
	StatusHero     Status = "hero"
	StatusFixedLow Status = "fixed_low"
)

// ItemShare is one item's contribution to a person's bill.
type ItemShare struct {
	ItemID   string  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"costToPerson"`
	IsShared bool    `json:"isShared"`

	// TotalShares is the item's occurrence count across everyone; 1 for unit items.
	TotalShares int `json:"totalShares"`
}

// PersonAllocation is the calculated bill for one person.
type PersonAllocation struct {
	PersonID    string `json:"personId"`
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`

	// BaseCost is the fixed cost plus this person's couvert.
	BaseCost float64     `json:"baseCost"`
	Items    []ItemShare `json:"items"`

	// ItemCount is the number of units and shares assigned to this person.
	ItemCount int `json:"itemCount"`

	Subtotal      float64 `json:"subtotal"`
	Tax           float64 `json:"taxAmount"`
	OriginalTotal float64 `json:"originalTotal"`

	// FinalToPay is the override when present, otherwise OriginalTotal scaled
	// by the discount factor.
	FinalToPay       float64 `json:"finalToPay"`
	IsManualOverride bool    `json:"isManualOverride"`
	Status           Status  `json:"status"`
}

// Input is everything the allocation depends on.
type Input struct {
	People    []models.Person
	Items     []models.ExpenseItem
	Config    models.BillConfig
	Overrides map[string]models.Cents
}

// Result is the full allocation for a session.
type Result struct {
	// Allocations are sorted by FinalToPay, highest first.
	Allocations []PersonAllocation `json:"allocations"`

	GrandTotalOriginal float64 `json:"grandTotalOriginal"`
	TotalManual        float64 `json:"totalManual"`
	RemainingBill      float64 `json:"remainingBill"`
	DiscountFactor     float64 `json:"discountFactor"`

	// HasSponsor is true when anyone is a hero or sponsor.
	HasSponsor bool `json:"hasSponsor"`
}

// Allocate computes what every person owes.
//
// Algorithm:
//   - Pass 1: base = fixed cost + couvert share; unit items cost price × quantity,
//     shared items cost price / total shares × own shares; tax on the subtotal
//   - Pass 2: overridden people pay their override; everyone else pays their
//     original total scaled by remaining bill / beneficiaries' original total
//
// Allocate is pure and linear in items × people.
func Allocate(in Input) *Result {
	allocs := organicAllocations(in)

	res := &Result{Allocations: allocs}
	for _, a := range allocs {
		res.GrandTotalOriginal += a.OriginalTotal
	}

	reconcileOverrides(res, in.Overrides)

	// Stable keeps registry order among equal payments.
	sort.SliceStable(res.Allocations, func(i, j int) bool {
		return res.Allocations[i].FinalToPay > res.Allocations[j].FinalToPay
	})
	return res
}

func couvertPerPerson(cfg models.BillConfig, peopleCount int) float64 {
	if cfg.CouvertMode == models.CouvertPerPerson {
		return cfg.Couvert.Float()
	}
	if peopleCount == 0 {
		return 0
	}
	return cfg.Couvert.Float() / float64(peopleCount)
}

// organicAllocations is pass 1: every person's share before overrides.
func organicAllocations(in Input) []PersonAllocation {
	base := in.Config.EffectiveFixedCost().Float() + couvertPerPerson(in.Config, len(in.People))

	// Share totals are per item, not per person.
	totalShares := make([]int, len(in.Items))
	for i, item := range in.Items {
		totalShares[i] = item.Assignments.Total()
	}

	allocs := make([]PersonAllocation, 0, len(in.People))
	for _, p := range in.People {
		a := PersonAllocation{
			PersonID:    p.ID,
			Name:        p.Name,
			AvatarColor: p.AvatarColor,
			BaseCost:    base,
			Items:       []ItemShare{},
		}

		itemsTotal := 0.0
		for i, item := range in.Items {
			qty := item.Assignments.Count(p.ID)
			if qty == 0 {
				continue
			}
			share := ItemShare{
				ItemID:      item.ID,
				ItemName:    item.Name,
				Quantity:    qty,
				IsShared:    item.IsShared(),
				TotalShares: 1,
			}
			if item.IsShared() {
				share.TotalShares = totalShares[i]
				if totalShares[i] > 0 {
					share.Cost = item.UnitPrice.Float() / float64(totalShares[i]) * float64(qty)
				}
			} else {
				share.Cost = item.UnitPrice.Float() * float64(qty)
			}
			itemsTotal += share.Cost
			a.ItemCount += qty
			a.Items = append(a.Items, share)
		}

		a.Subtotal = base + itemsTotal
		a.Tax = a.Subtotal * in.Config.ServiceTax
		a.OriginalTotal = a.Subtotal + a.Tax
		allocs = append(allocs, a)
	}
	return allocs
}

// reconcileOverrides is pass 2: fixed payments are honoured and the gap they
// leave is spread over everyone else in proportion to their original totals.
func reconcileOverrides(res *Result, overrides map[string]models.Cents) {
	beneficiariesTotal := 0.0
	for _, a := range res.Allocations {
		if v, ok := overrides[a.PersonID]; ok {
			res.TotalManual += v.Float()
		} else {
			beneficiariesTotal += a.OriginalTotal
		}
	}

	res.RemainingBill = res.GrandTotalOriginal - res.TotalManual
	if res.RemainingBill < 0 {
		res.RemainingBill = 0
	}
	if beneficiariesTotal > 0 {
		res.DiscountFactor = res.RemainingBill / beneficiariesTotal
	}

	for i := range res.Allocations {
		a := &res.Allocations[i]
		v, ok := overrides[a.PersonID]
		if !ok {
			a.FinalToPay = a.OriginalTotal * res.DiscountFactor
			a.Status = StatusNormal
			continue
		}
		a.FinalToPay = v.Float()
		a.IsManualOverride = true
		a.Status = classifyOverride(v.Float(), a.OriginalTotal, res.GrandTotalOriginal)
		if a.Status == StatusHero || a.Status == StatusSponsor {
			res.HasSponsor = true
		}
	}
}

func classifyOverride(value, originalTotal, grandTotal float64) Status {
	switch {
	case value >= grandTotal-models.CentTolerance:
		return StatusHero
	case value > originalTotal:
		return StatusSponsor
	default:
		return StatusFixedLow
	}
}

// TableTotals are the raw sums shown while the tab is being entered.
type TableTotals struct {
	ItemsTotal   models.Cents `json:"itemsTotal"`
	FixedTotal   models.Cents `json:"fixedTotal"`
	CouvertTotal models.Cents `json:"couvertTotal"`
}

// CalculateTableTotals sums item prices (each counted once), the fixed cost
// for everyone, and the couvert for the table.
func CalculateTableTotals(in Input) TableTotals {
	var t TableTotals
	for _, item := range in.Items {
		t.ItemsTotal += item.UnitPrice
	}
	n := models.Cents(len(in.People))
	t.FixedTotal = in.Config.EffectiveFixedCost() * n
	if in.Config.CouvertMode == models.CouvertPerPerson {
		t.CouvertTotal = in.Config.Couvert * n
	} else {
		t.CouvertTotal = in.Config.Couvert
	}
	return t
}
