package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/fairshare/internal/ledger"
)

func TestParsePricingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PricingMode
		wantErr bool
	}{
		{in: "unit", want: PricingUnit},
		{in: "shared", want: PricingShared},
		{in: "fixed", want: PricingShared},
		{in: "bulk", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePricingMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPricingMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBillConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultBillConfig().Validate())

	bad := []BillConfig{
		{BillMode: "buffet", CouvertMode: CouvertPerPerson},
		{BillMode: BillModeBar, CouvertMode: "everyone"},
		{BillMode: BillModeBar, CouvertMode: CouvertPerTable, FixedCost: -1},
		{BillMode: BillModeBar, CouvertMode: CouvertPerTable, Couvert: -1},
		{BillMode: BillModeBar, CouvertMode: CouvertPerTable, ServiceTax: 1.5},
		{BillMode: BillModeBar, CouvertMode: CouvertPerTable, ServiceTax: -0.1},
	}
	for i, c := range bad {
		assert.ErrorIs(t, c.Validate(), ErrInvalidConfig, "case %d", i)
	}
}

func TestEffectiveFixedCost(t *testing.T) {
	c := BillConfig{BillMode: BillModeRodizio, FixedCost: 5000}
	assert.Equal(t, Cents(5000), c.EffectiveFixedCost())
	c.BillMode = BillModeBar
	assert.Equal(t, Cents(0), c.EffectiveFixedCost())
}

func TestAvatarColorAtCycles(t *testing.T) {
	assert.Equal(t, "#FF6B6B", AvatarColorAt(0))
	assert.Equal(t, "#A8E6CF", AvatarColorAt(7))
	assert.Equal(t, "#FF6B6B", AvatarColorAt(8))
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := Snapshot{
		Step:   StepDistribution,
		People: []Person{{ID: "p1", Name: "Eu", AvatarColor: AvatarColorAt(0)}},
		Config: DefaultBillConfig(),
		Items: []ExpenseItem{{
			ID: "i1", Name: "Pizza", UnitPrice: 4000, PricingMode: PricingShared,
			Assignments: ledger.FromList([]string{"p1", "p1"}),
		}},
		ManualPayments: map[string]Cents{"p1": 0},
	}

	data, err := EncodeSnapshot(s)
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSchemaVersion, got.SchemaVersion)
	assert.Equal(t, StepDistribution, got.Step)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Assignments.Count("p1"))
	assert.Equal(t, Cents(0), got.ManualPayments["p1"])
}

func TestDecodeLegacySnapshot(t *testing.T) {
	legacy := `{
		"step": "summary",
		"people": [{"id": "p-a", "name": "Eu", "avatarColor": "#FF6B6B"}],
		"config": {"billMode": "bar", "fixedCost": 0, "couvert": 1000, "couvertMode": "table", "serviceTax": 0.1},
		"items": [{"id": "x", "name": "Cerveja", "price": 1200, "pricingMode": "fixed", "assignedTo": ["p-a", "p-a"]}],
		"manualPayments": {"p-a": null}
	}`

	s, err := DecodeSnapshot([]byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, SnapshotSchemaVersion, s.SchemaVersion)
	require.Len(t, s.Items, 1)
	assert.Equal(t, PricingShared, s.Items[0].PricingMode)
	assert.Equal(t, 2, s.Items[0].Assignments.Count("p-a"))
	assert.Empty(t, s.ManualPayments)
}

func TestDecodeSnapshotRejects(t *testing.T) {
	tests := map[string]struct {
		data string
		want error
	}{
		"future schema":     {data: `{"schemaVersion": 99}`, want: ErrUnsupportedSchema},
		"bad step":          {data: `{"schemaVersion": 1, "step": "dessert"}`, want: ErrInvalidStep},
		"negative price":    {data: `{"items": [{"id": "i", "price": -5, "pricingMode": "unit"}]}`, want: ErrNegativeAmount},
		"negative override": {data: `{"manualPayments": {"p": -1}}`, want: ErrNegativeAmount},
		"bad config":        {data: `{"config": {"billMode": "bar", "couvertMode": "table", "serviceTax": 2}}`, want: ErrInvalidConfig},
		"bad pricing mode":  {data: `{"items": [{"id": "i", "pricingMode": "bulk"}]}`, want: ErrInvalidPricingMode},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPricingModeJSON(t *testing.T) {
	tests := map[string]struct {
		data string
		want PricingMode
	}{
		"legacy fixed": {data: `{"pricingMode":"fixed"}`, want: PricingShared},
		"absent":       {data: `{}`, want: ""},
		"empty":        {data: `{"pricingMode":""}`, want: PricingUnit},
		"unit":         {data: `{"pricingMode":"unit"}`, want: PricingUnit},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var item ExpenseItem
			require.NoError(t, json.Unmarshal([]byte(tt.data), &item))
			assert.Equal(t, tt.want, item.PricingMode)
		})
	}

	var item ExpenseItem
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"pricingMode":"bulk"}`), &item), ErrInvalidPricingMode)
}

func TestDecodeSnapshotEmptyPricingMode(t *testing.T) {
	for _, data := range []string{
		`{"schemaVersion": 1, "items": [{"id": "i", "name": "Beer", "price": 500, "pricingMode": ""}]}`,
		`{"schemaVersion": 1, "items": [{"id": "i", "name": "Beer", "price": 500}]}`,
	} {
		snap, err := DecodeSnapshot([]byte(data))
		require.NoError(t, err)
		require.Len(t, snap.Items, 1)
		assert.Equal(t, PricingUnit, snap.Items[0].PricingMode)
	}
}
