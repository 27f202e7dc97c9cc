package service

import (
	"testing"

	"github.com/nexacart/internal/models"

	"github.com/shopspring/decimal"
)

func money(s string) models.Money {
	m, err := models.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func defaultTestSettings() CheckoutSettings {
	return CheckoutSettings{
		TaxRatePercent:        decimal.NewFromInt(5),
		ShippingRate:          decimal.NewFromInt(49),
		FreeShippingThreshold: decimal.NewFromInt(999),
	}
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []PricedLine
		settings     CheckoutSettings
		discount     models.Money
		wantSubtotal string
		wantTax      string
		wantShipping string
		wantTotal    string
	}{
		{
			name: "free_shipping_above_threshold",
			lines: []PricedLine{
				{UnitPrice: money("1200"), Quantity: 1},
			},
			settings:     defaultTestSettings(),
			wantSubtotal: "1200.00",
			wantTax:      "60.00",
			wantShipping: "0.00",
			wantTotal:    "1260.00",
		},
		{
			name: "flat_shipping_below_threshold",
			lines: []PricedLine{
				{UnitPrice: money("500"), Quantity: 1},
			},
			settings:     defaultTestSettings(),
			wantSubtotal: "500.00",
			wantTax:      "25.00",
			wantShipping: "49.00",
			wantTotal:    "574.00",
		},
		{
			name: "threshold_boundary_is_inclusive",
			lines: []PricedLine{
				{UnitPrice: money("999"), Quantity: 1},
			},
			settings:     defaultTestSettings(),
			wantSubtotal: "999.00",
			wantTax:      "49.95",
			wantShipping: "0.00",
			wantTotal:    "1048.95",
		},
		{
			name: "tax_rounds_half_up_to_paise",
			lines: []PricedLine{
				{UnitPrice: money("333"), Quantity: 1},
			},
			settings: CheckoutSettings{
				TaxRatePercent:        decimal.RequireFromString("5.5"),
				ShippingRate:          decimal.NewFromInt(49),
				FreeShippingThreshold: decimal.NewFromInt(999),
			},
			// 333 * 5.5% = 18.315 -> 18.32
			wantSubtotal: "333.00",
			wantTax:      "18.32",
			wantShipping: "49.00",
			wantTotal:    "400.32",
		},
		{
			name: "multiple_lines_with_quantities",
			lines: []PricedLine{
				{UnitPrice: money("599"), Quantity: 2},
				{UnitPrice: money("899"), Quantity: 1},
			},
			settings:     defaultTestSettings(),
			wantSubtotal: "2097.00",
			wantTax:      "104.85",
			wantShipping: "0.00",
			wantTotal:    "2201.85",
		},
		{
			name: "zero_and_negative_quantities_skipped",
			lines: []PricedLine{
				{UnitPrice: money("500"), Quantity: 0},
				{UnitPrice: money("500"), Quantity: -2},
				{UnitPrice: money("500"), Quantity: 1},
			},
			settings:     defaultTestSettings(),
			wantSubtotal: "500.00",
			wantTax:      "25.00",
			wantShipping: "49.00",
			wantTotal:    "574.00",
		},
		{
			name: "discount_floors_total_at_zero",
			lines: []PricedLine{
				{UnitPrice: money("100"), Quantity: 1},
			},
			settings:     defaultTestSettings(),
			discount:     money("500"),
			wantSubtotal: "100.00",
			wantTax:      "5.00",
			wantShipping: "49.00",
			wantTotal:    "0.00",
		},
		{
			name:         "empty_cart_all_zero_with_free_shipping",
			lines:        nil,
			settings:     CheckoutSettings{TaxRatePercent: decimal.NewFromInt(5)},
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantShipping: "0.00",
			wantTotal:    "0.00",
		},
		{
			name: "negative_shipping_rate_treated_as_zero",
			lines: []PricedLine{
				{UnitPrice: money("100"), Quantity: 1},
			},
			settings: CheckoutSettings{
				TaxRatePercent:        decimal.Zero,
				ShippingRate:          decimal.NewFromInt(-10),
				FreeShippingThreshold: decimal.NewFromInt(999),
			},
			wantSubtotal: "100.00",
			wantTax:      "0.00",
			wantShipping: "0.00",
			wantTotal:    "100.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.lines, tt.settings, tt.discount)
			if got.Subtotal.String() != tt.wantSubtotal {
				t.Fatalf("subtotal want %s got %s", tt.wantSubtotal, got.Subtotal.String())
			}
			if got.Tax.String() != tt.wantTax {
				t.Fatalf("tax want %s got %s", tt.wantTax, got.Tax.String())
			}
			if got.Shipping.String() != tt.wantShipping {
				t.Fatalf("shipping want %s got %s", tt.wantShipping, got.Shipping.String())
			}
			if got.Total.String() != tt.wantTotal {
				t.Fatalf("total want %s got %s", tt.wantTotal, got.Total.String())
			}
		})
	}
}
