package service

import (
	"github.com/nexacart/internal/models"

	"github.com/shopspring/decimal"
)

// PricedLine 参与计价的一行（单价 × 数量）
type PricedLine struct {
	UnitPrice models.Money
	Quantity  int
}

// CheckoutSettings 结算参数（税率百分比、固定运费、免运费门槛）
type CheckoutSettings struct {
	TaxRatePercent        decimal.Decimal
	ShippingRate          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// OrderTotals 计价结果
type OrderTotals struct {
	Subtotal models.Money
	Tax      models.Money
	Shipping models.Money
	Discount models.Money
	Total    models.Money
}

// CalculateTotals 计算订单金额。纯函数：
// subtotal = Σ(单价×数量)；满足免运费门槛时运费为 0；
// 税额按小计 × 税率/100 四舍五入到分；total 不会为负。
func CalculateTotals(lines []PricedLine, settings CheckoutSettings, discount models.Money) OrderTotals {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := settings.ShippingRate
	if subtotal.GreaterThanOrEqual(settings.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	if shipping.IsNegative() {
		shipping = decimal.Zero
	}

	// Round 采用 half away from zero，对非负金额即四舍五入（half-up）
	tax := subtotal.Mul(settings.TaxRatePercent).Div(decimal.NewFromInt(100)).Round(2)
	if tax.IsNegative() {
		tax = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount.Decimal)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return OrderTotals{
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Tax:      models.NewMoneyFromDecimal(tax),
		Shipping: models.NewMoneyFromDecimal(shipping),
		Discount: models.NewMoneyFromDecimal(discount.Decimal),
		Total:    models.NewMoneyFromDecimal(total),
	}
}
