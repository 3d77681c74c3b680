package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/cart"
)

var hundred = decimal.NewFromInt(100)

// Charges are the flat surcharges added to every checkout.
type Charges struct {
	Tax         decimal.Decimal `json:"tax"`
	PlatformFee decimal.Decimal `json:"platformFee"`
}

// LinePrice is the frozen breakdown of one selected line.
type LinePrice struct {
	Line       cart.Line       `json:"line"`
	Original   decimal.Decimal `json:"original"`
	Discounted decimal.Decimal `json:"discounted"`
	Discount   decimal.Decimal `json:"discount"`
}

// Summary is the full price of a selection.
type Summary struct {
	Lines              []LinePrice     `json:"lines"`
	TotalItems         int             `json:"totalItems"`
	OriginalTotal      decimal.Decimal `json:"originalTotal"`
	DiscountedTotal    decimal.Decimal `json:"discountedTotal"`
	TotalDiscount      decimal.Decimal `json:"totalDiscount"`
	DeliveryFee        decimal.Decimal `json:"deliveryFee"`
	DeliveryFeeCharged decimal.Decimal `json:"deliveryFeeCharged"`
	Premium            bool            `json:"premium"`
	Tax                decimal.Decimal `json:"tax"`
	PlatformFee        decimal.Decimal `json:"platformFee"`
	TotalPayable       decimal.Decimal `json:"totalPayable"`
}

// unitAfterDiscount applies a percentage discount to one unit. A nil
// discount leaves the price unchanged.
func unitAfterDiscount(price decimal.Decimal, pct *decimal.Decimal) decimal.Decimal {
	if pct == nil {
		return price
	}
	return price.Sub(price.Mul(*pct).Div(hundred))
}

// Price computes the checkout totals. fee is the resolved delivery fee; it
// is waived when premium is set. Price has no side effects.
func Price(lines []cart.Line, fee decimal.Decimal, premium bool, charges Charges) Summary {
	s := Summary{
		Lines:           make([]LinePrice, 0, len(lines)),
		OriginalTotal:   decimal.Zero,
		DiscountedTotal: decimal.Zero,
		DeliveryFee:     fee,
		Premium:         premium,
		Tax:             charges.Tax,
		PlatformFee:     charges.PlatformFee,
	}
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		original := l.Price.Mul(qty)
		discounted := unitAfterDiscount(l.Price, l.Discount).Mul(qty)
		s.Lines = append(s.Lines, LinePrice{
			Line:       l,
			Original:   original,
			Discounted: discounted,
			Discount:   original.Sub(discounted),
		})
		s.TotalItems += l.Quantity
		s.OriginalTotal = s.OriginalTotal.Add(original)
		s.DiscountedTotal = s.DiscountedTotal.Add(discounted)
	}
	s.TotalDiscount = s.OriginalTotal.Sub(s.DiscountedTotal)

	s.DeliveryFeeCharged = fee
	if premium {
		s.DeliveryFeeCharged = decimal.Zero
	}
	s.TotalPayable = s.DiscountedTotal.
		Add(s.DeliveryFeeCharged).
		Add(s.Tax).
		Add(s.PlatformFee)
	return s
}

// ISO 4217 currencies whose minor unit is not a hundredth.
var minorExponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// MinorExponent is the number of decimal places in currency's minor unit.
func MinorExponent(currency string) int32 {
	if exp, ok := minorExponents[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return exp
	}
	return 2
}

// MinorUnits converts an amount to the smallest unit of currency, rounding
// half away from zero.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(MinorExponent(currency)).Round(0).IntPart()
}
