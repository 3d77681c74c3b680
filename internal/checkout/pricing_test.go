package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/food-order-backend/internal/cart"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func pct(v string) *decimal.Decimal {
	p := d(v)
	return &p
}

var standardCharges = Charges{Tax: d("15"), PlatformFee: d("7")}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestPrice_DiscountedLineWithDeliveryFee(t *testing.T) {
	lines := []cart.Line{{ID: "c1", Price: d("100"), Quantity: 2, Discount: pct("10")}}

	s := Price(lines, d("50"), false, standardCharges)

	assert.Equal(t, 2, s.TotalItems)
	assertDec(t, "200", s.OriginalTotal, "originalTotal")
	assertDec(t, "180", s.DiscountedTotal, "discountedTotal")
	assertDec(t, "20", s.TotalDiscount, "totalDiscount")
	assertDec(t, "50", s.DeliveryFeeCharged, "deliveryFeeCharged")
	assertDec(t, "252", s.TotalPayable, "totalPayable")

	require.Len(t, s.Lines, 1)
	assertDec(t, "200", s.Lines[0].Original, "line original")
	assertDec(t, "180", s.Lines[0].Discounted, "line discounted")
	assertDec(t, "20", s.Lines[0].Discount, "line discount")
}

func TestPrice_PremiumWaivesDeliveryFee(t *testing.T) {
	lines := []cart.Line{{ID: "c1", Price: d("100"), Quantity: 2, Discount: pct("10")}}

	s := Price(lines, d("50"), true, standardCharges)

	assert.True(t, s.Premium)
	assertDec(t, "50", s.DeliveryFee, "resolved fee")
	assertDec(t, "0", s.DeliveryFeeCharged, "deliveryFeeCharged")
	assertDec(t, "202", s.TotalPayable, "totalPayable")
}

func TestPrice_MixedLines(t *testing.T) {
	lines := []cart.Line{
		{ID: "a", Price: d("80"), Quantity: 1},
		{ID: "b", Price: d("45.50"), Quantity: 3, Discount: pct("20")},
		{ID: "c", Price: d("10"), Quantity: 4, Discount: pct("0")},
	}

	s := Price(lines, d("0"), false, Charges{})

	assert.Equal(t, 8, s.TotalItems)
	// 80 + 136.5 + 40
	assertDec(t, "256.5", s.OriginalTotal, "originalTotal")
	// 80 + 3*(45.5-9.1) + 40
	assertDec(t, "229.2", s.DiscountedTotal, "discountedTotal")
	assertDec(t, "27.3", s.TotalDiscount, "totalDiscount")
	assertDec(t, "229.2", s.TotalPayable, "totalPayable")
}

func TestPrice_ConservesTotals(t *testing.T) {
	lines := []cart.Line{
		{ID: "a", Price: d("99.99"), Quantity: 3, Discount: pct("33")},
		{ID: "b", Price: d("12.5"), Quantity: 7},
	}
	s := Price(lines, d("30"), false, standardCharges)

	sumDiscounted := decimal.Zero
	for _, lp := range s.Lines {
		sumDiscounted = sumDiscounted.Add(lp.Discounted)
	}
	assert.True(t, sumDiscounted.Equal(s.DiscountedTotal))
	assert.True(t, s.OriginalTotal.Sub(s.TotalDiscount).Equal(s.DiscountedTotal))
	assert.True(t, s.TotalPayable.Equal(s.DiscountedTotal.Add(d("30")).Add(d("15")).Add(d("7"))))
}

func TestPrice_EmptySelection(t *testing.T) {
	s := Price(nil, d("50"), false, standardCharges)
	assert.Equal(t, 0, s.TotalItems)
	assertDec(t, "72", s.TotalPayable, "totalPayable")
	assert.Empty(t, s.Lines)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(25200), MinorUnits(d("252"), "INR"))
	assert.Equal(t, int64(22920), MinorUnits(d("229.2"), "INR"))
	assert.Equal(t, int64(1001), MinorUnits(d("10.005"), "usd"))
}

func TestMinorUnits_FollowsCurrencyExponent(t *testing.T) {
	assert.Equal(t, int64(252), MinorUnits(d("252"), "JPY"))
	assert.Equal(t, int64(253), MinorUnits(d("252.5"), "jpy"))
	assert.Equal(t, int64(252125), MinorUnits(d("252.125"), "KWD"))
	assert.Equal(t, int32(2), MinorExponent("EUR"))
}
