package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func TestTwoLineInvoice(t *testing.T) {
	l1 := Line(LineInput{Qty: types.NewQuantity(2), Rate: money("100"), DiscountPercent: money("10"), TaxPercent: money("18")})
	l2 := Line(LineInput{Qty: types.NewQuantity(1), Rate: money("50"), DiscountPercent: decimal.Zero, TaxPercent: money("5")})

	assert.True(t, l1.Taxable.Equal(money("180")), l1.Taxable.String())
	assert.True(t, l1.Tax.Equal(money("32.4")), l1.Tax.String())
	assert.True(t, l2.Taxable.Equal(money("50")))
	assert.True(t, l2.Tax.Equal(money("2.5")))

	totals := Sum([]LineAmounts{l1, l2}, decimal.Zero)
	assert.True(t, totals.Subtotal.Equal(money("230")))
	assert.True(t, totals.Tax.Equal(money("34.9")))
	assert.True(t, totals.GrandTotal.Equal(money("264.9")))
}

func TestLineRoundsOnce(t *testing.T) {
	// 3 x 33.333 = 99.999 -> 100.00; tax 12.5% of 100.00 = 12.50
	l := Line(LineInput{Qty: types.NewQuantity(3), Rate: money("33.333"), TaxPercent: money("12.5")})
	assert.Equal(t, "100", l.Taxable.String())
	assert.Equal(t, "12.5", l.Tax.String())

	// fractional quantities are never floored
	l = Line(LineInput{Qty: types.MustQuantity("0.75"), Rate: money("40")})
	assert.Equal(t, "30", l.Taxable.String())
}

func TestTotalsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 1; n <= 50; n++ {
		lines := make([]LineAmounts, 0, n)
		lineSum := decimal.Zero
		for i := 0; i < n; i++ {
			in := LineInput{
				Qty:             types.NewQuantityFromInt64Scaled(int64(rng.Intn(100_000) + 1)),
				Rate:            decimal.New(int64(rng.Intn(1_000_000)), -3),
				DiscountPercent: decimal.New(int64(rng.Intn(10_001)), -2),
				TaxPercent:      decimal.New(int64(rng.Intn(2_801)), -2),
			}
			require.NoError(t, ValidateLine(i, in))
			l := Line(in)
			lines = append(lines, l)
			lineSum = lineSum.Add(l.Taxable).Add(l.Tax)
		}

		roundOff := decimal.New(int64(rng.Intn(201)-100), -2)
		totals := Sum(lines, roundOff)

		assert.True(t, lineSum.Equal(totals.Subtotal.Add(totals.Tax)), "lines=%d", n)
		assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.Tax).Add(roundOff)), "lines=%d", n)
		assert.GreaterOrEqual(t, totals.Subtotal.Exponent(), -types.MoneyPlaces)
	}
}

func TestValidateLine(t *testing.T) {
	valid := LineInput{Qty: types.NewQuantity(1), Rate: money("10"), DiscountPercent: money("0"), TaxPercent: money("18")}

	tests := []struct {
		name   string
		mutate func(*LineInput)
		field  string
	}{
		{"zero qty", func(l *LineInput) { l.Qty = 0 }, "lines[3].qty"},
		{"negative qty", func(l *LineInput) { l.Qty = types.NewQuantity(-1) }, "lines[3].qty"},
		{"negative rate", func(l *LineInput) { l.Rate = money("-0.01") }, "lines[3].rate"},
		{"discount over 100", func(l *LineInput) { l.DiscountPercent = money("100.5") }, "lines[3].discountPercent"},
		{"negative tax", func(l *LineInput) { l.TaxPercent = money("-5") }, "lines[3].taxPercent"},
	}

	require.NoError(t, ValidateLine(3, valid))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := ValidateLine(3, in)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestValidateRoundOff(t *testing.T) {
	assert.NoError(t, ValidateRoundOff(money("-1")))
	assert.NoError(t, ValidateRoundOff(money("0.49")))
	assert.Error(t, ValidateRoundOff(money("1.01")))
}
