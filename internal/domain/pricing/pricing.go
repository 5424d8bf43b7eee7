// Package pricing computes invoice line amounts and totals.
//
// Every line amount is rounded to two places exactly once; totals are plain
// sums of the rounded line amounts, so
//
//	Σ(line taxable + line tax) == Subtotal + Tax
//
// holds exactly for any number of lines.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/types"
)

// MaxRoundOff bounds the manual rounding adjustment of an invoice.
var MaxRoundOff = decimal.NewFromInt(1)

// LineInput is one priced line before tax.
type LineInput struct {
	Qty             types.Quantity
	Rate            types.Money
	DiscountPercent types.Percent
	TaxPercent      types.Percent
}

// LineAmounts are the computed amounts of one line.
type LineAmounts struct {
	Taxable types.Money
	Tax     types.Money
}

// Totals are the invoice-level amounts.
type Totals struct {
	Subtotal   types.Money `json:"subtotal"`
	Tax        types.Money `json:"taxAmount"`
	RoundOff   types.Money `json:"roundOff"`
	GrandTotal types.Money `json:"grandTotal"`
}

// LineTaxableValue returns qty * rate * (1 - discount/100), rounded to 2 places.
func LineTaxableValue(qty types.Quantity, rate types.Money, discountPercent types.Percent) types.Money {
	gross := qty.Decimal().Mul(rate)
	net := gross.Mul(decimal.NewFromInt(1).Sub(types.Fraction(discountPercent)))
	return types.Round2(net)
}

// LineTax returns taxable * tax/100, rounded to 2 places.
func LineTax(taxable types.Money, taxPercent types.Percent) types.Money {
	return types.Round2(taxable.Mul(types.Fraction(taxPercent)))
}

// Line prices one line.
func Line(in LineInput) LineAmounts {
	taxable := LineTaxableValue(in.Qty, in.Rate, in.DiscountPercent)
	return LineAmounts{
		Taxable: taxable,
		Tax:     LineTax(taxable, in.TaxPercent),
	}
}

// Sum computes invoice totals from already priced lines.
func Sum(lines []LineAmounts, roundOff types.Money) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Taxable)
		tax = tax.Add(l.Tax)
	}
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		RoundOff:   roundOff,
		GrandTotal: subtotal.Add(tax).Add(roundOff),
	}
}

// ValidateLine rejects inputs the arithmetic is not defined for.
// Values are never clamped.
func ValidateLine(idx int, in LineInput) error {
	field := func(name string) string { return fmt.Sprintf("lines[%d].%s", idx, name) }

	switch {
	case !in.Qty.IsPositive():
		return apperror.NewValidation("quantity must be greater than zero").
			WithDetail("field", field("qty"))
	case in.Rate.IsNegative():
		return apperror.NewValidation("rate must not be negative").
			WithDetail("field", field("rate"))
	case !types.InPercentRange(in.DiscountPercent):
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", field("discountPercent"))
	case !types.InPercentRange(in.TaxPercent):
		return apperror.NewValidation("tax percent must be between 0 and 100").
			WithDetail("field", field("taxPercent"))
	}
	return nil
}

// ValidateRoundOff checks the manual rounding adjustment lies in [-1, 1].
func ValidateRoundOff(roundOff types.Money) error {
	if roundOff.Abs().GreaterThan(MaxRoundOff) {
		return apperror.NewValidation("round off must be between -1 and 1").
			WithDetail("field", "roundOff")
	}
	return nil
}
