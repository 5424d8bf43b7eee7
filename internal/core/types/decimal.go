// Package types provides the numeric value types shared by all ledger components.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fraction digits every stored amount carries.
const MoneyPlaces int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point drift over many lines.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to MoneyPlaces, half away from zero.
func Round2(m Money) Money {
	return m.Round(MoneyPlaces)
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Percent is a rate expressed in percent (18 means 18%).
type Percent = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// InPercentRange reports whether p lies in [0, 100].
func InPercentRange(p Percent) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// Fraction converts a percent to a multiplier (18 -> 0.18).
func Fraction(p Percent) decimal.Decimal {
	return p.Div(hundred)
}

// Quantity is a fixed-point quantity with 4 decimal places (scale = 1e4).
// Stored as BIGINT so stock increments stay integer arithmetic in the database.
// Fractional quantities (weight, volume) are never floored.
type Quantity int64

const QuantityScale int64 = 10_000

func NewQuantity(units int64) Quantity { return Quantity(units * QuantityScale) }

func NewQuantityFromInt64Scaled(v int64) Quantity { return Quantity(v) }

// MaxQuantityUnits bounds the whole part of a Quantity so that scaling by
// QuantityScale stays inside int64.
const MaxQuantityUnits = math.MaxInt64 / QuantityScale

// ErrQuantityRange is returned for quantities whose magnitude reaches MaxQuantityUnits.
var ErrQuantityRange = errors.New("quantity out of range")

// NewQuantityFromDecimal truncates anything past 4 fraction digits.
func NewQuantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(MaxQuantityUnits)) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityRange, d.String())
	}
	return Quantity(d.Shift(4).Truncate(0).IntPart()), nil
}

// ParseQuantity parses a decimal string such as "2.5" or "-10".
func ParseQuantity(s string) (Quantity, error) {
	return parseQuantityString(s)
}

// MustQuantity parses s, panics on error. Use only for constants and tests.
func MustQuantity(s string) Quantity {
	q, err := parseQuantityString(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Int64Scaled() int64 { return int64(q) }

// Decimal returns the exact decimal value of q.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -4) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}

// MarshalJSON encodes Quantity as JSON number (not string), preserving 4 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	parsed, err := parseQuantityString(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		return NewQuantityFromDecimal(d)
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	intPartStr, fracStr, _ := strings.Cut(s, ".")
	if intPartStr == "" {
		intPartStr = "0"
	}
	if !isDigits(intPartStr) || !isDigits(fracStr) {
		return 0, fmt.Errorf("parse quantity %q: unexpected character", s)
	}

	intPart, err := strconv.ParseInt(intPartStr, 10, 64)
	if err != nil || intPart >= MaxQuantityUnits {
		return 0, fmt.Errorf("%w: %s", ErrQuantityRange, s)
	}

	// pad right, truncate extra digits
	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
	}
	for len(fracStr) < 4 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity fractional part: %w", err)
	}

	return Quantity(sign * (intPart*QuantityScale + frac)), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
