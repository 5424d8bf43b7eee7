package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{`3`, NewQuantity(3)},
		{`"2.5"`, Quantity(25_000)},
		{`0.125`, Quantity(1_250)},
		{`-1.00009`, Quantity(-10_000)},
		{`1e2`, NewQuantity(100)},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuantityDecimal(t *testing.T) {
	q := MustQuantity("12.3456")
	assert.Equal(t, "12.3456", q.Decimal().String())
	back, err := NewQuantityFromDecimal(q.Decimal())
	require.NoError(t, err)
	assert.Equal(t, q, back)
	assert.Equal(t, "-0.5000", MustQuantity("-0.5").String())
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "0.13", Round2(MustMoney("0.125")).String())
	assert.Equal(t, "-0.13", Round2(MustMoney("-0.125")).String())
	assert.True(t, Sum(MustMoney("0.1"), MustMoney("0.2")).Equal(MustMoney("0.3")))
}

func TestInPercentRange(t *testing.T) {
	assert.True(t, InPercentRange(MustMoney("0")))
	assert.True(t, InPercentRange(MustMoney("100")))
	assert.False(t, InPercentRange(MustMoney("100.01")))
	assert.False(t, InPercentRange(MustMoney("-1")))
}

func TestQuantityRejectsMalformedAndOverflow(t *testing.T) {
	tests := []struct {
		in       string
		outRange bool
	}{
		{`2000000000000000`, true},
		{`-2000000000000000`, true},
		{`922337203685477`, true},
		{`99999999999999999999`, true},
		{`1e16`, true},
		{`"1.-5"`, false},
		{`"1.+5"`, false},
		{`"--1"`, false},
		{`"1.2.3"`, false},
		{`"12a"`, false},
		{`""`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var q Quantity
			err := json.Unmarshal([]byte(tt.in), &q)
			require.Error(t, err)
			assert.Equal(t, tt.outRange, errors.Is(err, ErrQuantityRange), err.Error())
			assert.Zero(t, q)
		})
	}
}

func TestQuantityLargestAccepted(t *testing.T) {
	q, err := ParseQuantity("922337203685476.9999")
	require.NoError(t, err)
	assert.True(t, q.IsPositive())
	assert.Equal(t, "922337203685476.9999", q.String())

	_, err = NewQuantityFromDecimal(MustMoney("-922337203685477"))
	assert.ErrorIs(t, err, ErrQuantityRange)
}
