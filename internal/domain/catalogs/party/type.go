package party

import (
	"github.com/shopspring/decimal"

	"tradebook/internal/core/types"
)

// Type is the closed set of party kinds.
type Type string

const (
	TypeCustomer Type = "Customer"
	TypeSupplier Type = "Supplier"
)

// Side is a ledger column.
type Side int

const (
	Debit Side = iota
	Credit
)

func (s Side) String() string {
	if s == Debit {
		return "debit"
	}
	return "credit"
}

// convention is the sign table row for one party type.
type convention struct {
	debit       int64
	credit      int64
	paymentSide Side
}

// conventions is the single source of sign rules for the party ledger and the
// outstanding report. A customer's balance is what they owe us; a supplier's
// balance is what we owe them.
var conventions = map[Type]convention{
	TypeCustomer: {debit: +1, credit: -1, paymentSide: Credit},
	TypeSupplier: {debit: -1, credit: +1, paymentSide: Debit},
}

// Valid reports whether t is one of the known party types.
func (t Type) Valid() bool {
	_, ok := conventions[t]
	return ok
}

// Apply returns balance moved by one ledger row.
func (t Type) Apply(balance, debit, credit types.Money) types.Money {
	c := conventions[t]
	return balance.
		Add(debit.Mul(decimal.NewFromInt(c.debit))).
		Add(credit.Mul(decimal.NewFromInt(c.credit)))
}

// PaymentSide is the column a payment to or from this party is posted on:
// money received from a customer is a credit, money paid to a supplier a debit.
func (t Type) PaymentSide() Side {
	return conventions[t].paymentSide
}
