package reports

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
)

// BuildLedger merges a party's invoices and payments into one chronological
// sequence and attaches the running balance, seeded at the opening balance.
//
// invoices and payments must each be in document order. On equal dates
// invoices come first, each followed by its settlement row, then payments.
//
// A non-credit invoice was paid at the moment of sale, so it adds a
// settlement row on the party's payment side. This keeps the final balance
// equal to the outstanding balance, which only counts credit invoices.
func BuildLedger(p *party.Party, invoices []*invoice.Invoice, payments []*payment.Payment) []LedgerRow {
	rows := make([]LedgerRow, 0, 2*len(invoices)+len(payments))

	for _, inv := range invoices {
		row := LedgerRow{
			DocumentID: inv.ID,
			Date:       inv.Date,
			Reference:  inv.InvoiceNo,
			Debit:      decimal.Zero,
			Credit:     decimal.Zero,
		}
		if inv.Type == invoice.TypeSales {
			row.Kind, row.Description, row.Debit = RowSale, "Sale Invoice", inv.GrandTotal
		} else {
			row.Kind, row.Description, row.Credit = RowPurchase, "Purchase Invoice", inv.GrandTotal
		}
		rows = append(rows, row)

		if inv.IsCredit() {
			continue
		}
		settle := LedgerRow{
			DocumentID:  inv.ID,
			Date:        inv.Date,
			Reference:   inv.InvoiceNo,
			Kind:        RowSettlement,
			Description: fmt.Sprintf("Settlement (%s)", inv.PaymentMode),
		}
		settle.Debit, settle.Credit = onSide(p.Type.PaymentSide(), inv.GrandTotal)
		rows = append(rows, settle)
	}

	for _, pay := range payments {
		ref := pay.ID.String()
		if pay.Reference != nil {
			ref = *pay.Reference
		}
		row := LedgerRow{
			DocumentID:  pay.ID,
			Date:        pay.Date,
			Reference:   ref,
			Kind:        RowPayment,
			Description: fmt.Sprintf("Payment (%s)", pay.Mode),
		}
		row.Debit, row.Credit = onSide(p.Type.PaymentSide(), pay.Amount)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	balance := p.OpeningBalance
	for i := range rows {
		balance = p.Type.Apply(balance, rows[i].Debit, rows[i].Credit)
		rows[i].Balance = balance
	}
	return rows
}

func onSide(side party.Side, amount decimal.Decimal) (debit, credit decimal.Decimal) {
	if side == party.Debit {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}

// OutstandingFor computes a party's current balance from its totals, using
// the same sign table as BuildLedger.
func OutstandingFor(p *party.Party, t PartyTotals) OutstandingRow {
	creditTotal := t.CreditSales
	if p.Type == party.TypeSupplier {
		creditTotal = t.CreditPurchases
	}

	// credit invoices sit on the invoice side, payments on the payment side
	var invDebit, invCredit decimal.Decimal
	if p.Type == party.TypeCustomer {
		invDebit, invCredit = creditTotal, decimal.Zero
	} else {
		invDebit, invCredit = decimal.Zero, creditTotal
	}
	payDebit, payCredit := onSide(p.Type.PaymentSide(), t.Payments)

	balance := p.Type.Apply(p.OpeningBalance, invDebit, invCredit)
	balance = p.Type.Apply(balance, payDebit, payCredit)

	return OutstandingRow{
		ID:               p.ID,
		Name:             p.Name,
		Mobile:           p.Mobile,
		Type:             p.Type,
		OpeningBalance:   p.OpeningBalance,
		TotalCreditSales: creditTotal,
		TotalReceived:    t.Payments,
		CurrentBalance:   balance,
	}
}
