// Package reports derives ledgers and balances from invoices and payments.
// Nothing here is cached: every report is recomputed from stored documents.
package reports

import (
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
)

// --- Party Ledger ---

// RowKind classifies a ledger row.
type RowKind string

const (
	RowSale       RowKind = "SALE"
	RowPurchase   RowKind = "PURCHASE"
	RowSettlement RowKind = "SETTLEMENT"
	RowPayment    RowKind = "PAYMENT"
)

// LedgerRow is one event in a party's ledger with the balance after it.
type LedgerRow struct {
	DocumentID  id.ID       `json:"id"`
	Date        time.Time   `json:"date"`
	Reference   string      `json:"ref"`
	Kind        RowKind     `json:"type"`
	Description string      `json:"desc"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Balance     types.Money `json:"balance"`
}

// PartyLedger is the chronological ledger of one party.
type PartyLedger struct {
	PartyID        id.ID       `json:"partyId"`
	PartyName      string      `json:"partyName"`
	PartyType      party.Type  `json:"partyType"`
	OpeningBalance types.Money `json:"openingBalance"`
	From           *time.Time  `json:"from,omitempty"`
	To             *time.Time  `json:"to,omitempty"`
	Rows           []LedgerRow `json:"rows"`
	ClosingBalance types.Money `json:"closingBalance"`
}

// --- Outstanding ---

// PartyTotals are the per-party sums the outstanding report needs.
type PartyTotals struct {
	PartyID         id.ID       `db:"party_id"`
	CreditSales     types.Money `db:"credit_sales"`
	CreditPurchases types.Money `db:"credit_purchases"`
	Payments        types.Money `db:"payments"`
}

// OutstandingRow is the current balance of one party.
type OutstandingRow struct {
	ID             id.ID       `json:"id"`
	Name           string      `json:"name"`
	Mobile         string      `json:"mobile"`
	Type           party.Type  `json:"type"`
	OpeningBalance types.Money `json:"openingBalance"`
	// TotalCreditSales holds credit purchases for suppliers.
	TotalCreditSales types.Money `json:"totalCreditSales"`
	TotalReceived    types.Money `json:"totalReceived"`
	CurrentBalance   types.Money `json:"currentBalance"`
}

// Outstanding is the receivable/payable summary over all parties.
type Outstanding struct {
	Rows        []OutstandingRow `json:"rows"`
	Receivables types.Money      `json:"receivables"`
	Payables    types.Money      `json:"payables"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// --- Dashboard ---

// InvoiceTotals are all-time invoice sums by direction.
type InvoiceTotals struct {
	Sales     types.Money `db:"sales"`
	Purchases types.Money `db:"purchases"`
}

// RecentInvoice is a dashboard summary of one invoice.
type RecentInvoice struct {
	ID         id.ID        `db:"id" json:"id"`
	InvoiceNo  string       `db:"invoice_no" json:"invoiceNo"`
	PartyName  string       `db:"party_name" json:"party"`
	Type       invoice.Type `db:"type" json:"type"`
	GrandTotal types.Money  `db:"grand_total" json:"amount"`
	Date       time.Time    `db:"date" json:"date"`
}

// Dashboard is the home screen summary.
type Dashboard struct {
	TotalSales        types.Money     `json:"totalSales"`
	TotalPurchase     types.Money     `json:"totalPurchase"`
	Receivables       types.Money     `json:"receivables"`
	Payables          types.Money     `json:"payables"`
	LowStock          int             `json:"lowStock"`
	LowStockThreshold types.Quantity  `json:"lowStockThreshold"`
	RecentInvoices    []RecentInvoice `json:"recentTransactions"`
}
