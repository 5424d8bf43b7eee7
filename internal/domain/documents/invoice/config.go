package invoice

import "tradebook/internal/core/numerator"

const (
	// NumeratorStrategy for invoices. Invoice numbers must be gapless, so they
	// are allocated inside the creating transaction.
	NumeratorStrategy = numerator.StrategyStrict

	// NumberPrefix gives INV-YYYY-NNNNN.
	NumberPrefix = "INV"

	// DefaultCreditDueDays is the payment term of credit invoices.
	DefaultCreditDueDays = 15
)

// Config tunes invoice assembly.
type Config struct {
	CreditDueDays int
}

// DefaultConfig returns the standard payment terms.
func DefaultConfig() Config {
	return Config{CreditDueDays: DefaultCreditDueDays}
}
