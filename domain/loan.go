package domain

import "github.com/shopspring/decimal"

// Loan is one debt of a portfolio. Monetary fields are kept in cents
// precision by the service layer; InterestRate is an annual nominal
// fraction (0.045 means 4.5%).
type Loan struct {
	Balance      decimal.Decimal `json:"balance" validate:"min=0"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"min=0"`
	MinPayment   decimal.Decimal `json:"min_payment" validate:"min=0"`
}

// NewLoan builds a Loan from float inputs.
func NewLoan(balance, interestRate, minPayment float64) Loan {
	return Loan{
		Balance:      decimal.NewFromFloat(balance),
		InterestRate: decimal.NewFromFloat(interestRate),
		MinPayment:   decimal.NewFromFloat(minPayment),
	}
}

// Active reports whether the loan still takes part in payoff selection.
func (l Loan) Active() bool {
	return l.MinPayment.IsPositive()
}

// LoanInterest is the projected interest attributed to a single loan.
type LoanInterest struct {
	LoanID   int
	Interest decimal.Decimal
}
