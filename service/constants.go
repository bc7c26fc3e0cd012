package service

import "github.com/shopspring/decimal"

const (
	DefaultTermYears   = 10
	MaxLoansPerRequest = 50            // loans per request
	MaxTermYears       = 50            // years
	MaxLoanBalance     = 100_000_000.0 // 100 million
	MaxInterestRate    = 10.0          // 1000% a year, as a fraction
	DefaultPlanHistory = 100
)

// Limits bounds what a single request may ask the engine to simulate.
type Limits struct {
	MaxLoans        int
	MaxTermYears    int
	MaxBalance      decimal.Decimal
	MaxInterestRate decimal.Decimal
}

func DefaultLimits() Limits {
	return Limits{
		MaxLoans:        MaxLoansPerRequest,
		MaxTermYears:    MaxTermYears,
		MaxBalance:      decimal.NewFromFloat(MaxLoanBalance),
		MaxInterestRate: decimal.NewFromFloat(MaxInterestRate),
	}
}
