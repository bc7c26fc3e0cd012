package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Strategy string

const (
	Snowball  Strategy = "snowball"  // smallest balance first
	Avalanche Strategy = "avalanche" // lowest rate first, ties by balance
	Hybrid    Strategy = "hybrid"    // highest projected interest first
	Compare   Strategy = "compare"   // all of the above
)

// Strategies lists the concrete strategies in the order compare runs them.
var Strategies = []Strategy{Snowball, Avalanche, Hybrid}

type PayoffInput struct {
	Loans        []Loan          `json:"loans" validate:"dive"`
	ExtraPayment decimal.Decimal `json:"extra_payment" validate:"min=0"`
	TermYears    int             `json:"term_years" validate:"gte=0"`
	Strategy     Strategy        `json:"strategy" validate:"omitempty,oneof=snowball avalanche hybrid compare"`
}

// PayoffStep records which loan received the extra payment, by 1-based
// position in the caller's input.
type PayoffStep struct {
	LoanID       int             `json:"loan_id"`
	ExtraPayment decimal.Decimal `json:"extra_payment"`
}

type StrategyResult struct {
	Strategy         Strategy        `json:"strategy"`
	BaselineInterest decimal.Decimal `json:"baseline_interest"`
	StrategyInterest decimal.Decimal `json:"strategy_interest"`
	Savings          decimal.Decimal `json:"savings"`
	PayoffOrder      []PayoffStep    `json:"payoff_order"`
	// YearsEarly is termYears - strategyInterest/baselineInterest. It is a
	// ratio of interests, not a payoff date difference.
	YearsEarly        float64 `json:"years_early"`
	YearsEarlyDefined bool    `json:"years_early_defined"`
}

type PayoffPlan struct {
	ID        string           `json:"id"`
	Input     PayoffInput      `json:"input"`
	Results   []StrategyResult `json:"results"`
	Best      Strategy         `json:"best"`
	Summary   string           `json:"summary,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Result returns the result computed for strategy, if any.
func (p PayoffPlan) Result(strategy Strategy) (StrategyResult, bool) {
	for _, r := range p.Results {
		if r.Strategy == strategy {
			return r, true
		}
	}
	return StrategyResult{}, false
}
