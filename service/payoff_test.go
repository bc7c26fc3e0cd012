package service

import (
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"loan-payoff/domain"
)

type strategyFunc func([]domain.Loan, decimal.Decimal, int) (domain.StrategyResult, error)

var allStrategies = map[domain.Strategy]strategyFunc{
	domain.Snowball:  SnowballPayment,
	domain.Avalanche: AvalanchePayment,
	domain.Hybrid:    HybridPayment,
}

func loanIDs(order []domain.PayoffStep) []int {
	ids := make([]int, len(order))
	for i, step := range order {
		ids[i] = step.LoanID
	}
	return ids
}

func TestStrategies_SamplePortfolio(t *testing.T) {
	wantOrder := map[domain.Strategy][]int{
		domain.Snowball:  {2, 1, 5, 3, 4, 6},
		domain.Avalanche: {2, 1, 5, 3, 4, 6},
		domain.Hybrid:    {6, 4, 5, 3, 1, 2},
	}

	for strategy, fn := range allStrategies {
		t.Run(string(strategy), func(t *testing.T) {
			result, err := fn(SamplePortfolio(), decimal.NewFromInt(174), 10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Strategy != strategy {
				t.Errorf("expected strategy %s, got %s", strategy, result.Strategy)
			}
			if !result.BaselineInterest.Equal(dec("5495.23")) {
				t.Errorf("expected baseline 5495.23, got %s", result.BaselineInterest)
			}
			if !result.StrategyInterest.Equal(dec("12858.00")) {
				t.Errorf("expected strategy interest 12858.00, got %s", result.StrategyInterest)
			}
			if !result.Savings.Equal(dec("-7362.77")) {
				t.Errorf("expected savings -7362.77, got %s", result.Savings)
			}
			if got := loanIDs(result.PayoffOrder); !reflect.DeepEqual(got, wantOrder[strategy]) {
				t.Errorf("expected order %v, got %v", wantOrder[strategy], got)
			}
			for _, step := range result.PayoffOrder {
				if !step.ExtraPayment.Equal(dec("174")) {
					t.Errorf("loan %d: expected extra 174, got %s", step.LoanID, step.ExtraPayment)
				}
			}
			if !result.YearsEarlyDefined || math.Abs(result.YearsEarly-7.6601525322870926) > 1e-9 {
				t.Errorf("expected years early ~7.66015, got %v (defined=%v)", result.YearsEarly, result.YearsEarlyDefined)
			}
		})
	}
}

func TestStrategies_CheckPortfolio(t *testing.T) {
	wantOrder := map[domain.Strategy][]int{
		domain.Snowball:  {3, 1, 2, 5, 4},
		domain.Avalanche: {3, 1, 2, 5, 4},
		domain.Hybrid:    {4, 2, 5, 3, 1},
	}
	for strategy, fn := range allStrategies {
		result, err := fn(CheckPortfolio(), decimal.NewFromInt(174), 10)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if !result.Savings.Equal(dec("-9854.83")) {
			t.Errorf("%s: expected savings -9854.83, got %s", strategy, result.Savings)
		}
		if got := loanIDs(result.PayoffOrder); !reflect.DeepEqual(got, wantOrder[strategy]) {
			t.Errorf("%s: expected order %v, got %v", strategy, wantOrder[strategy], got)
		}
	}
}

func TestStrategies_SingleLoanNoExtra(t *testing.T) {
	// The targeted payment switches the loan's minimum off, so the
	// post-simulation pass accrues interest on 980 for the whole term.
	loans := []domain.Loan{domain.NewLoan(1000, 0.05, 20)}

	for strategy, fn := range allStrategies {
		result, err := fn(loans, decimal.Zero, 10)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if !result.BaselineInterest.Equal(dec("106.25")) {
			t.Errorf("%s: expected baseline 106.25, got %s", strategy, result.BaselineInterest)
		}
		if !result.StrategyInterest.Equal(dec("489.60")) {
			t.Errorf("%s: expected strategy interest 489.60, got %s", strategy, result.StrategyInterest)
		}
		if !result.Savings.Equal(dec("-383.35")) {
			t.Errorf("%s: expected savings -383.35, got %s", strategy, result.Savings)
		}
		if got := loanIDs(result.PayoffOrder); !reflect.DeepEqual(got, []int{1}) {
			t.Errorf("%s: expected order [1], got %v", strategy, got)
		}
		if math.Abs(result.YearsEarly-5.392) > 1e-12 {
			t.Errorf("%s: expected years early 5.392, got %v", strategy, result.YearsEarly)
		}
	}
}

func TestStrategies_EmptyPortfolio(t *testing.T) {
	for strategy, fn := range allStrategies {
		result, err := fn(nil, decimal.NewFromInt(174), 10)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if !result.Savings.IsZero() {
			t.Errorf("%s: expected zero savings, got %s", strategy, result.Savings)
		}
		if result.PayoffOrder == nil || len(result.PayoffOrder) != 0 {
			t.Errorf("%s: expected empty non-nil order, got %v", strategy, result.PayoffOrder)
		}
		if result.YearsEarly != 0 || result.YearsEarlyDefined {
			t.Errorf("%s: expected undefined years early, got %v", strategy, result.YearsEarly)
		}
	}
}

func TestStrategies_ZeroBaseline(t *testing.T) {
	loans := []domain.Loan{domain.NewLoan(1000, 0, 20)}
	for strategy, fn := range allStrategies {
		result, err := fn(loans, decimal.NewFromInt(100), 10)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if !result.BaselineInterest.IsZero() || !result.Savings.IsZero() {
			t.Errorf("%s: expected zero interest, got baseline %s savings %s", strategy, result.BaselineInterest, result.Savings)
		}
		if result.YearsEarlyDefined || result.YearsEarly != 0 {
			t.Errorf("%s: expected years early to be undefined, got %v", strategy, result.YearsEarly)
		}
		if math.IsNaN(result.YearsEarly) || math.IsInf(result.YearsEarly, 0) {
			t.Errorf("%s: years early must be finite", strategy)
		}
	}
}

func TestStrategies_ZeroBalancePortfolioSkipsLoop(t *testing.T) {
	loans := []domain.Loan{domain.NewLoan(0, 0.05, 20)}
	for strategy, fn := range allStrategies {
		result, err := fn(loans, decimal.NewFromInt(100), 10)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		if len(result.PayoffOrder) != 0 {
			t.Errorf("%s: expected no payoff steps, got %v", strategy, loanIDs(result.PayoffOrder))
		}
	}
}

func TestStrategies_TerminateWithinLoanCount(t *testing.T) {
	loans := append(SamplePortfolio(), CheckPortfolio()...)
	for strategy, fn := range allStrategies {
		for _, extra := range []int64{0, 50, 174, 100000} {
			result, err := fn(loans, decimal.NewFromInt(extra), 10)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", strategy, err)
			}
			if len(result.PayoffOrder) > len(loans) {
				t.Errorf("%s extra=%d: %d steps for %d loans", strategy, extra, len(result.PayoffOrder), len(loans))
			}
			seen := map[int]bool{}
			for _, step := range result.PayoffOrder {
				if seen[step.LoanID] {
					t.Errorf("%s extra=%d: loan %d targeted twice", strategy, extra, step.LoanID)
				}
				seen[step.LoanID] = true
			}
		}
	}
}

func TestAvalanche_MatchesSnowballWithEqualRates(t *testing.T) {
	loans := []domain.Loan{
		domain.NewLoan(1000, 0.05, 20),
		domain.NewLoan(2000, 0.05, 40),
		domain.NewLoan(750, 0.05, 15),
	}
	snow, err := SnowballPayment(loans, decimal.NewFromInt(100), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aval, err := AvalanchePayment(loans, decimal.NewFromInt(100), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snow.Savings.Equal(aval.Savings) {
		t.Errorf("expected equal savings, snowball %s avalanche %s", snow.Savings, aval.Savings)
	}
	if !reflect.DeepEqual(loanIDs(snow.PayoffOrder), loanIDs(aval.PayoffOrder)) {
		t.Errorf("expected equal order, snowball %v avalanche %v", loanIDs(snow.PayoffOrder), loanIDs(aval.PayoffOrder))
	}
}

func TestSnowball_SkipsLoansWithoutMinimum(t *testing.T) {
	loans := []domain.Loan{
		domain.NewLoan(500, 0.05, 10),
		domain.NewLoan(1000, 0.05, 20),
		domain.NewLoan(300, 0.20, 0),
	}

	snow, err := SnowballPayment(loans, decimal.NewFromInt(50), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := loanIDs(snow.PayoffOrder); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("snowball: expected [1 2], got %v", got)
	}
	if !snow.Savings.Equal(dec("-525.83")) {
		t.Errorf("snowball: expected savings -525.83, got %s", snow.Savings)
	}

	// the hybrid queue is fixed up front and still visits the inactive loan
	hybrid, err := HybridPayment(loans, decimal.NewFromInt(50), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := loanIDs(hybrid.PayoffOrder); !reflect.DeepEqual(got, []int{3, 2, 1}) {
		t.Errorf("hybrid: expected [3 2 1], got %v", got)
	}
	if !hybrid.Savings.Equal(dec("-426.23")) {
		t.Errorf("hybrid: expected savings -426.23, got %s", hybrid.Savings)
	}
}

func TestStrategies_DoNotMutateInput(t *testing.T) {
	loans := SamplePortfolio()
	before := SamplePortfolio()

	for strategy, fn := range allStrategies {
		if _, err := fn(loans, decimal.NewFromInt(174), 10); err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}
		for i := range loans {
			if !loans[i].Balance.Equal(before[i].Balance) ||
				!loans[i].InterestRate.Equal(before[i].InterestRate) ||
				!loans[i].MinPayment.Equal(before[i].MinPayment) {
				t.Fatalf("%s: loan %d was modified: %+v", strategy, i+1, loans[i])
			}
		}
	}
}

func TestStrategies_RejectInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		loans []domain.Loan
		extra decimal.Decimal
		years int
	}{
		{"negative balance", []domain.Loan{domain.NewLoan(-1, 0.05, 20)}, decimal.Zero, 10},
		{"negative rate", []domain.Loan{domain.NewLoan(1000, -0.05, 20)}, decimal.Zero, 10},
		{"negative minimum", []domain.Loan{domain.NewLoan(1000, 0.05, -20)}, decimal.Zero, 10},
		{"negative extra", SamplePortfolio(), decimal.NewFromInt(-5), 10},
		{"zero term", SamplePortfolio(), decimal.Zero, 0},
		{"negative term", nil, decimal.Zero, -3},
	}
	for _, tt := range tests {
		for strategy, fn := range allStrategies {
			_, err := fn(tt.loans, tt.extra, tt.years)
			if err == nil {
				t.Errorf("%s/%s: expected error", tt.name, strategy)
				continue
			}
			if !IsValidationError(err) {
				t.Errorf("%s/%s: expected a validation error, got %T: %v", tt.name, strategy, err, err)
			}
		}
	}
}

func TestRunStrategy(t *testing.T) {
	result, err := RunStrategy(domain.Hybrid, SamplePortfolio(), decimal.NewFromInt(174), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strategy != domain.Hybrid {
		t.Errorf("expected hybrid, got %s", result.Strategy)
	}

	if _, err := RunStrategy(domain.Compare, SamplePortfolio(), decimal.Zero, 10); err == nil {
		t.Errorf("expected error for compare, which is not a single strategy")
	}
	if _, err := RunStrategy("minimum", SamplePortfolio(), decimal.Zero, 10); err == nil {
		t.Errorf("expected error for unknown strategy")
	}
}
