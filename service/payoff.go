package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"loan-payoff/domain"
)

// workingLoan is the engine's private copy of a caller's loan.
type workingLoan struct {
	id int
	domain.Loan
}

// selector picks the index of the next loan to target, or -1 when none is left.
type selector func(work []workingLoan) int

// newWorkingSet copies loans, rounding money to cents. The caller's slice is
// never aliased.
func newWorkingSet(loans []domain.Loan) []workingLoan {
	work := make([]workingLoan, len(loans))
	for i, l := range loans {
		work[i] = workingLoan{
			id: i + 1,
			Loan: domain.Loan{
				Balance:      roundMoney(l.Balance),
				InterestRate: l.InterestRate,
				MinPayment:   roundMoney(l.MinPayment),
			},
		}
	}
	return work
}

func loansOf(work []workingLoan) []domain.Loan {
	loans := make([]domain.Loan, len(work))
	for i, w := range work {
		loans[i] = w.Loan
	}
	return loans
}

func totalBalance(work []workingLoan) decimal.Decimal {
	total := decimal.Zero
	for _, w := range work {
		total = total.Add(w.Balance)
	}
	return total
}

// smallestActiveBalance selects, among loans with a positive minimum payment,
// the one with the smallest current balance. Ties go to the earlier position.
func smallestActiveBalance(work []workingLoan) int {
	best := -1
	for i, w := range work {
		if !w.Active() {
			continue
		}
		if best < 0 || w.Balance.LessThan(work[best].Balance) {
			best = i
		}
	}
	return best
}

// priorityQueue consumes a fixed sequence of positions decided up front.
func priorityQueue(order []int) selector {
	next := 0
	return func(work []workingLoan) int {
		if next >= len(order) {
			return -1
		}
		i := order[next]
		next++
		return i
	}
}

// simulate applies one targeted payment per selected loan: minimum plus the
// whole extra amount, capped at what zeroes the loan after this month's
// interest. The loan then leaves the active pool whether or not it reached
// zero. At most len(work) iterations run.
func simulate(work []workingLoan, extra decimal.Decimal, next selector) []domain.PayoffStep {
	order := make([]domain.PayoffStep, 0, len(work))
	for step := 0; step < len(work); step++ {
		if !totalBalance(work).IsPositive() {
			break
		}
		i := next(work)
		if i < 0 {
			break
		}
		l := &work[i]
		interest := monthlyInterest(l.Balance, l.InterestRate)
		payment := decimal.Min(l.MinPayment.Add(extra), l.Balance.Add(interest))
		l.Balance = l.Balance.Sub(payment)
		l.MinPayment = decimal.Zero
		order = append(order, domain.PayoffStep{LoanID: l.id, ExtraPayment: extra})
	}
	return order
}

// SnowballPayment targets the smallest remaining balance first.
func SnowballPayment(loans []domain.Loan, extra decimal.Decimal, termYears int) (domain.StrategyResult, error) {
	return run(domain.Snowball, loans, extra, termYears, func(work []workingLoan, _ int) selector {
		return smallestActiveBalance
	})
}

// AvalanchePayment sorts the loans once by (interest rate, balance) ascending
// and then runs the snowball loop over the sorted copy. Payoff steps keep the
// caller's loan numbering.
func AvalanchePayment(loans []domain.Loan, extra decimal.Decimal, termYears int) (domain.StrategyResult, error) {
	return run(domain.Avalanche, loans, extra, termYears, func(work []workingLoan, _ int) selector {
		sort.SliceStable(work, func(i, j int) bool {
			if c := work[i].InterestRate.Cmp(work[j].InterestRate); c != 0 {
				return c < 0
			}
			return work[i].Balance.LessThan(work[j].Balance)
		})
		return smallestActiveBalance
	})
}

// HybridPayment ranks loans once by the interest each would accrue over the
// whole term at minimum payments, highest first, and pays them in that order.
func HybridPayment(loans []domain.Loan, extra decimal.Decimal, termYears int) (domain.StrategyResult, error) {
	return run(domain.Hybrid, loans, extra, termYears, func(work []workingLoan, termMonths int) selector {
		projected := ProjectedInterest(loansOf(work), termMonths)
		sort.SliceStable(projected, func(i, j int) bool {
			return projected[i].Interest.GreaterThan(projected[j].Interest)
		})
		order := make([]int, len(projected))
		for i, p := range projected {
			order[i] = p.LoanID - 1
		}
		return priorityQueue(order)
	})
}

// RunStrategy dispatches to the payoff function for strategy.
func RunStrategy(strategy domain.Strategy, loans []domain.Loan, extra decimal.Decimal, termYears int) (domain.StrategyResult, error) {
	switch strategy {
	case domain.Snowball:
		return SnowballPayment(loans, extra, termYears)
	case domain.Avalanche:
		return AvalanchePayment(loans, extra, termYears)
	case domain.Hybrid:
		return HybridPayment(loans, extra, termYears)
	}
	return domain.StrategyResult{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// run holds the steps shared by every strategy: validation, baseline,
// ordering, simulation and aggregation. prepare may reorder work in place
// before returning the selection policy.
func run(
	strategy domain.Strategy,
	loans []domain.Loan,
	extra decimal.Decimal,
	termYears int,
	prepare func(work []workingLoan, termMonths int) selector,
) (domain.StrategyResult, error) {
	if err := validateEngineInput(loans, extra, termYears); err != nil {
		return domain.StrategyResult{}, err
	}

	result := domain.StrategyResult{
		Strategy:         strategy,
		BaselineInterest: decimal.Zero,
		StrategyInterest: decimal.Zero,
		Savings:          decimal.Zero,
		PayoffOrder:      []domain.PayoffStep{},
	}
	if len(loans) == 0 {
		return result, nil
	}

	termMonths := termYears * monthsPerYear
	extra = roundMoney(extra)
	work := newWorkingSet(loans)

	baseline := BaselineInterest(loansOf(work), termMonths)
	result.PayoffOrder = simulate(work, extra, prepare(work, termMonths))

	return aggregate(result, baseline, loansOf(work), termYears), nil
}

// aggregate recomputes interest over the term on the loans as they stand
// after the targeted payments and derives savings and years early.
func aggregate(result domain.StrategyResult, baseline decimal.Decimal, after []domain.Loan, termYears int) domain.StrategyResult {
	post := BaselineInterest(after, termYears*monthsPerYear)

	result.BaselineInterest = baseline
	result.StrategyInterest = post
	result.Savings = baseline.Sub(post)

	// With no baseline interest the ratio is undefined; report 0.
	if baseline.IsZero() {
		return result
	}
	result.YearsEarly = decimal.NewFromInt(int64(termYears)).Sub(post.Div(baseline)).InexactFloat64()
	result.YearsEarlyDefined = true
	return result
}
