package service

import (
	"github.com/shopspring/decimal"

	"loan-payoff/domain"
)

const (
	monthsPerYear = 12
	// moneyPlaces is the number of decimal places every monetary amount is
	// rounded to, half to even.
	moneyPlaces = 2
)

var twelve = decimal.NewFromInt(monthsPerYear)

// roundMoney rounds an amount to cents, half to even.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyPlaces)
}

// monthlyInterest returns one month of interest on balance at the annual
// nominal rate, rounded to cents.
func monthlyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return roundMoney(balance.Mul(annualRate).Div(twelve))
}

// amortize runs termMonths of minimum-only payments on a single loan and
// returns the interest accrued. The payment is capped at balance+interest so
// the balance never goes below zero; months after payoff add nothing.
func amortize(loan domain.Loan, termMonths int) decimal.Decimal {
	balance := loan.Balance
	total := decimal.Zero
	for m := 0; m < termMonths; m++ {
		interest := monthlyInterest(balance, loan.InterestRate)
		total = total.Add(interest)
		balance = balance.Sub(decimal.Min(loan.MinPayment, balance.Add(interest)))
	}
	return total
}

// BaselineInterest is the total interest paid on minimum payments alone
// over termMonths months.
func BaselineInterest(loans []domain.Loan, termMonths int) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range loans {
		total = total.Add(amortize(loan, termMonths))
	}
	return total
}

// ProjectedInterest is BaselineInterest broken down per loan. LoanIDs are the
// 1-based positions in loans.
func ProjectedInterest(loans []domain.Loan, termMonths int) []domain.LoanInterest {
	projected := make([]domain.LoanInterest, 0, len(loans))
	for i, loan := range loans {
		projected = append(projected, domain.LoanInterest{
			LoanID:   i + 1,
			Interest: amortize(loan, termMonths),
		})
	}
	return projected
}
