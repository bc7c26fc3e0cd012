package service

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"loan-payoff/domain"
)

// SamplePortfolio is the reference portfolio used by the CLI's sample
// command. Pair it with an extra payment of 174.
func SamplePortfolio() []domain.Loan {
	return []domain.Loan{
		domain.NewLoan(3560, 0.0453, 37),
		domain.NewLoan(3282, 0.0275, 31),
		domain.NewLoan(5489, 0.0373, 55),
		domain.NewLoan(7038, 0.0373, 70),
		domain.NewLoan(5460, 0.0499, 58),
		domain.NewLoan(7042, 0.0499, 75),
	}
}

// SampleExtraPayment goes with SamplePortfolio.
func SampleExtraPayment() decimal.Decimal {
	return decimal.NewFromInt(174)
}

// CheckPortfolio is a second fixed portfolio with distinct rates.
func CheckPortfolio() []domain.Loan {
	return []domain.Loan{
		domain.NewLoan(5000, 0.03, 50),
		domain.NewLoan(7000, 0.05, 70),
		domain.NewLoan(3000, 0.10, 30),
		domain.NewLoan(10000, 0.07, 100),
		domain.NewLoan(8000, 0.04, 80),
	}
}

// GenerateTestLoans builds n random loans: whole-dollar balances in
// [5000, 10000], rates in [0.02, 0.10) rounded to 4 places, and a minimum
// payment of balance*rate rounded to cents.
func GenerateTestLoans(rng *rand.Rand, n int) []domain.Loan {
	loans := make([]domain.Loan, 0, n)
	for i := 0; i < n; i++ {
		balance := decimal.NewFromInt(int64(5000 + rng.Intn(5001)))
		rate := decimal.NewFromFloat(0.02 + rng.Float64()*0.08).RoundBank(4)
		loans = append(loans, domain.Loan{
			Balance:      balance,
			InterestRate: rate,
			MinPayment:   roundMoney(balance.Mul(rate)),
		})
	}
	return loans
}
