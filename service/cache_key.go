package service

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"loan-payoff/domain"
)

// cacheKey hashes the normalized input. Money is formatted at cent precision
// so 3560 and 3560.00 share a key.
func cacheKey(input domain.PayoffInput) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%d|%s", input.Strategy, input.TermYears, roundMoney(input.ExtraPayment).StringFixed(moneyPlaces))
	for _, l := range input.Loans {
		fmt.Fprintf(h, "|%s,%s,%s",
			roundMoney(l.Balance).StringFixed(moneyPlaces),
			l.InterestRate.String(),
			roundMoney(l.MinPayment).StringFixed(moneyPlaces))
	}
	return fmt.Sprintf("payoff:%016x", h.Sum64())
}
