package service

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGenerateTestLoans(t *testing.T) {
	loans := GenerateTestLoans(rand.New(rand.NewSource(42)), 25)
	if len(loans) != 25 {
		t.Fatalf("expected 25 loans, got %d", len(loans))
	}

	low, high := decimal.NewFromInt(5000), decimal.NewFromInt(10000)
	for i, l := range loans {
		if l.Balance.LessThan(low) || l.Balance.GreaterThan(high) || !l.Balance.IsInteger() {
			t.Errorf("loan %d: balance %s out of range", i, l.Balance)
		}
		if l.InterestRate.LessThan(dec("0.02")) || l.InterestRate.GreaterThan(dec("0.1")) {
			t.Errorf("loan %d: rate %s out of range", i, l.InterestRate)
		}
		if l.InterestRate.Exponent() < -4 {
			t.Errorf("loan %d: rate %s has more than 4 places", i, l.InterestRate)
		}
		if want := l.Balance.Mul(l.InterestRate).RoundBank(2); !l.MinPayment.Equal(want) {
			t.Errorf("loan %d: min payment %s, want %s", i, l.MinPayment, want)
		}
	}

	again := GenerateTestLoans(rand.New(rand.NewSource(42)), 25)
	if !reflect.DeepEqual(loans, again) {
		t.Errorf("expected the same seed to give the same portfolio")
	}
}

func TestCacheKey(t *testing.T) {
	a := sampleInput("compare")
	a.TermYears = 10
	b := sampleInput("compare")
	b.TermYears = 10
	b.Loans[0].Balance = dec("3560.00")
	b.ExtraPayment = dec("174.000")

	if cacheKey(a) != cacheKey(b) {
		t.Errorf("expected equal keys for equal amounts")
	}

	b.ExtraPayment = dec("175")
	if cacheKey(a) == cacheKey(b) {
		t.Errorf("expected different keys for different extra payments")
	}

	c := sampleInput("snowball")
	c.TermYears = 10
	if cacheKey(a) == cacheKey(c) {
		t.Errorf("expected different keys for different strategies")
	}
}
