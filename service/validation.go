package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"loan-payoff/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// decimal.Decimal validates as a float64 (min=0 and friends).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return signedFloat(d)
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// signedFloat converts d for numeric tags. A negative d too small for a
// float64 would round to -0 and pass min=0, so it keeps its sign.
func signedFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if d.IsNegative() && f >= 0 {
		return -math.SmallestNonzeroFloat64
	}
	return f
}

// describe turns a field error into "loans[2].balance must be >= 0".
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %q", field, fe.Tag())
}

func collect(ve *ValidationError, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			ve.add(describe(fe))
		}
		return
	}
	ve.add(err.Error())
}

// validateEngineInput is the numeric sanity check every strategy runs first.
func validateEngineInput(loans []domain.Loan, extra decimal.Decimal, termYears int) error {
	ve := &ValidationError{}
	if termYears <= 0 {
		ve.add(fmt.Sprintf("term_years must be > 0, got %d", termYears))
	}
	if extra.IsNegative() {
		ve.add("extra_payment must be >= 0")
	}
	for i, loan := range loans {
		var fieldErrs validator.ValidationErrors
		if err := validate.Struct(loan); errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				ve.add(fmt.Sprintf("loans[%d].%s must be >= %s", i, fe.Field(), fe.Param()))
			}
		} else if err != nil {
			ve.add(err.Error())
		}
	}
	return ve.orNil()
}

// validateInput checks a request against its struct tags and the service
// limits.
func validateInput(input domain.PayoffInput, limits Limits) error {
	ve := &ValidationError{}
	collect(ve, validate.Struct(input))
	if len(input.Loans) > limits.MaxLoans {
		ve.add(fmt.Sprintf("loans exceeds the maximum of %d", limits.MaxLoans))
	}
	if input.TermYears > limits.MaxTermYears {
		ve.add(fmt.Sprintf("term_years exceeds the maximum of %d", limits.MaxTermYears))
	}
	for i, loan := range input.Loans {
		if loan.Balance.GreaterThan(limits.MaxBalance) {
			ve.add(fmt.Sprintf("loans[%d].balance exceeds the maximum of %s", i, limits.MaxBalance.StringFixed(2)))
		}
		if loan.InterestRate.GreaterThan(limits.MaxInterestRate) {
			ve.add(fmt.Sprintf("loans[%d].interest_rate exceeds the maximum of %s", i, limits.MaxInterestRate.String()))
		}
	}
	return ve.orNil()
}
