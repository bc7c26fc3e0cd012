package service

import (
	"errors"
	"strings"

	"loan-payoff/repository"
)

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrPlanNotFound    = repository.ErrPlanNotFound
)

// ValidationError lists every problem found in an input before any
// simulation ran.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
