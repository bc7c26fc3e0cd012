package repository

import (
	"context"
	"errors"

	"loan-payoff/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

type PlanRepository interface {
	// Save stores plan, assigning an ID when it has none, and returns the
	// stored copy.
	Save(ctx context.Context, plan domain.PayoffPlan) (domain.PayoffPlan, error)
	Get(ctx context.Context, id string) (domain.PayoffPlan, error)
	// List returns up to limit plans, newest first.
	List(ctx context.Context, limit int) ([]domain.PayoffPlan, error)
}
