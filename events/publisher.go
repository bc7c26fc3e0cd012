package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"loan-payoff/domain"
)

const TopicPlanComputed = "payoff.plan_computed"

type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// PlanComputed is emitted once a payoff plan has been calculated and stored.
type PlanComputed struct {
	PlanID       string          `json:"plan_id"`
	Strategy     domain.Strategy `json:"strategy"`
	Best         domain.Strategy `json:"best"`
	LoanCount    int             `json:"loan_count"`
	ExtraPayment decimal.Decimal `json:"extra_payment"`
	Savings      decimal.Decimal `json:"savings"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewPlanComputed builds the event for plan, taking savings from the best
// strategy.
func NewPlanComputed(plan domain.PayoffPlan) PlanComputed {
	savings := decimal.Zero
	if best, ok := plan.Result(plan.Best); ok {
		savings = best.Savings
	}
	return PlanComputed{
		PlanID:       plan.ID,
		Strategy:     plan.Input.Strategy,
		Best:         plan.Best,
		LoanCount:    len(plan.Input.Loans),
		ExtraPayment: plan.Input.ExtraPayment,
		Savings:      savings,
		OccurredAt:   plan.CreatedAt,
	}
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
