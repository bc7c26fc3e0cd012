package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"loan-payoff/domain"
)

// PlanRepositoryMemory keeps the most recent plans in memory. Once capacity
// is reached the oldest plan is evicted.
type PlanRepositoryMemory struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	plans    map[string]domain.PayoffPlan
}

// NewPlanRepositoryMemory creates a new in-memory plan repository.
func NewPlanRepositoryMemory(capacity int) *PlanRepositoryMemory {
	if capacity <= 0 {
		capacity = 1
	}
	return &PlanRepositoryMemory{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		plans:    make(map[string]domain.PayoffPlan),
	}
}

func (r *PlanRepositoryMemory) Save(_ context.Context, plan domain.PayoffPlan) (domain.PayoffPlan, error) {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plans[plan.ID]; !exists {
		if len(r.order) == r.capacity {
			oldest := r.order[0]
			r.order = r.order[1:]
			delete(r.plans, oldest)
		}
		r.order = append(r.order, plan.ID)
	}
	r.plans[plan.ID] = plan
	return plan, nil
}

func (r *PlanRepositoryMemory) Get(_ context.Context, id string) (domain.PayoffPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[id]
	if !ok {
		return domain.PayoffPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return plan, nil
}

func (r *PlanRepositoryMemory) List(_ context.Context, limit int) ([]domain.PayoffPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}
	out := make([]domain.PayoffPlan, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.plans[r.order[i]])
	}
	return out, nil
}

var _ PlanRepository = (*PlanRepositoryMemory)(nil)
