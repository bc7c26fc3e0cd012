package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"loan-payoff/domain"
	"loan-payoff/events"
	"loan-payoff/repository"
)

type Options struct {
	Limits           Limits
	DefaultTermYears int
	CacheTTL         time.Duration
}

func DefaultOptions() Options {
	return Options{
		Limits:           DefaultLimits(),
		DefaultTermYears: DefaultTermYears,
		CacheTTL:         time.Hour,
	}
}

// PayoffService validates payoff requests, runs the strategies and records
// the resulting plans.
type PayoffService struct {
	plans     repository.PlanRepository
	cache     repository.CacheRepository
	publisher events.Publisher
	summary   *SummaryService
	logger    *log.Logger
	opts      Options
	now       func() time.Time
}

// NewPayoffService creates a PayoffService. publisher and summary may be nil.
func NewPayoffService(
	plans repository.PlanRepository,
	cache repository.CacheRepository,
	publisher events.Publisher,
	summary *SummaryService,
	logger *log.Logger,
	opts Options,
) *PayoffService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.DefaultTermYears <= 0 {
		opts.DefaultTermYears = DefaultTermYears
	}
	return &PayoffService{
		plans:     plans,
		cache:     cache,
		publisher: publisher,
		summary:   summary,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// CalculatePayoffPlan runs the requested strategy, or all of them for
// "compare" (the default), and stores the plan.
func (s *PayoffService) CalculatePayoffPlan(ctx context.Context, input domain.PayoffInput) (domain.PayoffPlan, error) {
	if input.Strategy == "" {
		input.Strategy = domain.Compare
	}
	if input.TermYears == 0 {
		input.TermYears = s.opts.DefaultTermYears
	}
	if err := validateInput(input, s.opts.Limits); err != nil {
		return domain.PayoffPlan{}, err
	}

	key := cacheKey(input)
	if plan, ok := s.cached(ctx, key); ok {
		s.logger.Debug("payoff plan served from cache", "plan", plan.ID, "key", key)
		return plan, nil
	}

	start := s.now()
	strategies := []domain.Strategy{input.Strategy}
	if input.Strategy == domain.Compare {
		strategies = domain.Strategies
	}

	results := make([]domain.StrategyResult, 0, len(strategies))
	for _, strategy := range strategies {
		began := time.Now()
		result, err := RunStrategy(strategy, input.Loans, input.ExtraPayment, input.TermYears)
		if err != nil {
			return domain.PayoffPlan{}, fmt.Errorf("run %s: %w", strategy, err)
		}
		s.logger.Debug("strategy simulated", "strategy", strategy, "savings", result.Savings.StringFixed(2), "took", time.Since(began))
		results = append(results, result)
	}

	plan := domain.PayoffPlan{
		Input:     input,
		Results:   results,
		Best:      bestStrategy(results),
		CreatedAt: start.UTC(),
	}
	if s.summary != nil {
		plan.Summary = s.summary.Summarize(ctx, plan)
	}

	// Saving is not critical; the plan is still returned.
	if stored, err := s.plans.Save(ctx, plan); err != nil {
		s.logger.Warn("failed to save payoff plan", "err", err)
	} else {
		plan = stored
	}

	s.store(ctx, key, plan)

	if err := s.publisher.Publish(ctx, events.TopicPlanComputed, events.NewPlanComputed(plan)); err != nil {
		s.logger.Warn("failed to publish plan event", "plan", plan.ID, "err", err)
	}

	s.logger.Info("payoff plan computed",
		"plan", plan.ID,
		"strategy", input.Strategy,
		"loans", len(input.Loans),
		"best", plan.Best,
		"took", time.Since(start),
	)
	return plan, nil
}

func (s *PayoffService) GetPlan(ctx context.Context, id string) (domain.PayoffPlan, error) {
	return s.plans.Get(ctx, id)
}

func (s *PayoffService) ListPlans(ctx context.Context, limit int) ([]domain.PayoffPlan, error) {
	return s.plans.List(ctx, limit)
}

func (s *PayoffService) cached(ctx context.Context, key string) (domain.PayoffPlan, bool) {
	if s.cache == nil {
		return domain.PayoffPlan{}, false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.PayoffPlan{}, false
	}
	var plan domain.PayoffPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		s.logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		return domain.PayoffPlan{}, false
	}
	return plan, true
}

func (s *PayoffService) store(ctx context.Context, key string, plan domain.PayoffPlan) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		s.logger.Warn("failed to encode plan for cache", "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.opts.CacheTTL); err != nil {
		s.logger.Warn("failed to cache payoff plan", "key", key, "err", err)
	}
}

// bestStrategy picks the highest savings; on ties the earlier strategy wins.
func bestStrategy(results []domain.StrategyResult) domain.Strategy {
	if len(results) == 0 {
		return ""
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Savings.GreaterThan(best.Savings) {
			best = r
		}
	}
	return best.Strategy
}
