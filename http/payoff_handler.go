package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"loan-payoff/domain"
	"loan-payoff/service"
)

const (
	defaultListLimit = 20
	// maxBodyBytes caps a payoff request; the loan limit is far below it.
	maxBodyBytes = 1 << 20
)

// PayoffCalculator is the part of service.PayoffService the handler uses.
type PayoffCalculator interface {
	CalculatePayoffPlan(ctx context.Context, input domain.PayoffInput) (domain.PayoffPlan, error)
	GetPlan(ctx context.Context, id string) (domain.PayoffPlan, error)
	ListPlans(ctx context.Context, limit int) ([]domain.PayoffPlan, error)
}

type PayoffHandler struct {
	service PayoffCalculator
	logger  *log.Logger
}

func NewPayoffHandler(service PayoffCalculator, logger *log.Logger) *PayoffHandler {
	return &PayoffHandler{service: service, logger: logger}
}

type payoffRequest struct {
	Loans        []domain.Loan   `json:"loans"`
	ExtraPayment decimal.Decimal `json:"extra_payment"`
	TermYears    int             `json:"term_years"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter wires the payoff routes. limiter may be nil.
func NewRouter(h *PayoffHandler, limiter *RateLimiter, logger *log.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(logger))
	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	payoff := r.PathPrefix("/payoff").Subrouter()
	if limiter != nil {
		payoff.Use(limiter.Middleware)
	}
	payoff.HandleFunc("/plans", h.ListPlans).Methods(http.MethodGet)
	payoff.HandleFunc("/plans/{id}", h.GetPlan).Methods(http.MethodGet)
	payoff.HandleFunc("/{strategy:snowball|avalanche|hybrid|compare}", h.CalculatePlan).Methods(http.MethodPost)
	return r
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PayoffHandler) CalculatePlan(w http.ResponseWriter, r *http.Request) {
	// Content-Type check
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req payoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.logger.Debug("invalid request body", "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := domain.PayoffInput{
		Loans:        req.Loans,
		ExtraPayment: req.ExtraPayment,
		TermYears:    req.TermYears,
		Strategy:     domain.Strategy(mux.Vars(r)["strategy"]),
	}

	plan, err := h.service.CalculatePayoffPlan(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PayoffHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PayoffHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	plans, err := h.service.ListPlans(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *PayoffHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("payoff request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes into a buffer first so a failed encode does not leave a
// half-written 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
