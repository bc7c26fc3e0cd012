package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"loan-payoff/domain"
)

const defaultSummaryURL = "https://api.openai.com/v1/chat/completions"

type SummaryConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

// SummaryService writes a short plain-text explanation of a payoff plan.
// With an API key it asks a chat-completions endpoint; otherwise, or when
// that call fails, it falls back to a fixed template.
type SummaryService struct {
	apiKey     string
	apiURL     string
	model      string
	enabled    bool
	httpClient *http.Client
	logger     *log.Logger
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewSummaryService(cfg SummaryConfig, logger *log.Logger) *SummaryService {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultSummaryURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SummaryService{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		enabled:    cfg.APIKey != "",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Summarize never fails; errors from the remote endpoint are logged and the
// template text is returned instead.
func (s *SummaryService) Summarize(ctx context.Context, plan domain.PayoffPlan) string {
	if !s.enabled {
		return fallbackSummary(plan)
	}

	text, err := s.callLLM(ctx, summaryPrompt(plan))
	if err != nil {
		s.logger.Warn("summary request failed, using template", "err", err)
		return fallbackSummary(plan)
	}
	return strings.TrimSpace(text)
}

func summaryPrompt(plan domain.PayoffPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A borrower has %d loans and an extra payment of $%s to apply once per loan over a %d-year term.\n",
		len(plan.Input.Loans), plan.Input.ExtraPayment.StringFixed(2), plan.Input.TermYears)
	for i, l := range plan.Input.Loans {
		fmt.Fprintf(&b, "- Loan %d: balance $%s at %s%% APR, minimum payment $%s\n",
			i+1, l.Balance.StringFixed(2), l.InterestRate.Shift(2).String(), l.MinPayment.StringFixed(2))
	}
	b.WriteString("Simulated strategies:\n")
	for _, r := range plan.Results {
		fmt.Fprintf(&b, "- %s: interest change vs minimum payments $%s, payoff order %s\n",
			r.Strategy, r.Savings.StringFixed(2), formatOrder(r.PayoffOrder))
	}
	fmt.Fprintf(&b, "Recommended: %s. Explain the recommendation in 3 sentences for a non-expert.", plan.Best)
	return b.String()
}

func fallbackSummary(plan domain.PayoffPlan) string {
	if len(plan.Input.Loans) == 0 {
		return "No loans were provided, so there is nothing to pay off."
	}
	best, ok := plan.Result(plan.Best)
	if !ok {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The %s strategy changes total interest by $%s against paying only the minimums (baseline $%s). ",
		best.Strategy, best.Savings.StringFixed(2), best.BaselineInterest.StringFixed(2))
	fmt.Fprintf(&b, "Loans are targeted in the order %s. ", formatOrder(best.PayoffOrder))
	if best.YearsEarlyDefined {
		fmt.Fprintf(&b, "Estimated years early: %.2f. ", best.YearsEarly)
	}
	b.WriteString(strategyTip(best.Strategy))
	return b.String()
}

func strategyTip(strategy domain.Strategy) string {
	switch strategy {
	case domain.Snowball:
		return "Paying the smallest balances first gives quick wins that help keep motivation."
	case domain.Avalanche:
		return "Ordering by interest rate keeps the cheapest debt for last."
	default:
		return "Targeting the loans projected to cost the most interest attacks the largest cost first."
	}
}

func formatOrder(order []domain.PayoffStep) string {
	ids := make([]string, len(order))
	for i, step := range order {
		ids[i] = fmt.Sprintf("%d", step.LoanID)
	}
	return "[" + strings.Join(ids, ", ") + "]"
}

func (s *SummaryService) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a financial counselor. You explain debt repayment plans clearly, accurately and without jargon.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: 300,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no response from summary endpoint")
	}
	return out.Choices[0].Message.Content, nil
}
