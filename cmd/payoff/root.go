package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"loan-payoff/domain"
	"loan-payoff/logging"
	"loan-payoff/repository"
	"loan-payoff/service"
)

type rootOptions struct {
	logLevel string
	logger   *log.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "payoff",
		Short:        "Compare snowball, avalanche and hybrid loan payoff strategies",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(stderr, opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(opts),
		newSampleCmd(opts),
		newGenerateCmd(),
	)
	return root
}

func newPayoffService(logger *log.Logger) *service.PayoffService {
	return service.NewPayoffService(
		repository.NewPlanRepositoryMemory(service.DefaultPlanHistory),
		repository.NewMemoryCache(),
		nil,
		service.NewSummaryService(service.SummaryConfig{}, logger),
		logger,
		service.DefaultOptions(),
	)
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		loansFile string
		extra     float64
		years     int
		strategy  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a loan portfolio read from a JSON file ('-' for stdin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loans, err := readLoans(cmd.InOrStdin(), loansFile)
			if err != nil {
				return err
			}
			plan, err := newPayoffService(root.logger).CalculatePayoffPlan(cmd.Context(), domain.PayoffInput{
				Loans:        loans,
				ExtraPayment: decimal.NewFromFloat(extra),
				TermYears:    years,
				Strategy:     domain.Strategy(strategy),
			})
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	cmd.Flags().StringVarP(&loansFile, "loans", "l", "", "JSON file with an array of {balance, interest_rate, min_payment}")
	cmd.Flags().Float64VarP(&extra, "extra", "e", 0, "extra payment applied to each targeted loan")
	cmd.Flags().IntVarP(&years, "years", "y", service.DefaultTermYears, "term in years")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(domain.Compare), "snowball, avalanche, hybrid or compare")
	cmd.MarkFlagRequired("loans")
	return cmd
}

func newSampleCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Run every strategy on the built-in sample portfolios",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := newPayoffService(root.logger)
			portfolios := []struct {
				name  string
				loans []domain.Loan
			}{
				{"sample", service.SamplePortfolio()},
				{"check", service.CheckPortfolio()},
			}
			for _, p := range portfolios {
				plan, err := svc.CalculatePayoffPlan(cmd.Context(), domain.PayoffInput{
					Loans:        p.loans,
					ExtraPayment: service.SampleExtraPayment(),
					Strategy:     domain.Compare,
				})
				if err != nil {
					return fmt.Errorf("%s portfolio: %w", p.name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "== %s portfolio\n", p.name)
				printPlan(cmd.OutOrStdout(), plan)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random loan portfolio as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("-n must be > 0")
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			loans := service.GenerateTestLoans(rand.New(rand.NewSource(seed)), count)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(loans)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of loans")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (defaults to the current time)")
	return cmd
}

func readLoans(stdin io.Reader, path string) ([]domain.Loan, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var loans []domain.Loan
	if err := json.NewDecoder(r).Decode(&loans); err != nil {
		return nil, fmt.Errorf("decode loans: %w", err)
	}
	return loans, nil
}

func printPlan(w io.Writer, plan domain.PayoffPlan) {
	for _, r := range plan.Results {
		fmt.Fprintf(w, "%-9s savings: $%s  interest: $%s (baseline $%s)\n",
			r.Strategy, r.Savings.StringFixed(2), r.StrategyInterest.StringFixed(2), r.BaselineInterest.StringFixed(2))
		fmt.Fprintf(w, "%-9s order:  ", "")
		for i, step := range r.PayoffOrder {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "(%d, %s)", step.LoanID, step.ExtraPayment.StringFixed(2))
		}
		fmt.Fprintln(w)
		if r.YearsEarlyDefined {
			fmt.Fprintf(w, "%-9s years early: %.2f\n", "", r.YearsEarly)
		} else {
			fmt.Fprintf(w, "%-9s years early: n/a\n", "")
		}
	}
	if len(plan.Results) > 1 {
		fmt.Fprintf(w, "best: %s\n", plan.Best)
	}
	if plan.Summary != "" {
		fmt.Fprintln(w, plan.Summary)
	}
}
