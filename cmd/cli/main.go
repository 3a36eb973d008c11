package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/budgetledger/internal/adapter/http/dto"
	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/infrastructure/auth"
	"github.com/iho/budgetledger/internal/infrastructure/config"
	"github.com/iho/budgetledger/internal/infrastructure/postgres"
)

// Swapped in tests.
var (
	runMigrationsUp   = postgres.RunMigrations
	runMigrationsDown = postgres.RunMigrationsDown
	loadConfig        = func() (*config.Config, error) { return config.Load() }
)

type apiOptions struct {
	baseURL string
	timeout time.Duration
	userID  string
	token   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &apiOptions{}

	rootCmd := &cobra.Command{
		Use:           "budgetledger-cli",
		Short:         "BudgetLedger CLI tool",
		Long:          `A command line interface for operating a BudgetLedger deployment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the BudgetLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.userID, "user", "", "User id sent as X-User-ID")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token; takes precedence over --user")

	rootCmd.AddCommand(migrateCmd(), tokenCmd(), reconcileCmd(opts), summaryCmd(opts))

	return rootCmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runMigrationsUp(cfg.DatabaseURL, cfg.MigrationsPath, cliLogger(cmd))
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, steps, cliLogger(cmd))
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				secret = cfg.JWTSecret
				if !cmd.Flags().Changed("ttl") && cfg.JWTExpiration > 0 {
					ttl = cfg.JWTExpiration
				}
			}
			if secret == "" {
				return errors.New("no signing secret: set JWT_SECRET or pass --secret")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{ID: userID, Email: email})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id to embed in the token")
	cmd.Flags().StringVar(&email, "email", "", "Optional email claim")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func reconcileCmd(opts *apiOptions) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare recorded balances with the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if accountID != "" {
				var result dto.ReconciliationResultResponse
				if err := getJSON(cmd.Context(), opts, "/api/v1/reconciliation", url.Values{"account_id": {accountID}}, &result); err != nil {
					return err
				}
				printResult(out, &result)
				if !result.IsReconciled {
					return fmt.Errorf("account %s is out of balance by %s", result.AccountID, result.Difference)
				}
				return nil
			}

			var report dto.ReconciliationReportResponse
			if err := getJSON(cmd.Context(), opts, "/api/v1/reconciliation", nil, &report); err != nil {
				return err
			}

			fmt.Fprintf(out, "Accounts checked: %d\nReconciled:       %d\n", report.TotalAccounts, report.ReconciledAccounts)
			for _, d := range report.Discrepancies {
				printResult(out, d)
			}
			if len(report.Discrepancies) > 0 {
				return fmt.Errorf("%d account(s) out of balance", len(report.Discrepancies))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Check a single account")
	return cmd
}

func summaryCmd(opts *apiOptions) *cobra.Command {
	var from, to, accountID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for key, value := range map[string]string{"from": from, "to": to, "account_id": accountID} {
				if value != "" {
					query.Set(key, value)
				}
			}

			var summary dto.SummaryResponse
			if err := getJSON(cmd.Context(), opts, "/api/v1/transactions/summary", query, &summary); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, summary)
			}

			fmt.Fprintf(out, "Income:       %s\n", summary.TotalIncome.StringFixed(2))
			fmt.Fprintf(out, "Expenses:     %s\n", summary.TotalExpenses.StringFixed(2))
			fmt.Fprintf(out, "Net:          %s\n", summary.Net.StringFixed(2))
			fmt.Fprintf(out, "Transactions: %d\n", summary.TransactionCount)
			for _, c := range summary.ByCategory {
				fmt.Fprintf(out, "  %-28s %12s (%d)\n", truncate(c.CategoryID, 28), c.Total.StringFixed(2), c.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&accountID, "account", "", "Restrict to one account")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	return cmd
}

func getJSON(ctx context.Context, opts *apiOptions, path string, query url.Values, into any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	target := strings.TrimRight(opts.baseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	switch {
	case opts.token != "":
		req.Header.Set("Authorization", "Bearer "+opts.token)
	case opts.userID != "":
		req.Header.Set("X-User-ID", opts.userID)
	default:
		return errors.New("either --token or --user is required")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printResult(out io.Writer, r *dto.ReconciliationResultResponse) {
	status := "OK"
	if !r.IsReconciled {
		status = "MISMATCH"
	}
	fmt.Fprintf(out, "%-8s %s recorded=%s ledger=%s diff=%s\n",
		status, r.AccountID, r.RecordedBalance, r.CalculatedBalance, r.Difference)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).With().Timestamp().Logger()
}
