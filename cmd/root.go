// Package cmd implements the tally CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/finance"
	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/store"
)

var (
	flagAPIURL  string
	flagQuiet   bool
	flagVerbose bool
	flagNoCache bool
	flagJSON    bool
)

// Resolved once per invocation by the root pre-run.
var (
	appCfg config.Config
	appLog = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Personal finance in the terminal",
	Long:  "Budgets, transactions, sinking funds, goals, net worth and invoices from your finance API.",

	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runDashboard,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "  Not logged in or session expired. Run `tally login`.")
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides TALLY_API_URL and config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests at debug level")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the local sqlite snapshot")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print raw JSON instead of tables")
}

// setup loads .env, the config file and the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	// A missing .env is normal; variables already in the environment win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appCfg = cfg

	logCfg := logging.DefaultConfig()
	if flagVerbose {
		logCfg.Level = slog.LevelDebug
	}
	appLog = logging.New(logCfg)
	logging.SetDefault(appLog)
	return nil
}

// baseURL resolves the API root: flag, then environment, then config.
func baseURL() string {
	if flagAPIURL != "" {
		return flagAPIURL
	}
	return config.APIURL(appCfg)
}

// newTokenStore loads the saved token. TALLY_TOKEN takes precedence for the
// lifetime of the process without being written to disk.
func newTokenStore() *api.TokenStore {
	tokens := api.NewTokenStore(config.TokenPath())
	if tok := config.EnvToken(); tok != "" {
		tokens.Seed(tok)
	}
	return tokens
}

func newClient() *api.Client {
	return api.New(baseURL(), newTokenStore(),
		api.WithLogger(appLog),
		api.WithTimeout(appCfg.Timeout()),
	)
}

// requireLogin fails fast when no token is available.
func requireLogin(c *api.Client) error {
	if !c.Tokens().LoggedIn() {
		return api.ErrUnauthorized
	}
	return nil
}

// authedClient is newClient plus requireLogin.
func authedClient() (*api.Client, error) {
	c := newClient()
	if err := requireLogin(c); err != nil {
		return nil, err
	}
	return c, nil
}

// openCache opens the local snapshot unless --no-cache. Nil means caching
// is off or unavailable.
func openCache() *store.Cache {
	if flagNoCache {
		return nil
	}
	cache, err := store.Open(config.CachePath())
	if err != nil {
		appLog.Warn("cache unavailable",
			logging.FieldOperation, logging.OpLoad,
			logging.FieldError, err)
		return nil
	}
	return cache
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, s)
	}
	return id, nil
}

func parseIDs(args []string, what string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a, what)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// writeBlob saves a download to out, or to its server-suggested filename.
func writeBlob(b *api.Blob, out string) error {
	if out == "" {
		out = b.Filename
	}
	if out == "-" {
		_, err := os.Stdout.Write(b.Body)
		return err
	}
	if err := os.WriteFile(out, b.Body, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	progress("  Saved %s (%s bytes)\n", out, cli.FormatNumber(int64(len(b.Body))))
	return nil
}

// dollarsFlag parses a dollar amount flag into cents.
func dollarsFlag(name, value string) (int64, error) {
	cents, err := finance.ParseDollars(value)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return cents, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
