package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", baseURL())
	if baseURL() != cfg.API.BaseURL {
		fmt.Printf("              (config has %s)\n", cfg.API.BaseURL)
	}
	fmt.Printf("    Timeout:  %s\n", cfg.Timeout())
	tok := newTokenStore().Get()
	switch {
	case tok == "":
		fmt.Println("    Token:    not logged in")
	case config.EnvToken() != "":
		fmt.Printf("    Token:    %s (from TALLY_TOKEN)\n", maskToken(tok))
	default:
		fmt.Printf("    Token:    %s\n", maskToken(tok))
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultBudgetID > 0 {
		fmt.Printf("    Default budget: %d\n", cfg.General.DefaultBudgetID)
	} else {
		fmt.Println("    Default budget: newest")
	}
	fmt.Printf("    Report months:  %d\n", cfg.General.ReportMonths)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %s)\n", cfg.TUI.AutoRefresh, cfg.RefreshInterval())
	fmt.Println()

	fmt.Println("  [Categories]")
	fmt.Printf("    Sort:  %s", cfg.Categories.SortBy)
	if cfg.Categories.SortDesc {
		fmt.Print(" (descending)")
	}
	fmt.Println()
	fmt.Printf("    Group: %s\n", cfg.Categories.GroupBy)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Listen:   %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.PollInterval())
	if cfg.Daemon.AMQPURL != "" {
		fmt.Printf("    AMQP:     %s -> %s\n", maskURL(cfg.Daemon.AMQPURL), cfg.Daemon.AMQPExchange)
	} else {
		fmt.Println("    AMQP:     off")
	}
	fmt.Printf("    Cache:    %s\n", config.CachePath())
	fmt.Println()

	fmt.Println("  Run `tally setup` to reconfigure.")
	return nil
}
