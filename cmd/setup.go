package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func validURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http(s) URL")
	}
	return nil
}

func positiveInt(what string, lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("%s must be between %d and %d", what, lo, hi)
		}
		return nil
	}
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	apiURL := cfg.API.BaseURL
	themeName := cfg.Appearance.Theme
	months := strconv.Itoa(cfg.General.ReportMonths)
	refresh := strconv.Itoa(cfg.TUI.RefreshIntervalSec)
	autoRefresh := cfg.TUI.AutoRefresh

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to tally").
				Description("Settings are saved to "+config.Path()),
			huh.NewInput().
				Title("API base URL").
				Value(&apiURL).
				Validate(validURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
			huh.NewInput().
				Title("Months covered by reports").
				Value(&months).
				Validate(positiveInt("months", 1, 12)),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Auto-refresh the dashboard?").
				Value(&autoRefresh),
			huh.NewInput().
				Title("Refresh interval (seconds)").
				Value(&refresh).
				Validate(positiveInt("interval", 5, 3600)),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	cfg.Appearance.Theme = themeName
	cfg.General.ReportMonths, _ = strconv.Atoi(strings.TrimSpace(months))
	cfg.TUI.RefreshIntervalSec, _ = strconv.Atoi(strings.TrimSpace(refresh))
	cfg.TUI.AutoRefresh = autoRefresh

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	appCfg = cfg

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	if !newTokenStore().LoggedIn() {
		fmt.Println("  Run `tally login` to connect your account.")
	}
	fmt.Println("  Run `tally setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskToken(tok string) string {
	if len(tok) > 16 {
		return tok[:8] + "..." + tok[len(tok)-4:]
	}
	if len(tok) > 4 {
		return tok[:4] + "..."
	}
	return "****"
}

// maskURL hides the password of a broker URL.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid URL)"
	}
	return u.Redacted()
}
