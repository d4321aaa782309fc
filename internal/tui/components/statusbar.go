package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/tui/theme"
)

// Status is what the bottom bar reports about the data on screen.
type Status struct {
	Message     string // transient feedback, e.g. "Saved"
	Err         string // last error, shown instead of Message
	LastRefresh time.Time
	Refreshing  bool
	AutoRefresh bool
	Stale       bool // data came from the offline cache
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" ") + keyStyle.Render("[?]") + base.Render("help  ") +
		keyStyle.Render("[q]") + base.Render("uit")
	switch {
	case st.Err != "":
		left += base.Render("  ") + errStyle.Render(st.Err)
	case st.Message != "":
		left += base.Render("  ") + okStyle.Render(st.Message)
	}

	var right []string
	if st.Stale {
		right = append(right, warnStyle.Render("offline"))
	}
	switch {
	case st.Refreshing:
		right = append(right, keyStyle.Render("refreshing"))
	case !st.LastRefresh.IsZero():
		right = append(right, base.Render("updated "+ago(time.Since(st.LastRefresh))))
	}
	if st.AutoRefresh {
		right = append(right, base.Render("auto"))
	}
	rightStr := strings.Join(right, base.Render(" · ")) + base.Render(" ")

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(rightStr))
	return left + base.Render(strings.Repeat(" ", gap)) + rightStr
}

func ago(d time.Duration) string {
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
