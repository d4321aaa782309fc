package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/logging"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

// loginValues is bound to the login form fields.
type loginValues struct {
	email    string
	password string
}

type loginDoneMsg struct {
	err error
}

func newLoginForm(baseURL, errText string, vals *loginValues) *huh.Form {
	desc := "Signing in to " + baseURL
	if errText != "" {
		desc += "\n" + errText
	}
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(field + " is required")
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to tally").
				Description(desc),
			huh.NewInput().
				Title("Email").
				Value(&vals.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&vals.password).
				Validate(required("password")),
		),
	).WithShowHelp(true)
}

func loginCmd(b Backend, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return loginDoneMsg{err: b.Login(ctx, strings.TrimSpace(email), password)}
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.loggingIn = true
		return a, tea.Batch(a.spinner.Tick, loginCmd(a.backend, a.setupVals.email, a.setupVals.password))
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

// handleLogin either starts the load or rebuilds the form with the error.
func (a App) handleLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	a.loggingIn = false
	if msg.err != nil {
		a.log.Warn("login failed", logging.FieldError, msg.err)
		text := "Login failed: " + msg.err.Error()
		if errors.Is(msg.err, api.ErrUnauthorized) {
			text = "Incorrect email or password"
		}
		return a.requireLogin(text)
	}

	a.log.Info("logged in", logging.FieldOperation, logging.OpLogin)
	a.needLogin = false
	a.setupForm = nil
	a.setupVals = nil
	a.loginErr = ""
	a.errMsg = ""
	if a.loaded {
		a.refreshing = true
		return a, refreshDataCmd(a.backend, a.cache, a.cfg.General.ReportMonths)
	}
	a.progress, a.progressMax = 0, 0
	return a, loadDataCmd(a.backend, a.cache, a.cfg.General.ReportMonths, a.loadSub)
}

// requireLogin shows the login form with a message. The stored token is
// dropped so the next start does not reuse it.
func (a App) requireLogin(text string) (tea.Model, tea.Cmd) {
	if err := a.backend.Tokens().Clear(); err != nil {
		a.log.Warn("clearing token", logging.FieldError, err)
	}
	a.needLogin = true
	a.loginErr = text
	a.refreshing = false
	email := ""
	if a.setupVals != nil {
		email = a.setupVals.email
	}
	a.setupVals = &loginValues{email: email}
	a.setupForm = newLoginForm(a.backend.BaseURL(), text, a.setupVals)
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(min(a.width, 72)).WithHeight(a.height)
	}
	return a, a.setupForm.Init()
}

func (a App) viewLogin() string {
	t := theme.Active
	body := a.setupForm.View()
	if a.loggingIn {
		style := lipgloss.NewStyle().Foreground(t.TextMuted)
		body = a.spinner.View() + style.Render(" Signing in...")
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Width(min(a.width-4, 72)).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}
