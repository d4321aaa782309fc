package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagEmail    string
	flagPassword string
	flagFullName string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&flagEmail, "email", "", "Account email")
		c.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted when empty)")
	}
	registerCmd.Flags().StringVar(&flagFullName, "name", "", "Full name")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd)
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(what + " is required")
		}
		return nil
	}
}

// promptCredentials fills in whatever --email/--password left empty.
func promptCredentials(title string) (string, string, error) {
	email, password := flagEmail, flagPassword
	if email != "" && password != "" {
		return email, password, nil
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewNote().Title(title).Description(baseURL()),
		huh.NewInput().Title("Email").Value(&email).Validate(required("email")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
			Value(&password).Validate(required("password")),
	))
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(email), password, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	email, password, err := promptCredentials("Log in to tally")
	if err != nil {
		return err
	}

	client := newClient()
	if err := client.Login(cmdContext(cmd), email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("  Logged in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	client := newClient()
	if !client.Tokens().LoggedIn() {
		fmt.Println("  Not logged in.")
		return nil
	}
	if err := client.Logout(cmdContext(cmd)); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	fmt.Println("  Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	email, password, err := promptCredentials("Create a tally account")
	if err != nil {
		return err
	}

	client := newClient()
	user, err := client.Register(cmdContext(cmd), model.RegisterInput{
		Email:    email,
		Password: password,
		FullName: flagFullName,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if flagJSON {
		return printJSON(user)
	}
	fmt.Printf("  Registered %s (user %d). Run `tally login` next.\n", user.Email, user.ID)
	return nil
}
