package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/output"
	"github.com/naviya/naviya/internal/session"
)

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Sign in and store the session locally",
	GroupID: "account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var (
			name    string
			email   string
			access  string
			refresh string
		)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name").
					Value(&name),
				huh.NewInput().
					Title("Email").
					Value(&email).
					Validate(func(s string) error {
						if !strings.Contains(s, "@") {
							return fmt.Errorf("enter a valid email")
						}
						return nil
					}),
				huh.NewInput().
					Title("Access token").
					EchoMode(huh.EchoModePassword).
					Value(&access).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("token required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Refresh token (optional)").
					EchoMode(huh.EchoModePassword).
					Value(&refresh),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("login: %w", err)
		}

		email = strings.TrimSpace(email)
		id := session.Identity{
			// Stable id derived from the email so re-login keeps the
			// same local onboarding and theme records.
			ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("naviya:"+strings.ToLower(email))).String(),
			Name:  strings.TrimSpace(name),
			Email: email,
		}
		tok := session.Tokens{
			Access:  strings.TrimSpace(access),
			Refresh: strings.TrimSpace(refresh),
		}
		if err := a.Session.Login(id, tok); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		output.Success("Logged in as %s", id.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Sign out and clear the stored session",
	GroupID: "account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Best-effort server-side logout; the local session is cleared
		// regardless.
		if err := a.Client.Logout(cmd.Context()); err != nil {
			output.Warning("server logout: %v", err)
		}
		if err := a.Session.Logout(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
