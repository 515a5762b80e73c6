package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/onboarding"
	"github.com/naviya/naviya/internal/output"
)

var onboardingCmd = &cobra.Command{
	Use:     "onboarding",
	Short:   "Inspect or reset the welcome tour",
	GroupID: "system",
}

var onboardingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tour progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := requireUser(a)
		if err != nil {
			return err
		}

		guide, err := onboarding.Load(a.Store, user.ID)
		if err != nil {
			return fmt.Errorf("load onboarding: %w", err)
		}

		rec := guide.Record()
		done := map[onboarding.Step]bool{}
		for _, s := range rec.CompletedSteps {
			done[s] = true
		}
		skipped := map[onboarding.Step]bool{}
		for _, s := range rec.SkippedSteps {
			skipped[s] = true
		}

		for _, s := range onboarding.Steps() {
			switch {
			case skipped[s]:
				fmt.Printf("  [-] %s (skipped)\n", s)
			case done[s]:
				fmt.Printf("  [x] %s\n", s)
			case s == rec.CurrentStep:
				fmt.Printf("  [>] %s\n", s)
			default:
				fmt.Printf("  [ ] %s\n", s)
			}
		}
		if rec.Completed {
			output.Success("Tour complete.")
		}
		return nil
	},
}

var onboardingResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the tour from the first step",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := requireUser(a)
		if err != nil {
			return err
		}

		guide, err := onboarding.Load(a.Store, user.ID)
		if err != nil {
			return fmt.Errorf("load onboarding: %w", err)
		}
		if err := guide.Reset(); err != nil {
			return fmt.Errorf("reset onboarding: %w", err)
		}
		output.Success("Tour reset. It will reopen on the next dashboard launch.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onboardingCmd)
	onboardingCmd.AddCommand(onboardingStatusCmd)
	onboardingCmd.AddCommand(onboardingResetCmd)
}
