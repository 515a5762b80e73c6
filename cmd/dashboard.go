package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/dashboard"
	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/heartbeat"
	"github.com/naviya/naviya/internal/onboarding"
	"github.com/naviya/naviya/internal/realtime"
	"github.com/naviya/naviya/internal/telemetry"
	"github.com/naviya/naviya/internal/theme"
	"github.com/naviya/naviya/pkg/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Live dashboard with feature unlocks and agent activity",
	Long: `Launch the live dashboard TUI.

Key bindings:
  r              Refresh snapshot
  t              Toggle dark/light theme
  o              Reopen the welcome tour
  x              Dismiss oldest agent toast
  ?              Toggle help
  q              Quit`,
	GroupID: "career",
	RunE: func(cmd *cobra.Command, args []string) error {
		toasts := telemetry.NewBus()
		a, err := openAppWith(func(t telemetry.Trace) {
			toasts.Emit(t)
		})
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

		var engine *dashboard.Engine
		if ch := realtime.New(a.Config.Realtime()); ch != nil {
			engine = dashboard.NewEngine(a.Client, ch, events.Default())
		} else {
			engine = dashboard.NewEngine(a.Client, nil, events.Default())
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		engine.SetUser(ctx, user.ID)
		defer engine.Close()

		hb := heartbeat.New(a.Client, user.ID, "dashboard",
			a.Config.HeartbeatPeriod(), a.Config.IdleCutoff())
		go hb.Run(ctx)

		model := tui.NewModel(engine, a.Client, toasts, guide, hb, user, theme.Load(a.Store))
		defer model.Close()

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running dashboard: %w", err)
		}

		// Persist the theme if it was toggled inside the TUI.
		if model.Mode != theme.Load(a.Store) {
			if err := theme.Save(a.Store, model.Mode); err != nil {
				return fmt.Errorf("save theme: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
