package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/explainer"
	"github.com/naviya/naviya/internal/theme"
	"github.com/naviya/naviya/pkg/tui"
)

var explainCmd = &cobra.Command{
	Use:     "explain <topic>",
	Short:   "Generate and play a narrated explainer deck",
	GroupID: "career",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := requireUser(a); err != nil {
			return err
		}

		topic := strings.Join(args, " ")
		fmt.Println("Generating explainer deck...")
		resp, err := a.Client.GenerateExplainer(cmd.Context(), topic)
		if err != nil {
			return fmt.Errorf("generate explainer: %w", err)
		}

		wpm, _ := cmd.Flags().GetInt("wpm")
		narrator := explainer.NewPacedNarrator()
		if wpm > 0 {
			narrator.WordsPerMinute = wpm
		}

		model, err := tui.NewExplainModel(resp.Slides, narrator, topic, theme.Load(a.Store))
		if err != nil {
			return fmt.Errorf("explainer deck: %w", err)
		}

		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running explainer: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().Int("wpm", 0, "Narration pace in words per minute (default 160)")
}
