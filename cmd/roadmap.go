package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/api"
	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/onboarding"
	"github.com/naviya/naviya/internal/output"
	"github.com/naviya/naviya/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:     "roadmap",
	Short:   "Generate and browse skill roadmaps",
	GroupID: "career",
}

var roadmapGenerateCmd = &cobra.Command{
	Use:   "generate <career goal>",
	Short: "Generate a skill roadmap for a career goal",
	Args:  cobra.MinimumNArgs(1),
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

		if err := requireFeature(cmd.Context(), a, user, features.Roadmap); err != nil {
			return err
		}

		lang, _ := cmd.Flags().GetString("language")
		goal := strings.Join(args, " ")

		resp, err := a.Client.GenerateRoadmap(cmd.Context(), api.RoadmapGenerateRequest{
			UserID:            user.ID,
			CareerGoal:        goal,
			PreferredLanguage: lang,
		})
		if err != nil {
			return fmt.Errorf("generate roadmap: %w", err)
		}
		if resp.Roadmap == nil {
			return fmt.Errorf("backend returned no roadmap")
		}

		output.Success("Roadmap %s generated for %q", resp.RoadmapID, goal)
		if err := printRoadmap(resp.Roadmap); err != nil {
			return err
		}

		guide, err := onboarding.Load(a.Store, user.ID)
		if err == nil && guide.Running() {
			if err := guide.CompleteStep(onboarding.StepRoadmap); err == nil {
				output.Subtle("Tour: roadmap step complete")
			}
		}
		return nil
	},
}

var roadmapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List previously generated roadmaps",
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

		history, err := a.Client.RoadmapHistory(cmd.Context(), user.ID)
		if err != nil {
			return fmt.Errorf("roadmap history: %w", err)
		}
		if len(history) == 0 {
			output.Info("No roadmaps yet. Run `naviya roadmap generate <goal>`.")
			return nil
		}
		for _, r := range history {
			fmt.Printf("%-38s %-32s %s\n", r.RoadmapID, r.CareerGoal, r.CreatedAt)
		}
		return nil
	},
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show <roadmap-id>",
	Short: "Show a roadmap with per-node video progress",
	Args:  cobra.ExactArgs(1),
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

		if err := requireFeature(cmd.Context(), a, user, features.Roadmap); err != nil {
			return err
		}

		graph, err := a.Client.LoadRoadmap(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}

		lang, _ := cmd.Flags().GetString("language")
		vm, err := roadmap.NewViewModel(graph, args[0], lang, a.Client)
		if err != nil {
			return fmt.Errorf("roadmap %s: %w", args[0], err)
		}

		if progress, err := a.Client.VideoProgressMap(cmd.Context(), user.ID, args[0]); err == nil {
			vm.SetProgress(progress)
		}

		if node, _ := cmd.Flags().GetString("node"); node != "" {
			video, err := vm.Select(cmd.Context(), node)
			if err != nil {
				return fmt.Errorf("node %s: %w", node, err)
			}
			if video == nil {
				output.Info("No tutorial video found for node %s.", node)
			} else {
				fmt.Printf("%s\n  %s · %s · %d views\n  https://youtu.be/%s\n",
					video.Title, video.ChannelTitle, video.DurationFormatted, video.ViewCount, video.VideoID)
			}
			return nil
		}

		if err := printRoadmap(graph); err != nil {
			return err
		}
		for _, n := range graph.Nodes {
			if p, ok := vm.Progress(n.ID); ok {
				marker := fmt.Sprintf("%.0f%%", p.ProgressPercent)
				if p.Completed {
					marker = "done"
				}
				fmt.Printf("  %-24s %s\n", n.Label, marker)
			}
		}
		return nil
	},
}

var (
	nodeHasStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	nodeMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	nodeGoalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// printRoadmap renders the serpentine layout row by row, then the
// summary as markdown.
func printRoadmap(g *api.RoadmapGraph) error {
	if err := roadmap.Validate(g); err != nil {
		return fmt.Errorf("invalid roadmap: %w", err)
	}

	layout := roadmap.ComputeLayout(g)
	rows := map[int][]roadmap.Placed{}
	var ys []int
	for _, n := range layout.Nodes {
		if _, seen := rows[n.Y]; !seen {
			ys = append(ys, n.Y)
		}
		rows[n.Y] = append(rows[n.Y], n)
	}

	fmt.Println()
	for _, y := range ys {
		var cells []string
		for _, n := range rows[y] {
			label := fmt.Sprintf("[%d] %s", n.Step, n.Label)
			switch n.Status {
			case roadmap.StatusHas:
				label = nodeHasStyle.Render(label + " ✓")
			case roadmap.StatusGoal:
				label = nodeGoalStyle.Render("★ " + n.Label)
			default:
				label = nodeMissingStyle.Render(label)
			}
			cells = append(cells, label)
		}
		fmt.Println("  " + strings.Join(cells, "   →   "))
	}
	fmt.Println()

	if g.Summary != "" {
		rendered, err := output.RenderMarkdown(g.Summary)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(roadmapCmd)
	roadmapCmd.AddCommand(roadmapGenerateCmd)
	roadmapCmd.AddCommand(roadmapListCmd)
	roadmapCmd.AddCommand(roadmapShowCmd)

	roadmapGenerateCmd.Flags().String("language", "en", "Preferred tutorial language")
	roadmapShowCmd.Flags().String("language", "en", "Preferred tutorial language")
	roadmapShowCmd.Flags().String("node", "", "Fetch the tutorial video for one node")
}
