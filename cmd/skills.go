package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/api"
	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/output"
)

var skillsCmd = &cobra.Command{
	Use:     "skills",
	Short:   "Skill analysis against a target role",
	GroupID: "career",
}

var skillsGapCmd = &cobra.Command{
	Use:   "gap <target role>",
	Short: "Compare your skills against a target role",
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
		if err := requireFeature(cmd.Context(), a, user, features.ResumeAnalysis); err != nil {
			return err
		}

		role := strings.Join(args, " ")
		resp, err := a.Client.SkillGap(cmd.Context(), api.SkillGapRequest{
			UserID:     user.ID,
			TargetRole: role,
		})
		if err != nil {
			return fmt.Errorf("skill gap: %w", err)
		}

		var md strings.Builder
		fmt.Fprintf(&md, "# Skill gap: %s\n\n", role)
		fmt.Fprintf(&md, "**Match:** %.0f%% · **Readiness:** %s\n\n", resp.MatchPercentage, resp.CareerReadiness)
		if len(resp.MatchedSkills) > 0 {
			md.WriteString("## You already have\n\n")
			for _, s := range resp.MatchedSkills {
				fmt.Fprintf(&md, "- %s\n", s)
			}
			md.WriteString("\n")
		}
		if len(resp.MissingSkills) > 0 {
			md.WriteString("## Missing\n\n")
			for _, s := range resp.MissingSkills {
				fmt.Fprintf(&md, "- %s\n", s)
			}
			md.WriteString("\n")
		}
		if len(resp.TopRecommendations) > 0 {
			md.WriteString("## Recommendations\n\n")
			for i, r := range resp.TopRecommendations {
				fmt.Fprintf(&md, "%d. %s\n", i+1, r)
			}
		}

		rendered, err := output.RenderMarkdown(md.String())
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	skillsCmd.AddCommand(skillsGapCmd)
}
