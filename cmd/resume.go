package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/onboarding"
	"github.com/naviya/naviya/internal/output"
)

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Short:   "Upload and inspect your resume",
	GroupID: "career",
}

var resumeUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a resume for analysis",
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

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open resume: %w", err)
		}
		defer f.Close()

		resp, err := a.Client.UploadResume(cmd.Context(), user.ID, filepath.Base(args[0]), f)
		if err != nil {
			return fmt.Errorf("upload resume: %w", err)
		}

		output.Success("Resume analyzed: %d skills extracted", resp.SkillsCount)

		guide, err := onboarding.Load(a.Store, user.ID)
		if err == nil && guide.Running() {
			if err := guide.CompleteStep(onboarding.StepResume); err == nil {
				output.Subtle("Tour: resume step complete")
			}
		}
		return nil
	},
}

var resumeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the parsed resume data",
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

		data, err := a.Client.ResumeData(cmd.Context(), user.ID)
		if err != nil {
			return fmt.Errorf("fetch resume: %w", err)
		}
		if len(data) == 0 {
			output.Info("No resume on file. Run `naviya resume upload <file>`.")
			return nil
		}
		return output.JSON(data)
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.AddCommand(resumeUploadCmd)
	resumeCmd.AddCommand(resumeShowCmd)
}
