package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/output"
	"github.com/naviya/naviya/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the color theme",
	GroupID:   "system",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dark", "light", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			fmt.Println(theme.Load(a.Store))
			return nil
		}

		var mode theme.Mode
		switch args[0] {
		case "toggle":
			mode, err = theme.Toggle(a.Store)
			if err != nil {
				return fmt.Errorf("toggle theme: %w", err)
			}
		case string(theme.Dark), string(theme.Light):
			mode = theme.Mode(args[0])
			if err := theme.Save(a.Store, mode); err != nil {
				return fmt.Errorf("save theme: %w", err)
			}
		default:
			return fmt.Errorf("unknown theme %q (use dark, light or toggle)", args[0])
		}

		output.Success("Theme set to %s", mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
