package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/config"
	"github.com/naviya/naviya/internal/output"
)

// validConfigKeys lists the supported config keys for set/get.
var validConfigKeys = []string{
	"api.url",
	"realtime.url",
	"realtime.key",
	"heartbeat.seconds",
	"idle.seconds",
}

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Get and set client configuration",
	GroupID: "system",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show configuration values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(getBaseDir())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		values := map[string]string{
			"api.url":           cfg.APIBaseURL,
			"realtime.url":      cfg.RealtimeURL,
			"realtime.key":      cfg.RealtimeKey,
			"heartbeat.seconds": strconv.Itoa(cfg.HeartbeatSeconds),
			"idle.seconds":      strconv.Itoa(cfg.IdleCutoffSeconds),
		}

		if len(args) == 1 {
			v, ok := values[args[0]]
			if !ok {
				return fmt.Errorf("unknown config key %q", args[0])
			}
			fmt.Println(v)
			return nil
		}

		for _, k := range validConfigKeys {
			fmt.Printf("%-20s %s\n", k, values[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(getBaseDir())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		key, val := args[0], args[1]
		switch key {
		case "api.url":
			cfg.APIBaseURL = val
		case "realtime.url":
			cfg.RealtimeURL = val
		case "realtime.key":
			cfg.RealtimeKey = val
		case "heartbeat.seconds", "idle.seconds":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("%s must be a positive integer", key)
			}
			if key == "heartbeat.seconds" {
				cfg.HeartbeatSeconds = n
			} else {
				cfg.IdleCutoffSeconds = n
			}
		default:
			return fmt.Errorf("unknown config key %q (valid: %v)", key, validConfigKeys)
		}

		if err := config.Save(getBaseDir(), cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		output.Success("%s = %s", key, val)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
