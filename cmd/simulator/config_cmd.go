package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and check simulation settings files",
}

var defaultsOut string

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default settings in NAME : value : type lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = cmd.OutOrStdout()
		if defaultsOut != "" {
			f, err := os.Create(defaultsOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return config.MarshalLines(w, config.DefaultSimulation())
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a settings file against the simulation constraints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateSettingsFile(args[0]); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
		return nil
	},
}

func init() {
	configDefaultsCmd.Flags().StringVarP(&defaultsOut, "out", "o", "", "Write to this file instead of stdout")
	configCmd.AddCommand(configDefaultsCmd)
	configCmd.AddCommand(configValidateCmd)
}

func validateSettingsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	settings, err := config.UnmarshalLines(f, config.DefaultSimulation())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return settings.Validate()
}
