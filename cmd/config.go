package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the fully resolved configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML",
	Long: "Print the configuration a run would use after layering the built-in defaults, " +
		"--preset, --config and any explicitly set flags. The output is a valid --config file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// presetsCmd lists the presets in the defaults file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the presets available in the defaults file",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDefaults(defaultsFilePath)
		if err != nil {
			return err
		}
		for _, name := range presetNames(d) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(presetsCmd)
}
