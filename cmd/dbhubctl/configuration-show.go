package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbhub/pkg/config"
)

var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print each setting with the source it came from",
	Long: `Print each setting with the source it came from: default, the YAML
file at $DBHUB_CONFIG_PATH/dbhub.yml (/etc/dbhub by default), or the
environment. The token secret is masked.

What is printed is read now and may differ from what a running server
loaded at startup.

Example:
  dbhubctl configuration show
  dbhubctl configuration show -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return showConfiguration(cmd.OutOrStdout(), cfg, output)
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format: text or json")
}

func showConfiguration(w io.Writer, cfg *config.Config, output string) error {
	var rendered string
	switch output {
	case "text":
		rendered = cfg.FormatText()
	case "json":
		js, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		rendered = js + "\n"
	default:
		return fmt.Errorf("output must be text or json, got %q", output)
	}
	_, err := io.WriteString(w, rendered)
	return err
}
