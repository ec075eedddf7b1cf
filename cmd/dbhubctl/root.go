package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/dbhub/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:          "dbhubctl",
	Short:        "Run and administer the dbhub server",
	Long:         `Run and administer the dbhub multi-tenant database and app server.`,
	SilenceUsage: true,
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
