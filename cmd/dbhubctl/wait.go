package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the server reports healthy",
	Long: `Poll /health once per second until the server answers 200, which
requires a reachable and migrated database.

Example:
  dbhubctl wait
  dbhubctl wait --port 3000 --retries 60`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			port = cfg.Port
		}
		retries, _ := cmd.Flags().GetInt("retries")

		url := fmt.Sprintf("http://localhost:%d/health", port)
		return pollHealth(cmd.Context(), cmd.ErrOrStderr(), url, retries, time.Second)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", 8000, "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of attempts before giving up")
}

// pollHealth makes up to retries attempts, writing a dot to progress after each miss
func pollHealth(ctx context.Context, progress io.Writer, url string, retries int, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := &http.Client{Timeout: 2 * time.Second}

	for attempt := 1; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Fprintln(progress, "dbhub is ready")
				return nil
			}
		}
		fmt.Fprint(progress, ".")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("%s not healthy after %d attempts", url, retries)
}
