package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
)

var (
	rootCmd   *cobra.Command
	setupOnce sync.Once
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "board",
		Short: "Shared task board in the terminal",
		Long: `board manages a shared task board: columns, sub-tasks, assignees and due dates.

Tasks live in the configured backend (the REST API, Redis, SQLite or Postgres).
The admin gate and your preferences are kept in a local bbolt file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("backend", "", "Task backend: http, redis, sqlite or postgres (default $BOARD_BACKEND)")
	rootCmd.PersistentFlags().String("api-url", "", "REST API base URL for the http backend (default $BOARD_API_URL)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
}

func setup() {
	setupOnce.Do(func() {
		rootCmd.AddCommand(tasksCmd)
		rootCmd.AddCommand(subtaskCmd)
		rootCmd.AddCommand(dashboardCmd)
		rootCmd.AddCommand(calendarCmd)
		rootCmd.AddCommand(loginCmd)
		rootCmd.AddCommand(logoutCmd)
		rootCmd.AddCommand(passwdCmd)
		rootCmd.AddCommand(whoamiCmd)
		rootCmd.AddCommand(settingsCmd)
		rootCmd.AddCommand(watchCmd)
	})
}

// Execute runs the root command
func Execute(version string) error {
	setup()

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
