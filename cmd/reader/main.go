// ABOUTME: Main entry point for the reader command line and terminal UI
// ABOUTME: Defines the root command, which opens the post search screen

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// featureEnvPrefix prefixes the environment variables that toggle feature flags
const featureEnvPrefix = "READER_FEATURE_"

// rootCmd opens the search screen when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "reader",
	Short: "Terminal RSS reader",
	Long: `reader keeps your feeds in a local SQLite database and searches their posts.

Run without arguments to open the search screen. Type to search post titles and
descriptions, press enter to open a post in the browser and esc to leave.

Configuration comes from the environment (READER_DB_PATH, CACHE_TYPE,
HTTP_TIMEOUT, READER_LOG_FILE, SEARCH_DEBOUNCE_MS, ...). Feature flags are
toggled with READER_FEATURE_<FLAG>=true|false.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd, addCmd, refreshCmd, feedsCmd, statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
