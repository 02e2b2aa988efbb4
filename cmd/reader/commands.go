// ABOUTME: Reader subcommands for the search screen and feed management
// ABOUTME: Feed errors are reported with their user-facing message and exit status 1

package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"rss-reader-app/core/home"
	"rss-reader-app/core/workers"
	coresearch "rss-reader-app/core/search"
	"rss-reader-app/infrastructure/browser"
	"rss-reader-app/pkg/featureflags"
	"rss-reader-app/ui/app"
	uisearch "rss-reader-app/ui/search"
	"rss-reader-app/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	// errRefreshFailed is returned when at least one feed failed to refresh
	errRefreshFailed = errors.New("some feeds failed to refresh")

	// errAddFailed is returned when at least one feed could not be added
	errAddFailed = errors.New("some feeds could not be added")
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Open the post search screen",
	Args:  cobra.NoArgs,
	RunE:  runSearch,
}

var addCmd = &cobra.Command{
	Use:   "add [url...]",
	Short: "Subscribe to feeds and store their posts",
	Long: `Loads the RSS, Atom or JSON feed at each url and stores it with its posts.
Adding a feed that is already stored refreshes it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload every stored feed",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "List stored feeds",
	Args:  cobra.NoArgs,
	RunE:  runFeeds,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show post database statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := withFlags(cmd.Context())

	nav := app.NewNavigator()
	presenter := coresearch.NewPresenter(rt.search,
		coresearch.WithDebounce(rt.cfg.Search.Debounce()),
		coresearch.WithOnBack(nav.Back),
		coresearch.WithLogger(rt.logger),
	)
	defer presenter.Close()

	if rt.cfg.Refresh.Enabled() {
		worker, err := workers.NewRefreshWorker(rt.home, rt.logger, workers.WorkerConfig{
			Schedule: rt.cfg.Refresh.Schedule,
			Timeout:  rt.cfg.Refresh.Timeout(),
		})
		if err != nil {
			return err
		}
		if err := worker.Start(ctx); err != nil {
			return err
		}
		defer worker.Stop()
	}

	opener := browser.NewOpener(rt.logger)
	screen := uisearch.New(presenter, opener.OpenLink,
		uisearch.WithStyles(theme.NewStyles(theme.DetectTheme())),
		uisearch.WithAnimatedScroll(featureflags.IsEnabled(ctx, featureflags.AnimatedScroll)),
	)

	program := tea.NewProgram(app.New(nav, screen),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("search screen failed: %w", err)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := withFlags(cmd.Context())
	out := cmd.OutOrStdout()

	failed := 0
	for _, arg := range args {
		feedURL := strings.TrimSpace(arg)
		added, homeErr := rt.home.AddFeed(ctx, feedURL)
		if homeErr != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %s\n", feedURL, home.Message(homeErr))
			continue
		}
		fmt.Fprintf(out, "✓ Added %s (%d posts)\n", feedName(added.Title, added.URL), len(added.Posts))
	}

	if failed > 0 {
		return errAddFailed
	}
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.home.RefreshAll(withFlags(cmd.Context()))
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}

	if printRefresh(cmd.OutOrStdout(), results) > 0 {
		return errRefreshFailed
	}
	return nil
}

// printRefresh writes one line per feed and returns the number of failures
func printRefresh(w io.Writer, results []home.RefreshResult) int {
	if len(results) == 0 {
		fmt.Fprintln(w, "No feeds yet. Add one with: reader add <url>")
		return 0
	}

	failed := 0
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range results {
		name := feedName(r.Feed.Title, r.Feed.URL)
		if r.Err != nil {
			failed++
			fmt.Fprintf(tw, "✗\t%s\t%s\n", name, home.Message(r.Err))
			continue
		}
		fmt.Fprintf(tw, "✓\t%s\t%d posts\n", name, r.Posts)
	}
	tw.Flush()
	return failed
}

func runFeeds(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	feeds, err := rt.store.Feeds(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list feeds: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(feeds) == 0 {
		fmt.Fprintln(out, "No feeds yet. Add one with: reader add <url>")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range feeds {
		fmt.Fprintf(tw, "%s\t%s\n", feedName(f.Title, f.URL), f.URL)
	}
	return tw.Flush()
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	stats, err := rt.store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", k, stats[k])
	}
	return tw.Flush()
}

func feedName(title, url string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return url
}
