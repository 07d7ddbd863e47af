// Package main provides the alttube CLI entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"alttube/internal/curation"
	"alttube/internal/display"
	"alttube/internal/server"
	"alttube/internal/session"
	"alttube/internal/store"
	"alttube/internal/youtube"
)

var version = "dev"

func main() {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version and falls back to module
// build info, so both release builds and `go install` report something
// useful.
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info == nil || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if dir := os.Getenv("ALTTUBE_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "alttube")
}

// getAPIURL returns the catalog base URL (overridable for testing).
func getAPIURL() string {
	if url := os.Getenv("ALTTUBE_API_URL"); url != "" {
		return url
	}
	return "https://www.googleapis.com"
}

// newCatalogClient builds a catalog client from the environment,
// failing with a helpful message when the credential is missing.
func newCatalogClient() (*youtube.Client, error) {
	key := os.Getenv("YT_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("missing credentials: set the YT_API_KEY environment variable")
	}
	return youtube.NewClient(key, youtube.WithBaseURL(getAPIURL())), nil
}

// newRootCmd creates the root command for the alttube CLI.
func newRootCmd() *cobra.Command {
	info, _ := debug.ReadBuildInfo()

	rootCmd := &cobra.Command{
		Use:     "alttube",
		Short:   "Curated trending videos without the noise",
		Long:    "Alttube curates the YouTube trending chart: it drops music, AI-generated and overheated videos, then ranks what is left by how fast it is gathering views.",
		Version: resolveVersion(version, info),
	}

	rootCmd.SetVersionTemplate("alttube version {{.Version}}\n")

	rootCmd.AddCommand(newFeedCmd())
	rootCmd.AddCommand(newTrendsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRegionCmd())
	rootCmd.AddCommand(newCategoriesCmd())

	return rootCmd
}

// feedFlags are the curation filters shared by feed and trends.
type feedFlags struct {
	region     string
	maxViews   int64
	days       int
	minViews   int64
	query      string
	hideShorts bool
	category   string
}

func (f *feedFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "2-letter region code (default: persisted preference, else US)")
	cmd.Flags().Int64Var(&f.maxViews, "max-views", 200000, "Drop videos with more views than this (0 disables)")
	cmd.Flags().IntVar(&f.days, "days", 14, "Drop videos older than this many days (0 disables)")
	cmd.Flags().Int64Var(&f.minViews, "min-views", 0, "Drop videos with fewer views than this")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Keep only videos whose title or channel contains this text")
	cmd.Flags().BoolVar(&f.hideShorts, "hide-shorts", true, "Drop videos shorter than 60 seconds")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Restrict to a catalog category id")
}

func (f *feedFlags) config() curation.FilterConfig {
	return curation.FilterConfig{
		Region:     f.region,
		CategoryID: f.category,
		MaxViews:   f.maxViews,
		MaxAgeDays: f.days,
		HideShorts: f.hideShorts,
		MinViews:   f.minViews,
		Query:      f.query,
	}
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd() *cobra.Command {
	var flags feedFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Fetch and print one curated page of trending videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			catalog, err := newCatalogClient()
			if err != nil {
				return err
			}

			cfg := flags.config()
			if cfg.Region == "" {
				cfg.Region = "US"
			}

			pipeline := curation.New(catalog)
			page, err := pipeline.FetchPage(ctx, cfg, "")
			if err != nil {
				return err
			}

			videos := page.Items
			if limit > 0 && len(videos) > limit {
				videos = videos[:limit]
			}

			formatter := display.NewTerminalFormatter()
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFeed(videos))
			if page.NextToken != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMore available (token %s)\n", page.NextToken)
			}

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of videos to display")

	return cmd
}

// newTrendsCmd creates the trends subcommand, an interactive loop over
// a feed session: enter advances, "l" toggles like, "s" marks seen,
// "q" quits. Seen and liked state persists across runs.
func newTrendsCmd() *cobra.Command {
	var flags feedFlags

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Swipe through curated trending videos one at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			catalog, err := newCatalogClient()
			if err != nil {
				return err
			}

			st, err := store.Open(getConfigDir())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			pipeline := curation.New(catalog)
			sess, err := session.New(ctx, pipeline, st, flags.config())
			if err != nil {
				return err
			}

			if flags.region != "" && flags.region != sess.Region() {
				if err := sess.ChangeRegion(ctx, flags.region); err != nil {
					return err
				}
			} else if err := sess.Load(ctx, true); err != nil {
				return err
			}

			return runTrendsLoop(ctx, cmd, sess)
		},
	}

	flags.register(cmd)

	return cmd
}

func runTrendsLoop(ctx context.Context, cmd *cobra.Command, sess *session.Session) error {
	out := cmd.OutOrStdout()
	formatter := display.NewTerminalFormatter()

	printCurrent := func() {
		v := sess.Current()
		if v == nil {
			fmt.Fprintln(out, "Nothing to show. Try loosening the filters.")
			return
		}
		marks := ""
		if sess.Liked(v.ID) {
			marks += " ★"
		}
		if sess.Seen(v.ID) {
			marks += " (seen)"
		}
		fmt.Fprintf(out, "\n[%s]%s\n%s", sess.Region(), marks, formatter.FormatVideo(*v))
	}

	fmt.Fprintln(out, "enter: next • l: like • s: mark seen • q: quit")
	printCurrent()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "q":
			return nil
		case "l":
			v := sess.Current()
			if v == nil {
				continue
			}
			liked, err := sess.ToggleLiked(ctx, v.ID)
			if err != nil {
				return err
			}
			if liked {
				fmt.Fprintln(out, "Liked.")
			} else {
				fmt.Fprintln(out, "Like removed.")
			}
		case "s":
			v := sess.Current()
			if v == nil {
				continue
			}
			if err := sess.MarkSeen(ctx, v.ID); err != nil {
				return err
			}
			fmt.Fprintln(out, "Marked seen.")
		default:
			if _, err := sess.Advance(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "load failed: %v\n", err)
			}
			if sess.Exhausted() && sess.Current() == nil {
				fmt.Fprintln(out, "Feed exhausted for this region.")
			}
			printCurrent()
		}
	}

	return scanner.Err()
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the curation pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

			// Start even without credentials; the handler reports the
			// configuration error per request.
			var pipeline server.PageFetcher
			if catalog, err := newCatalogClient(); err == nil {
				pipeline = curation.New(catalog)
			} else {
				logger.Warn("starting without catalog credentials", "error", err)
			}

			handler := server.NewTrendingHandler(pipeline, logger)
			router := server.NewRouter(handler, logger)

			addr := fmt.Sprintf(":%d", port)
			logger.Info("listening", "addr", addr)
			return http.ListenAndServe(addr, router)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	return cmd
}

// newRegionCmd creates the region subcommand.
func newRegionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "region [CODE]",
		Short: "Show or set the persisted region preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := store.Open(getConfigDir())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if len(args) == 0 {
				region, err := st.Region(ctx)
				if err != nil {
					return err
				}
				if region == "" {
					region = "US (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Region: %s\n", region)
				return nil
			}

			code, err := session.NormalizeRegion(args[0])
			if err != nil {
				return err
			}
			if err := st.SetRegion(ctx, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Region set to %s\n", code)
			return nil
		},
	}

	return cmd
}

// newCategoriesCmd creates the categories subcommand.
func newCategoriesCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the catalog's video categories for a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			catalog, err := newCatalogClient()
			if err != nil {
				return err
			}

			categories, err := catalog.FetchCategories(ctx, region)
			if err != nil {
				return err
			}

			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s\n", c.ID, c.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "US", "2-letter region code")

	return cmd
}
