package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flairscope/flairscope/internal/config"
	"github.com/flairscope/flairscope/internal/database"
	"github.com/flairscope/flairscope/internal/export"
	"github.com/flairscope/flairscope/internal/faults"
	"github.com/flairscope/flairscope/internal/pipeline"
	"github.com/flairscope/flairscope/internal/reddit"
	"github.com/flairscope/flairscope/internal/report"
	"github.com/flairscope/flairscope/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "flairscope",
	Short:   "Subreddit flair viral-potential analytics",
	Long:    "Flairscope scrapes a subreddit's top posts and ranks its flairs by viral potential.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Credentials commonly live in a local .env during development.
		godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("flairscope", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/flairscope/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET in the environment or a .env file.")
		return nil
	},
}

// --- analyze command ---

var (
	analyzeSubreddit  string
	analyzeLimit      int
	analyzeTimeFilter string
	analyzePercentile float64
	analyzeMinPosts   int
	analyzeExport     bool
	analyzeOutputDir  string
	analyzeSave       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scrape a subreddit and rank its flairs by viral potential",
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeSubreddit == "" {
			return faults.Validation("subreddit is required (use -s)")
		}

		client, err := newRedditClient()
		if err != nil {
			return err
		}

		runner := pipeline.New(client, cfg.Scrape.BatchSize, cfg.Scrape.MaxWorkers)
		params := pipeline.Params{
			Subreddit:       analyzeSubreddit,
			TimeFilter:      analyzeTimeFilter,
			PostLimit:       analyzeLimit,
			ViralPercentile: percentileOrDefault(),
			MinPosts:        minPostsOrDefault(),
		}

		analysis, err := runner.Run(context.Background(), params)
		if err != nil {
			return err
		}

		md := report.Render(analysis)
		fmt.Println(md)

		if analyzeExport {
			dir := analyzeOutputDir
			if dir == "" {
				dir = filepath.Join(cfg.GetDataDir(), "exports")
			}
			files, err := export.All(analysis, md, dir)
			if err != nil {
				return fmt.Errorf("exporting results: %w", err)
			}
			fmt.Println("Exported:")
			for _, p := range []string{files.FlairCSV, files.PostsCSV, files.JSON, files.Markdown} {
				fmt.Printf("  %s\n", p)
			}
		}

		if analyzeSave {
			id, err := saveRun(analysis, params, md)
			if err != nil {
				return fmt.Errorf("saving run: %w", err)
			}
			fmt.Printf("Saved run %s. View it with 'flairscope serve'.\n", id)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeSubreddit, "subreddit", "s", "", "Subreddit to analyze (required)")
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "posts", "p", 500, "Number of top posts to fetch")
	analyzeCmd.Flags().StringVarP(&analyzeTimeFilter, "timeframe", "t", "all", "Time filter: all, hour, day, week, month, year")
	analyzeCmd.Flags().Float64Var(&analyzePercentile, "threshold", 0, "Viral score percentile (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeMinPosts, "min-posts", 0, "Minimum posts per flair (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeExport, "export", false, "Write CSV, JSON and markdown exports")
	analyzeCmd.Flags().StringVarP(&analyzeOutputDir, "output", "o", "", "Export directory (default <data-dir>/exports)")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Record the run in the local history database")
}

func percentileOrDefault() float64 {
	if analyzePercentile > 0 {
		return analyzePercentile
	}
	return cfg.Analysis.ViralPercentile
}

func minPostsOrDefault() int {
	if analyzeMinPosts > 0 {
		return analyzeMinPosts
	}
	return cfg.Analysis.MinPosts
}

func saveRun(a *pipeline.Analysis, params pipeline.Params, md string) (string, error) {
	db, err := openDB()
	if err != nil {
		return "", err
	}
	defer db.Close()

	run := &database.Run{
		Subreddit:       a.Subreddit,
		TimeFilter:      a.TimeFilter,
		PostLimit:       params.PostLimit,
		ViralPercentile: params.ViralPercentile,
		MinPosts:        params.MinPosts,
		ViralThreshold:  a.ViralThreshold,
		TotalPosts:      a.Collected,
		ViralPosts:      a.Summary.TotalViralPosts,
		Skipped:         a.Skipped,
		ReportMarkdown:  md,
	}

	flairs := make([]database.FlairRow, 0, len(a.Flairs))
	for _, fs := range a.Flairs {
		flairs = append(flairs, database.FlairRow{
			Flair:       fs.Flair,
			TotalPosts:  fs.TotalPosts,
			ViralPosts:  fs.ViralPosts,
			ViralRate:   fs.ViralRate,
			AvgScore:    fs.AvgScore,
			MedianScore: fs.MedianScore,
			MaxScore:    fs.MaxScore,
			Confidence:  fs.Confidence,
			ViralScore:  fs.ViralScore,
		})
	}

	return db.InsertRun(run, flairs)
}

// --- info command ---

var infoCmd = &cobra.Command{
	Use:   "info [subreddit]",
	Short: "Show basic facts about a subreddit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newRedditClient()
		if err != nil {
			return err
		}

		about, err := client.About(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("r/%s: %s\n", about.DisplayName, about.Title)
		if about.Description != "" {
			fmt.Printf("  %s\n", about.Description)
		}
		fmt.Printf("  Subscribers: %d\n", about.Subscribers)
		fmt.Printf("  Active now: %d\n", about.ActiveUserCount)
		fmt.Printf("  Created: %s\n", about.Created.Format("2006-01-02"))
		if about.Over18 {
			fmt.Println("  NSFW: yes")
		}
		return nil
	},
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded. Use 'flairscope analyze --save' to record one.")
			return nil
		}

		for _, r := range runs {
			created := ""
			if r.CreatedAt != nil {
				created = *r.CreatedAt
			}
			fmt.Printf("%s  r/%-20s %-6s %4d posts, %3d viral, threshold %.1f  (%s)\n",
				r.ID, r.Subreddit, r.TimeFilter, r.TotalPosts, r.ViralPosts, r.ViralThreshold, created)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local run-history dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func newRedditClient() (*reddit.Client, error) {
	id := os.Getenv(cfg.Reddit.ClientIDEnv)
	secret := os.Getenv(cfg.Reddit.ClientSecretEnv)
	if id == "" || secret == "" {
		return nil, faults.Configuration("reddit credentials missing: set %s and %s",
			cfg.Reddit.ClientIDEnv, cfg.Reddit.ClientSecretEnv)
	}

	creds := reddit.Credentials{
		ClientID:     id,
		ClientSecret: secret,
		UserAgent:    cfg.Reddit.UserAgent,
	}
	return reddit.NewClient(creds, time.Duration(cfg.Reddit.TimeoutSeconds)*time.Second), nil
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "flairscope.db")
	return database.Open(dbPath)
}
