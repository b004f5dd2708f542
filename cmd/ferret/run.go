package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/ferret"
	"github.com/aretw0/ferret/internal/config"
	"github.com/aretw0/ferret/internal/logging"
	"github.com/aretw0/ferret/internal/metrics"
	"github.com/aretw0/ferret/internal/presentation/tui"
	"github.com/aretw0/ferret/pkg/extract"
	"github.com/aretw0/ferret/pkg/graph"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [url...]",
	Short: "Hunt the given pages for a keyword",
	Long: `Scrapes every given page concurrently and extracts the information
related to the keyword. With no URLs or keyword, built-in defaults are used.`,
	Run: func(cmd *cobra.Command, args []string) {
		urls, _ := cmd.Flags().GetStringArray("url")
		if len(urls) == 0 && len(args) > 0 {
			urls = args
		}
		keyword, _ := cmd.Flags().GetString("keyword")
		browser, _ := cmd.Flags().GetBool("browser")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		showMetrics, _ := cmd.Flags().GetBool("metrics")
		plain, _ := cmd.Flags().GetBool("plain")
		configPath, _ := cmd.Flags().GetString("config")
		levelStr, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logging.ParseLevel(levelStr))

		settings, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("timeout") {
			settings.Timeout = config.Duration(timeout)
		}
		if cmd.Flags().Changed("concurrency") {
			settings.Concurrency = concurrency
		}
		if browser {
			settings.Browser = true
		}

		opts := []ferret.Option{
			ferret.WithLogger(logger),
			ferret.WithModel(settings.Model),
			ferret.WithExtractTimeout(time.Duration(settings.Timeout)),
			ferret.WithMaxConcurrency(settings.Concurrency),
		}
		if settings.BaseURL != "" {
			opts = append(opts, ferret.WithBaseURL(settings.BaseURL))
		}
		if settings.Browser {
			opts = append(opts, ferret.WithFetcher(extract.NewChromeFetcher()))
		}

		hooks := []graph.RunHooks{graph.NewLoggingHooks(logger)}
		var m *metrics.Hooks
		if showMetrics {
			m = metrics.New()
			hooks = append(hooks, m)
		}
		opts = append(opts, ferret.WithHooks(graph.NewCompositeHooks(hooks...)))

		agent, err := ferret.New(settings.APIKey, opts...)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if !plain {
			tui.PrintBanner(ferret.Version)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := ferret.NewRunner()
		runner.Output = os.Stdout
		runner.Renderer = tui.NewRenderer(plain)

		if _, err := runner.Run(ctx, agent, ferret.Input{URLs: urls, Keyword: keyword}); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if m != nil {
			m.LogSummary(logger)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayP("url", "u", nil, "Page to hunt (repeatable)")
	runCmd.Flags().StringP("keyword", "k", "", "Keyword to hunt for")
	runCmd.Flags().Bool("browser", false, "Fetch pages with a headless browser")
	runCmd.Flags().Duration("timeout", 0, "Per-page extraction timeout")
	runCmd.Flags().Int("concurrency", 0, "Max concurrent scrapes (0 = unbounded)")
	runCmd.Flags().Bool("metrics", false, "Log a metrics summary after the run")
	runCmd.Flags().Bool("plain", false, "Plain output (no banner, raw markdown)")

	// Make 'run' the default when no command is provided.
	rootCmd.Run = runCmd.Run
}
