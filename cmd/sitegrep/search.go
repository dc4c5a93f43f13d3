package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harukit/sitegrep/internal/config"
	"github.com/harukit/sitegrep/internal/crawler"
	"github.com/harukit/sitegrep/internal/log"
	"github.com/harukit/sitegrep/internal/model"
	"github.com/harukit/sitegrep/internal/report"
	"github.com/harukit/sitegrep/internal/runner"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [flags] <base-url>... <string>",
		Short: "Search a website's text for a literal string",
		Long: `Search crawls a website breadth-first from the base URL and reports
every page whose visible text contains the given string. Each page is
visited exactly once; links to other hosts are not followed.

The last argument is the search string; every argument before it is a
base URL to crawl. Multiple base URLs are crawled concurrently.

Examples:
  # Search a site for the word "pricing"
  sitegrep search https://example.com pricing

  # Case-insensitive search, single page only
  sitegrep search -i -s https://example.com/faq refund

  # Tolerate at most 5 skipped links before giving up
  sitegrep search -l 5 https://example.com contact

  # Search two sites at once and write a Markdown report
  sitegrep search --markdown -o report.md https://a.example https://b.example beta

Configuration file (.sitegrep) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      skip_limit: 5`,
		Args: cobra.MinimumNArgs(2),
		RunE: runSearchCmd,
	}

	addCrawlFlags(cmd)
	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// The last argument is the search string, everything before it is a
	// base URL.
	cfg.Mode = model.ModeSearch
	cfg.Targets = args[:len(args)-1]
	cfg.Needle = args[len(args)-1]

	return runCrawl(cmd, cfg)
}

// addCrawlFlags registers the flags shared by the search and images
// commands.
func addCrawlFlags(cmd *cobra.Command) {
	// Matching flags
	cmd.Flags().BoolP("ignore-case", "i", false,
		"Match case-insensitively")

	// Traversal flags
	cmd.Flags().BoolP("single-page", "s", false,
		"Process only the base URL, following no links")
	cmd.Flags().IntP("limit", "l", config.DefaultSkipLimit,
		"Maximum tolerated skipped links (duplicates and failures) before aborting")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of base URLs crawled concurrently")

	// Connection flags
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy at host:port")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitegrep in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this run in the history database")
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	if cfg.CaseInsensitive, err = cmd.Flags().GetBool("ignore-case"); err != nil {
		return nil, err
	}
	if cfg.SinglePage, err = cmd.Flags().GetBool("single-page"); err != nil {
		return nil, err
	}
	if cfg.SkipLimit, err = cmd.Flags().GetInt("limit"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noSave
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// runCrawl executes the configured crawl and maps its outcome to the
// error values the root command turns into exit codes.
func runCrawl(cmd *cobra.Command, cfg *config.Config) error {
	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Interrupts cancel the context so partial results still get reported.
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r, err := runner.New(cfg, logger, runner.WithConsoleWriter(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // Close errors on a read-only path are not actionable

	reports, runErr := r.RunAll(ctx)
	return finishCrawl(cmd, cfg, reports, runErr)
}

// finishCrawl writes whatever reports exist, then resolves the run's error.
// An interrupted batch still reports the targets it completed; the batch
// error wins over the folded per-target outcome for exit-code purposes.
func finishCrawl(cmd *cobra.Command, cfg *config.Config, reports []*model.CrawlReport, runErr error) error {
	if err := outputReports(cmd, cfg, reports); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return crawlOutcome(reports)
}

// crawlOutcome folds the per-target outcomes into one error for exit-code
// mapping: runtime errors win over aborts, aborts over a clean miss.
func crawlOutcome(reports []*model.CrawlReport) error {
	var aborted, found bool
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		if rep.Error != "" {
			return errors.New(rep.Error)
		}
		if rep.Aborted {
			aborted = true
		}
		if rep.Found() {
			found = true
		}
	}

	switch {
	case aborted:
		return crawler.ErrSkipLimitExceeded
	case found:
		return nil
	default:
		return errNoResults
	}
}

// outputReports writes every report to the configured destination in the
// configured format.
func outputReports(cmd *cobra.Command, cfg *config.Config, reports []*model.CrawlReport) error {
	output := cmd.OutOrStdout()

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}

		// 0600: reports can carry URLs and titles from authenticated crawls.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Write errors surface from the writers below
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output)
	}

	for _, rep := range reports {
		if rep == nil {
			continue
		}
		if _, err := w.Write(rep); err != nil {
			return fmt.Errorf("write report for %s: %w", rep.BaseURL, err)
		}
	}
	return nil
}
