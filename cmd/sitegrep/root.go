package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harukit/sitegrep/internal/crawler"
)

// Exit codes. Scripts can tell a clean miss from an aborted crawl.
const (
	exitFound     = 0
	exitNoResults = 1
	exitAborted   = 2
	exitError     = 3
)

// errNoResults marks a run that completed normally but found nothing.
var errNoResults = errors.New("no results found")

// NewRootCmd creates the root command for sitegrep.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegrep",
		Short: "Search websites for text or collect images by crawling their links",
		Long: `sitegrep crawls a website breadth-first starting from a base URL,
visiting every same-site page exactly once.

Two tasks are available:
  search  find pages whose text contains a literal string
  images  collect images whose alt text contains a string

A crawl tolerates a limited number of skipped links (already-visited
duplicates and pages that fail to fetch or parse); past that limit the
run aborts with partial results.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewImagesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and maps the outcome to an exit code:
// 0 results found, 1 nothing found, 2 crawl aborted by the skip limit,
// 3 configuration or runtime error.
func Execute() int {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
		return exitFound
	case errors.Is(err, errNoResults):
		fmt.Fprintln(os.Stderr, err)
		return exitNoResults
	case errors.Is(err, crawler.ErrSkipLimitExceeded):
		fmt.Fprintln(os.Stderr, err)
		return exitAborted
	default:
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
