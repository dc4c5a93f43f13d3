package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harukit/sitegrep/internal/config"
	"github.com/harukit/sitegrep/internal/database"
	"github.com/harukit/sitegrep/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously recorded crawl runs",
		Long: `History lists the crawl runs recorded in the local database, newest
first. Runs are recorded automatically unless --no-save was used.

Examples:
  # List the 20 most recent runs
  sitegrep history

  # List the 5 most recent runs
  sitegrep history -n 5

  # Print the full stored report of run 12 as JSON
  sitegrep history --show 12

  # Print the most recent stored report for a base URL
  sitegrep history --last https://example.com`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64("show", 0, "Print the full stored report for the given run ID")
	cmd.Flags().String("last", "", "Print the most recent stored report for the given base URL")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	lastURL, err := cmd.Flags().GetString("last")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no run history recorded yet: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-only access

	if showID > 0 {
		return showRun(cmd, db, showID)
	}
	if lastURL != "" {
		return showLatest(cmd, db, lastURL)
	}
	return listRuns(cmd, db, limit)
}

// showRun prints the full stored report for one run as JSON.
func showRun(cmd *cobra.Command, db *database.HistoryDB, id int64) error {
	rep, err := db.GetReport(cmd.Context(), id)
	if err != nil {
		return err
	}
	if rep == nil {
		return fmt.Errorf("no run with ID %d", id)
	}

	_, err = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).Write(rep)
	return err
}

// showLatest prints the most recent stored report for a base URL as JSON.
func showLatest(cmd *cobra.Command, db *database.HistoryDB, baseURL string) error {
	rep, err := db.LatestReport(cmd.Context(), baseURL)
	if err != nil {
		return err
	}
	if rep == nil {
		return fmt.Errorf("no recorded runs for %s", baseURL)
	}

	_, err = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).Write(rep)
	return err
}

// listRuns prints a table of recorded runs.
func listRuns(cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTASK\tTARGET\tSTRING\tPAGES\tRESULTS\tSTATUS")
	for _, run := range runs {
		status := "complete"
		if run.Aborted {
			status = "aborted"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04"),
			run.Mode,
			run.BaseURL,
			run.Needle,
			run.PagesVisited,
			run.MatchCount,
			status,
		)
	}
	return w.Flush()
}
