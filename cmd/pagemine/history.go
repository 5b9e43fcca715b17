package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pagemine/pagemine/internal/config"
	"github.com/pagemine/pagemine/internal/database"
	"github.com/pagemine/pagemine/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed-url]",
		Short: "List or show archived crawl reports",
		Long: `History lists archived crawl reports, newest first.

With a seed URL argument, only reports for that seed are listed. A single
archived report can be printed in full with --show.

Examples:
  # List recent crawls
  pagemine history

  # List crawls of one seed
  pagemine history https://example.com

  # List every seed in the archive
  pagemine history --seeds

  # Print archived report 42
  pagemine history --show 42

  # Print archived report 42 as JSON
  pagemine history --show 42 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Directory of the report archive (default: XDG data directory)")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of reports to list (0 = unlimited)")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the archived report with this ID instead of listing")
	cmd.Flags().BoolP("json", "j", false,
		"Print the report selected with --show as JSON")
	cmd.Flags().Bool("seeds", false,
		"List distinct seed URLs instead of reports")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Listing never creates the archive: an empty one has nothing to show.
	db, err := database.Open(dbDir, database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no report archive found in %s (run a crawl first): %w", dbDir, err)
	}
	defer db.Close() //nolint:errcheck

	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	if showID > 0 {
		return showReport(cmd, db, showID)
	}

	listSeeds, err := cmd.Flags().GetBool("seeds")
	if err != nil {
		return err
	}
	if listSeeds {
		return printSeeds(cmd, db)
	}

	var seedURL string
	if len(args) == 1 {
		seedURL = args[0]
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	return listReports(cmd, db, seedURL, limit)
}

// showReport prints a single archived report in full.
func showReport(cmd *cobra.Command, db *database.CrawlDB, id int64) error {
	rep, err := db.Report(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReportNotFound) {
			return fmt.Errorf("no archived report with id %d", id)
		}
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var w report.Writer
	if asJSON {
		w = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	} else {
		w = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(true))
	}

	_, err = w.Write(rep)
	return err
}

// printSeeds lists the distinct seed URLs in the archive.
func printSeeds(cmd *cobra.Command, db *database.CrawlDB) error {
	seeds, err := db.ListSeeds(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list seeds: %w", err)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No archived reports")
		return nil
	}

	for _, seed := range seeds {
		fmt.Fprintln(cmd.OutOrStdout(), seed)
	}
	return nil
}

// listReports prints archived report summaries as a table.
func listReports(cmd *cobra.Command, db *database.CrawlDB, seedURL string, limit int) error {
	summaries, err := db.History(cmd.Context(), seedURL, limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(summaries) == 0 {
		if seedURL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No archived reports for %s\n", seedURL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No archived reports")
		}
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEED\tSTATUS\tOK\tFAILED\tSTARTED\tELAPSED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			s.ID,
			s.SeedURL,
			s.Status,
			s.PagesSucceeded,
			s.PagesFailed,
			s.StartedAt.Local().Format(time.DateTime),
			s.Elapsed.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}
