package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pagemine/pagemine/internal/database"
	"github.com/pagemine/pagemine/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [seed-url]" {
			t.Errorf("expected use 'history [seed-url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has show flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("show")
		if flag == nil {
			t.Fatal("expected show flag")
		}
		if flag.Shorthand != "s" {
			t.Errorf("expected shorthand 's', got %q", flag.Shorthand)
		}
	})

	t.Run("has db-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") == nil {
			t.Error("expected db-dir flag")
		}
	})
}

// seedArchive creates an archive in dir with two finished crawl reports
// and returns their IDs.
func seedArchive(t *testing.T, dir string) (int64, int64) {
	t.Helper()

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()

	first := &model.CrawlReport{
		SeedURL:    "https://example.com",
		Status:     model.StatusCompleted,
		FieldNames: []string{"title"},
		Records: []model.ExtractionRecord{
			{
				URL:         "https://example.com",
				Depth:       0,
				Fields:      []model.FieldValues{{Name: "title", Values: []string{"Home"}}},
				ExtractedAt: time.Now().UTC(),
			},
		},
		Errors:         []model.CrawlError{},
		PagesAttempted: 1,
		PagesSucceeded: 1,
		StartedAt:      time.Now().Add(-2 * time.Minute).UTC(),
		Elapsed:        3 * time.Second,
	}
	firstID, err := db.SaveReport(ctx, first)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	second := &model.CrawlReport{
		SeedURL:        "https://example.org",
		Status:         model.StatusCancelled,
		FieldNames:     []string{"title"},
		Records:        []model.ExtractionRecord{},
		Errors:         []model.CrawlError{},
		PagesAttempted: 0,
		StartedAt:      time.Now().Add(-1 * time.Minute).UTC(),
		Elapsed:        time.Second,
	}
	secondID, err := db.SaveReport(ctx, second)
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	return firstID, secondID
}

// TestRunHistoryCmd tests listing and showing archived reports.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("errors when archive does not exist", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()

		root := NewRootCmd()
		root.SetArgs([]string{"history", "--db-dir", tmpDir})

		err := root.Execute()
		if err == nil {
			t.Error("expected error for missing archive")
		}
		if !strings.Contains(err.Error(), "no report archive") {
			t.Errorf("expected 'no report archive' error, got: %v", err)
		}
	})

	t.Run("lists reports newest first", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		seedArchive(t, tmpDir)

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"history", "--db-dir", tmpDir})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://example.com") {
			t.Errorf("expected listing to contain example.com, got %q", output)
		}
		if !strings.Contains(output, "https://example.org") {
			t.Errorf("expected listing to contain example.org, got %q", output)
		}

		orgIdx := strings.Index(output, "https://example.org")
		comIdx := strings.Index(output, "https://example.com")
		if orgIdx > comIdx {
			t.Error("expected newest report (example.org) to be listed first")
		}
	})

	t.Run("filters by seed url", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		seedArchive(t, tmpDir)

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"history", "--db-dir", tmpDir, "https://example.com"})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://example.com") {
			t.Errorf("expected filtered listing to contain example.com, got %q", output)
		}
		if strings.Contains(output, "https://example.org") {
			t.Errorf("expected filtered listing to exclude example.org, got %q", output)
		}
	})

	t.Run("reports empty archive for unknown seed", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		seedArchive(t, tmpDir)

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"history", "--db-dir", tmpDir, "https://nothing.example"})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No archived reports") {
			t.Errorf("expected empty listing message, got %q", buf.String())
		}
	})

	t.Run("lists distinct seeds", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		seedArchive(t, tmpDir)

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"history", "--db-dir", tmpDir, "--seeds"})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://example.com") {
			t.Errorf("expected seed list to contain example.com, got %q", output)
		}
		if !strings.Contains(output, "https://example.org") {
			t.Errorf("expected seed list to contain example.org, got %q", output)
		}
		if strings.Contains(output, "STATUS") {
			t.Errorf("expected bare seed list, got table output %q", output)
		}
	})

	t.Run("shows a single report", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		firstID, _ := seedArchive(t, tmpDir)

		var buf bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"history", "--db-dir", tmpDir, "--show", formatID(firstID)})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://example.com") {
			t.Errorf("expected report to contain seed URL, got %q", output)
		}
		if !strings.Contains(output, "Home") {
			t.Errorf("expected report to contain extracted value, got %q", output)
		}
	})

	t.Run("show errors for unknown id", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		seedArchive(t, tmpDir)

		root := NewRootCmd()
		root.SetArgs([]string{"history", "--db-dir", tmpDir, "--show", "9999"})

		err := root.Execute()
		if err == nil {
			t.Error("expected error for unknown report id")
		}
		if !strings.Contains(err.Error(), "no archived report") {
			t.Errorf("expected 'no archived report' error, got: %v", err)
		}
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
