package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pagemine/pagemine/internal/model"
)

func testReport(seedURL string, startedAt time.Time) *model.CrawlReport {
	return &model.CrawlReport{
		SeedURL:    seedURL,
		Status:     model.StatusCompleted,
		FieldNames: []string{"title"},
		Records: []model.ExtractionRecord{
			{
				URL:         seedURL,
				Depth:       0,
				Fields:      []model.FieldValues{{Name: "title", Values: []string{"Home"}}},
				ExtractedAt: startedAt.Add(time.Second),
			},
		},
		PagesAttempted: 1,
		PagesSucceeded: 1,
		StartedAt:      startedAt,
		Elapsed:        1200 * time.Millisecond,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database when allowed", func(t *testing.T) {
		t.Parallel()

		cdb, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer cdb.Close()

		if cdb.Path() == "" {
			t.Error("expected a database path")
		}
	})

	t.Run("refuses to create when not allowed", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cdb.Close()

	ctx := context.Background()
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id, err := cdb.SaveReport(ctx, testReport("http://example.com/", started))
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	got, err := cdb.Report(ctx, id)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got.SeedURL != "http://example.com/" {
		t.Errorf("SeedURL = %q", got.SeedURL)
	}
	if len(got.Records) != 1 || got.Records[0].Value("title")[0] != "Home" {
		t.Errorf("records did not round trip: %+v", got.Records)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("Status = %q", got.Status)
	}
}

func TestReportNotFound(t *testing.T) {
	t.Parallel()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cdb.Close()

	if _, err := cdb.Report(context.Background(), 12345); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Report() error = %v, want %v", err, ErrReportNotFound)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { cdb.Close() })

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		r := testReport("http://example.com/", base.Add(time.Duration(i)*time.Hour))
		if _, err := cdb.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport() error = %v", err)
		}
	}
	if _, err := cdb.SaveReport(ctx, testReport("http://other.org/", base)); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	t.Run("lists all seeds newest first", func(t *testing.T) {
		t.Parallel()

		summaries, err := cdb.History(ctx, "", 0)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(summaries) != 4 {
			t.Fatalf("got %d summaries, want 4", len(summaries))
		}
		for i := 1; i < len(summaries); i++ {
			if summaries[i-1].StartedAt.Before(summaries[i].StartedAt) {
				t.Errorf("summaries not ordered newest first at %d", i)
			}
		}
	})

	t.Run("filters by seed", func(t *testing.T) {
		t.Parallel()

		summaries, err := cdb.History(ctx, "http://other.org/", 0)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(summaries) != 1 || summaries[0].SeedURL != "http://other.org/" {
			t.Errorf("summaries = %+v", summaries)
		}
	})

	t.Run("honors limit", func(t *testing.T) {
		t.Parallel()

		summaries, err := cdb.History(ctx, "http://example.com/", 2)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(summaries) != 2 {
			t.Errorf("got %d summaries, want 2", len(summaries))
		}
	})

	t.Run("lists distinct seeds by recency", func(t *testing.T) {
		t.Parallel()

		seeds, err := cdb.ListSeeds(ctx)
		if err != nil {
			t.Fatalf("ListSeeds() error = %v", err)
		}
		want := []string{"http://example.com/", "http://other.org/"}
		if len(seeds) != len(want) {
			t.Fatalf("got %d seeds, want %d", len(seeds), len(want))
		}
		for i, seed := range want {
			if seeds[i] != seed {
				t.Errorf("seeds[%d] = %q, want %q", i, seeds[i], seed)
			}
		}
	})
}
