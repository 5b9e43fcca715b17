package frontier

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"removes fragment", "http://example.com/page#section", "http://example.com/page", false},
		{"lowercase scheme", "HTTP://example.com/page", "http://example.com/page", false},
		{"lowercase host", "http://EXAMPLE.COM/page", "http://example.com/page", false},
		{"empty path becomes root", "http://example.com", "http://example.com/", false},
		{"preserves query", "http://example.com/search?q=test", "http://example.com/search?q=test", false},
		{"preserves path case", "http://example.com/Page", "http://example.com/Page", false},
		{"rejects ftp", "ftp://example.com/file", "", true},
		{"rejects relative", "/just/a/path", "", true},
		{"rejects garbage", "://nope", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnqueue(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates by normalized URL", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		added := f.Enqueue([]Candidate{
			{URL: "http://example.com/page", Depth: 0},
			{URL: "HTTP://EXAMPLE.COM/page", Depth: 0},
			{URL: "http://example.com/page#frag", Depth: 1},
		})

		if added != 1 {
			t.Errorf("expected 1 admission, got %d", added)
		}
		if !f.Seen("http://example.com/page") {
			t.Error("expected URL to be marked seen")
		}
	})

	t.Run("drops entries beyond max depth silently", func(t *testing.T) {
		t.Parallel()

		f := New(10, 1)
		added := f.Enqueue([]Candidate{
			{URL: "http://example.com/a", Depth: 1},
			{URL: "http://example.com/b", Depth: 2},
		})

		if added != 1 {
			t.Errorf("expected 1 admission, got %d", added)
		}
		if f.Seen("http://example.com/b") {
			t.Error("over-depth candidate must not be marked seen")
		}
	})

	t.Run("stops admitting at max pages", func(t *testing.T) {
		t.Parallel()

		f := New(3, 5)
		candidates := make([]Candidate, 10)
		for i := range candidates {
			candidates[i] = Candidate{URL: "http://example.com/page" + string(rune('a'+i)), Depth: 0}
		}

		if added := f.Enqueue(candidates); added != 3 {
			t.Errorf("expected 3 admissions, got %d", added)
		}
		if f.Admitted() != 3 {
			t.Errorf("expected admitted count 3, got %d", f.Admitted())
		}

		// Budget stays exhausted across calls.
		if added := f.Enqueue([]Candidate{{URL: "http://example.com/late", Depth: 0}}); added != 0 {
			t.Errorf("expected 0 admissions after budget exhausted, got %d", added)
		}
	})

	t.Run("drops invalid URLs", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		added := f.Enqueue([]Candidate{
			{URL: "://invalid", Depth: 0},
			{URL: "mailto:user@example.com", Depth: 0},
		})

		if added != 0 {
			t.Errorf("expected 0 admissions, got %d", added)
		}
	})

	t.Run("admits nothing after close", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		f.Close()

		// Must be a silent no-op, not a send on a closed channel.
		added := f.Enqueue([]Candidate{{URL: "http://example.com/late", Depth: 0}})
		if added != 0 {
			t.Errorf("expected 0 admissions after close, got %d", added)
		}
	})
}

// TestDone tests the queued-plus-in-flight accounting.
func TestDone(t *testing.T) {
	t.Parallel()

	t.Run("closes the frontier when the last entry is released", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		f.Enqueue([]Candidate{{URL: "http://example.com/", Depth: 0}})

		ctx := context.Background()
		if _, ok := f.Next(ctx); !ok {
			t.Fatal("expected the seed entry")
		}
		f.Done()

		if _, ok := f.Next(ctx); ok {
			t.Error("expected frontier to close after the last Done")
		}
	})

	t.Run("stays open while a dequeued entry is outstanding", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		f.Enqueue([]Candidate{
			{URL: "http://example.com/a", Depth: 0},
			{URL: "http://example.com/b", Depth: 0},
		})

		ctx := context.Background()
		if _, ok := f.Next(ctx); !ok {
			t.Fatal("expected first entry")
		}
		f.Done()

		// One entry is still queued, so the frontier must stay open and
		// keep accepting discoveries.
		added := f.Enqueue([]Candidate{{URL: "http://example.com/c", Depth: 1}})
		if added != 1 {
			t.Errorf("expected 1 admission while work is outstanding, got %d", added)
		}

		for range 2 {
			if _, ok := f.Next(ctx); !ok {
				t.Fatal("expected a queued entry")
			}
			f.Done()
		}
		if _, ok := f.Next(ctx); ok {
			t.Error("expected frontier to close after draining")
		}
	})

	t.Run("admission is counted before the entry is dequeuable", func(t *testing.T) {
		t.Parallel()

		// A page's discoveries must be accounted for the moment another
		// worker can dequeue them. Here the dequeuing goroutine races the
		// enqueuer: whenever it obtains an entry, releasing a different
		// one must not close the frontier underneath it.
		f := New(100, 5)
		f.Enqueue([]Candidate{{URL: "http://example.com/seed", Depth: 0}})

		ctx := context.Background()
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				e, ok := f.Next(ctx)
				if !ok {
					return
				}
				if e.Depth < 3 {
					f.Enqueue([]Candidate{
						{URL: e.URL + "/x", Depth: e.Depth + 1},
						{URL: e.URL + "/y", Depth: e.Depth + 1},
					})
				}
				f.Done()
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("frontier never closed")
		}

		// seed + two children per page over three levels
		if got := f.Admitted(); got != 15 {
			t.Errorf("admitted %d entries, want 15", got)
		}
	})
}

func TestNext(t *testing.T) {
	t.Parallel()

	t.Run("entries are single-flight", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		f.Enqueue([]Candidate{
			{URL: "http://example.com/a", Depth: 0},
			{URL: "http://example.com/b", Depth: 0},
		})

		ctx := context.Background()
		seen := make(map[string]bool)
		for range 2 {
			e, ok := f.Next(ctx)
			if !ok {
				t.Fatal("expected entry")
			}
			if seen[e.URL] {
				t.Errorf("entry %q dequeued twice", e.URL)
			}
			seen[e.URL] = true
		}
	})

	t.Run("returns false after close", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		f.Close()
		f.Close() // idempotent

		if _, ok := f.Next(context.Background()); ok {
			t.Error("expected no entry from closed frontier")
		}
	})

	t.Run("returns false on context cancellation", func(t *testing.T) {
		t.Parallel()

		f := New(10, 5)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		if _, ok := f.Next(ctx); ok {
			t.Error("expected no entry")
		}
		if time.Since(start) > time.Second {
			t.Error("Next did not respect context cancellation")
		}
	})
}

func TestConcurrentEnqueue(t *testing.T) {
	t.Parallel()

	const (
		workers       = 8
		perWorker     = 50
		maxPages      = 100
		distinctPages = 60 // some URLs are shared between workers
	)

	f := New(maxPages, 5)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				// Overlapping URL space across workers exercises the
				// atomicity of the seen-check plus admission.
				n := (w*perWorker + i) % distinctPages
				f.Enqueue([]Candidate{{
					URL:   "http://example.com/page-" + string(rune('0'+n%10)) + string(rune('0'+n/10)),
					Depth: 0,
				}})
			}
		}()
	}
	wg.Wait()

	if f.Admitted() > distinctPages {
		t.Errorf("admitted %d entries for %d distinct URLs", f.Admitted(), distinctPages)
	}

	// Drain and verify uniqueness end to end.
	f.Close()
	seen := make(map[string]bool)
	ctx := context.Background()
	for {
		e, ok := f.Next(ctx)
		if !ok {
			break
		}
		if seen[e.URL] {
			t.Errorf("duplicate entry %q", e.URL)
		}
		seen[e.URL] = true
	}
	if len(seen) != f.Admitted() {
		t.Errorf("drained %d entries, admitted %d", len(seen), f.Admitted())
	}
}
