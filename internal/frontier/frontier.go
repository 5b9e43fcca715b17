package frontier

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Entry is one unit of crawl work. Entries are owned exclusively by the
// frontier until dequeued; uniqueness is enforced on the normalized URL
// across the lifetime of one crawl.
type Entry struct {
	// URL is the normalized URL to fetch.
	URL string

	// Depth is the link distance from the seed (0 for the seed).
	Depth int

	// Parent is the normalized URL of the page that discovered this one.
	// Empty for the seed.
	Parent string
}

// Candidate is a discovered link not yet committed to the frontier.
// Deduplication and limit enforcement happen at Enqueue.
type Candidate struct {
	// URL is the absolute URL as discovered (normalization happens here).
	URL string

	// Depth is the candidate's distance from the seed.
	Depth int

	// Parent is the URL of the discovering page.
	Parent string
}

// Frontier is a deduplicating, bounded work queue. One instance belongs
// to exactly one crawl run; instances are never shared across crawls.
type Frontier struct {
	// queue delivers entries to workers. Capacity equals maxPages, so a
	// successful admission never blocks.
	queue chan Entry

	// mu guards seen, admitted, pending, and closed so the uniqueness
	// check, the count updates, and entry publication are atomic.
	mu sync.Mutex

	// seen maps normalized URLs that were ever admitted or attempted.
	seen map[string]bool

	// admitted counts entries handed into the queue over the crawl's life.
	admitted int

	// pending counts queued plus in-flight entries: incremented on
	// admission, decremented by Done. Zero after the first admission
	// means the crawl is complete.
	pending int

	// closed marks the frontier as drained; admissions stop.
	closed bool

	// maxPages is the admission ceiling.
	maxPages int

	// maxDepth is the depth ceiling; deeper candidates are dropped.
	maxDepth int

	// closeOnce makes Close idempotent.
	closeOnce sync.Once
}

// New creates a frontier for one crawl with the given page and depth
// ceilings. maxPages must be positive (validated by the request).
func New(maxPages, maxDepth int) *Frontier {
	return &Frontier{
		queue:    make(chan Entry, maxPages),
		seen:     make(map[string]bool, maxPages),
		maxPages: maxPages,
		maxDepth: maxDepth,
	}
}

// Enqueue admits candidates that are new, within depth, and within the
// page budget. It returns the number actually added. Over-limit and
// duplicate candidates are dropped silently: heavy branching is normal,
// not an error. A closed frontier admits nothing.
//
// Each admission increments the pending count before the entry becomes
// dequeuable, so another worker finishing its page can never observe a
// zero count while an admitted entry is still unaccounted for.
func (f *Frontier) Enqueue(candidates []Candidate) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0
	}

	added := 0
	for _, c := range candidates {
		if c.Depth > f.maxDepth {
			continue
		}
		if f.admitted >= f.maxPages {
			break
		}

		normalized, err := Normalize(c.URL)
		if err != nil {
			continue
		}
		if f.seen[normalized] {
			continue
		}

		f.seen[normalized] = true
		f.admitted++
		f.pending++
		f.queue <- Entry{URL: normalized, Depth: c.Depth, Parent: c.Parent}
		added++
	}
	return added
}

// Done releases one dequeued entry after its page is fully handled,
// including any Enqueue of its discovered links. When the last
// outstanding entry is released the frontier closes itself and every
// worker blocked in Next returns.
//
// Design decision: The frontier owns the queued-plus-in-flight count
// rather than the coordinator because:
//  1. The count must change in the same critical section that makes an
//     entry dequeuable; a counter maintained outside the lock can be
//     decremented to zero by one worker while another worker's freshly
//     admitted entries are not yet counted
//  2. Completion is a queue property: zero means nothing is queued and
//     nothing is in flight, which only the queue can assert atomically
//  3. Workers get a single obligation - one Done per Next - instead of
//     arithmetic over admission counts
func (f *Frontier) Done() {
	f.mu.Lock()
	f.pending--
	finished := f.pending == 0
	f.mu.Unlock()

	if finished {
		f.Close()
	}
}

// Next blocks until an entry is available, the frontier is closed, or the
// context is cancelled. The boolean is false when no entry was obtained.
// No two calls ever return the same entry.
func (f *Frontier) Next(ctx context.Context) (Entry, bool) {
	select {
	case <-ctx.Done():
		return Entry{}, false
	case e, ok := <-f.queue:
		if !ok {
			return Entry{}, false
		}
		return e, true
	}
}

// Close marks the frontier as drained. Workers blocked in Next return,
// and later Enqueue calls admit nothing. Safe to call multiple times.
func (f *Frontier) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.queue)
	})
}

// Admitted returns how many entries have been admitted so far.
func (f *Frontier) Admitted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admitted
}

// Seen reports whether the normalized form of rawURL was ever admitted.
func (f *Frontier) Seen(rawURL string) bool {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[normalized]
}

// Normalize canonicalizes a URL for deduplication: lowercase scheme and
// host, fragment stripped, empty path rewritten to "/", query preserved.
// Non-absolute and non-http(s) URLs are rejected.
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}
