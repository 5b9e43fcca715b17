// Package frontier manages the deduplicating, bounded queue of URLs
// awaiting fetch during one crawl.
//
// # Invariants
//
// The frontier is the single synchronization point for the crawl's
// cross-worker invariants:
//   - a normalized URL is admitted at most once per crawl, whether it
//     later succeeds, fails, or is still pending
//   - entries beyond the depth ceiling are silently dropped
//   - no more than maxPages entries are ever admitted, bounding both
//     memory and the page budget under heavy link branching
//
// Design decision: We back the queue with a buffered channel of capacity
// maxPages rather than a mutex-guarded slice because:
//  1. The admission ceiling makes the queue size bound known up front
//  2. Channel receive gives single-flight dequeue semantics for free
//  3. Workers can select on the channel and context cancellation together
//
// The seen-set and the admission and pending counters are guarded by a
// mutex so that the uniqueness check, the counting, and the enqueue are
// atomic with respect to concurrent enqueuers.
//
// The frontier also decides crawl completion: it counts queued plus
// in-flight entries, workers release each dequeued entry with Done once
// the page is fully handled, and the frontier closes itself when the
// count reaches zero. See Done for the rationale.
package frontier
