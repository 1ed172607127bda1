// Package feed assembles paginated batches of media for a viewer.
//
// The Assembler ranks candidates along two paths. The trending path orders
// items by views then recency over an over-fetched pool and shuffles it. The
// personalized path merges items matching the viewer's recommendation tags
// with recent items from followed profiles. The Loader sits on top: it keeps
// the per-session state (shown IDs, cycle counter, seen ads) explicit, forces
// a trending batch on a fixed cadence, splices in one sponsored item and
// emits view events without waiting on them.
package feed
