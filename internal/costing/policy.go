package costing

// UpdatePolicy tells a document service whether to recompute the cost
// cache per mutation. Bulk importers pass DeferRecompute and call
// Engine.RecomputeForProducts once for the full affected-product set after
// the load; everything else uses RecomputeEachMutation.
//
// The policy is an explicit parameter on the write paths rather than
// ambient state, so one request's bulk load can never suppress another
// request's recompute.
type UpdatePolicy string

const (
	RecomputeEachMutation UpdatePolicy = "recompute_each_mutation"
	DeferRecompute        UpdatePolicy = "defer_recompute"
)

// Defer reports whether per-mutation recomputes should be skipped.
func (p UpdatePolicy) Defer() bool {
	return p == DeferRecompute
}
