package engine

// Diagnostics is a point-in-time copy of engine-internal bookkeeping,
// safe to hand to a memsize scan or print in a check-command reply
// (spec.md §4.8) without racing the loop goroutine.
type Diagnostics struct {
	Pipelines      map[string]PipelineState
	PendingActions map[string]int // per-creator buffered out-of-order count
	RetryCounts    map[string]int
	PITSize        int
	LogSize        int
}

// Snapshot copies the engine's current bookkeeping for diagnostics.
func (e *Engine) Snapshot() (d Diagnostics) {
	e.submitAndWait(func() {
		d.Pipelines = make(map[string]PipelineState, len(e.pipelines))
		for k, v := range e.pipelines {
			d.Pipelines[k] = *v
		}
		d.PendingActions = make(map[string]int, len(e.pendingAct))
		for k, v := range e.pendingAct {
			d.PendingActions[k] = len(v)
		}
		d.RetryCounts = make(map[string]int, len(e.retryCounts))
		for k, v := range e.retryCounts {
			d.RetryCounts[k] = v
		}
		d.PITSize = e.pit.Len()
		d.LogSize = e.log.Len()
	})
	return d
}
