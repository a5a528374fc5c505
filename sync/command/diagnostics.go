package command

import (
	"github.com/fjl/memsize"

	"github.com/WeiqiJust/NDN-Repo/sync/engine"
)

// memsizeReport scans d's reachable bookkeeping structures and renders
// a human-readable footprint report, for a check command's diagnostic
// reply payload.
func memsizeReport(d engine.Diagnostics) string {
	report := memsize.Scan([]interface{}{d})
	return report.Report()
}
