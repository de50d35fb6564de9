package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
)

const monitorHeader = `
--------------------------------------------------------------------------------------
| FLIGHT                    | COMMAND        | VISION         | STATE                |
| Avg(us) | Miss | Preempts | Pkt/s | Preempt| FPS  | Preempt | Alt(m) | Thr | Emerg |
--------------------------------------------------------------------------------------`

// runMonitor is the diagnostics task. It stays at default priority, takes
// the two registry locks one at a time and renders a status line per
// interval. Reading resets the rate counters, which is what turns raw
// packet and frame totals into per-second figures.
func (h *Harness) runMonitor(ctx context.Context) {
	// No scheduling assignment on purpose: the monitor observes the
	// experiment, it must not compete with it.

	fmt.Fprintln(h.out, monitorHeader)

	ticker := time.NewTicker(h.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.printSummary()
			return
		case <-ticker.C:
			h.printStatus()
		}
	}
}

func (h *Harness) printStatus() {
	stats := h.stats.Snapshot(true)
	att, _ := h.state.Snapshot() // second lock taken after the first is released

	fmt.Fprintf(h.out, "| %7d | %4d | %8d | %5d | %6d | %4d | %7d | %6.2f | %3.0f | %-5s |\n",
		stats.FlightExecAvgMicros,
		stats.FlightDeadlineMisses,
		stats.FlightPreempts,
		stats.CommandPackets,
		stats.CommandPreempts,
		stats.VisionFrames,
		stats.VisionPreempts,
		att.Altitude,
		att.Throttle,
		stats.Emergency,
	)

	if h.rec != nil {
		h.rec.Snapshot(profile.Snapshot{
			Timestamp: time.Now(),
			Stats:     stats,
			Attitude:  att,
		})
	}
}

// printSummary renders the final counters once the run has stopped.
func (h *Harness) printSummary() {
	stats := h.stats.Snapshot(false)

	fmt.Fprintf(h.out, "\n=== SHUTDOWN COMPLETE ===\n")
	fmt.Fprintf(h.out, "Flight loops:     %s\n", humanize.Comma(int64(stats.FlightLoops)))
	fmt.Fprintf(h.out, "Deadline misses:  %s\n", humanize.Comma(int64(stats.FlightDeadlineMisses)))
	fmt.Fprintf(h.out, "Command packets:  %s\n", humanize.Comma(int64(stats.CommandPacketsTotal)))
	fmt.Fprintf(h.out, "Vision frames:    %s (%s)\n", humanize.Comma(int64(stats.VisionFramesTotal)), humanize.Bytes(stats.VisionBytesTotal))
	fmt.Fprintf(h.out, "Emergency status: %s\n", stats.Emergency)
}
