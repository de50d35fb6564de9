package harness

import (
	"context"
	"math/rand"

	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
)

// Synthetic frame sizes mimic a camera's encoded output when no real
// capture collaborator is wired in.
const (
	synthFrameBase   = 1500
	synthFrameJitter = 500
	synthWorkBytes   = 64 << 10
)

// runVision is the aperiodic best-effort load. It has no deadline by
// design: the whole point of the task is to be starved and preempted by
// the higher-priority loops, with its throughput readout showing how much
// CPU was left over.
func (h *Harness) runVision(ctx context.Context) {
	h.applyAssignment(profile.TaskVision, h.config.Vision)

	scratch := make([]byte, synthWorkBytes)
	var tracker preemptTracker

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		size, ok := h.tryCapture()
		if !ok {
			// No frame from the collaborator: burn a comparable amount
			// of CPU so the thread load stays realistic.
			size = syntheticFrame(scratch)
		}

		preempts := h.preemptions()
		if tracker.bumped(preempts) {
			h.record(profile.TaskVision, profile.EventPreempted, preempts)
		}

		h.stats.RecordFrame(uint64(size), preempts)
		h.record(profile.TaskVision, profile.EventFrame, preempts)

		sleepFor(ctx, h.config.VisionIdle)
	}
}

func (h *Harness) tryCapture() (int, bool) {
	if h.camera == nil {
		return 0, false
	}
	return h.camera.TryCapture()
}

// syntheticFrame stands in for the encode cost of a real frame: a pass
// over the scratch buffer and a plausible encoded size.
func syntheticFrame(scratch []byte) int {
	var acc byte
	for i := range scratch {
		scratch[i] ^= acc
		acc += byte(i)
	}
	workSink = float64(acc)

	return synthFrameBase + rand.Intn(synthFrameJitter)
}
