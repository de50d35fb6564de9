package harness

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/capture"
)

func TestRunVision_SyntheticFrames(t *testing.T) {
	var out bytes.Buffer
	h, _, stats, _, _ := newTestHarness(t, &out)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	h.runVision(ctx)

	final := stats.Snapshot(false)
	if final.VisionFramesTotal == 0 {
		t.Fatal("Vision task produced no synthetic frames")
	}
	if final.VisionBytesTotal < final.VisionFramesTotal*synthFrameBase {
		t.Errorf("Frame bytes below the synthetic minimum: %d frames, %d bytes",
			final.VisionFramesTotal, final.VisionBytesTotal)
	}
}

func TestRunVision_PrefersCaptureProvider(t *testing.T) {
	var out bytes.Buffer
	h, _, stats, _, _ := newTestHarness(t, &out)
	h.camera = capture.ProviderFunc(func() (int, bool) {
		return 4096, true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	h.runVision(ctx)

	final := stats.Snapshot(false)
	if final.VisionFramesTotal == 0 {
		t.Fatal("Vision task produced no frames")
	}
	if final.VisionBytesTotal != final.VisionFramesTotal*4096 {
		t.Errorf("Every frame should come from the provider: %d frames, %d bytes",
			final.VisionFramesTotal, final.VisionBytesTotal)
	}
}

func TestSyntheticFrame_SizeRange(t *testing.T) {
	scratch := make([]byte, 1024)

	for i := 0; i < 100; i++ {
		size := syntheticFrame(scratch)
		if size < synthFrameBase || size >= synthFrameBase+synthFrameJitter {
			t.Fatalf("Frame size %d outside [%d, %d)", size, synthFrameBase, synthFrameBase+synthFrameJitter)
		}
	}
}
