package harness

import (
	"bytes"
	"testing"

	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
)

func TestApplyCommand_Mapping(t *testing.T) {
	testCases := []struct {
		name   string
		tokens []string
		want   drone.Attitude
	}{
		{"throttle up", []string{"UP", "UP"}, drone.Attitude{Throttle: 20}},
		{"throttle capped at 100", []string{
			"UP", "UP", "UP", "UP", "UP", "UP", "UP", "UP", "UP", "UP", "UP",
		}, drone.Attitude{Throttle: 100}},
		{"throttle floor at 0", []string{"DOWN", "DOWN"}, drone.Attitude{}},
		{"up then down", []string{"UP", "UP", "UP", "DOWN"}, drone.Attitude{Throttle: 20}},
		{"pitch forward", []string{"FRONT"}, drone.Attitude{Pitch: 15}},
		{"pitch back", []string{"BACK"}, drone.Attitude{Pitch: -15}},
		{"roll left", []string{"LEFT"}, drone.Attitude{Roll: -15}},
		{"roll right", []string{"RIGHT"}, drone.Attitude{Roll: 15}},
		{"stop levels out", []string{"FRONT", "RIGHT", "STOP"}, drone.Attitude{}},
		{"unknown token ignored", []string{"UP", "up", "HOVER", ""}, drone.Attitude{Throttle: 10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			h, state, _, _, _ := newTestHarness(t, &out)

			for _, token := range tc.tokens {
				h.applyCommand(token, 0)
			}

			att, emergency := state.Snapshot()
			if emergency {
				t.Error("Movement commands must not raise the emergency")
			}
			if att != tc.want {
				t.Errorf("Expected attitude %+v, got %+v", tc.want, att)
			}
		})
	}
}

func TestApplyCommand_Panic(t *testing.T) {
	var out bytes.Buffer
	h, state, stats, _, _ := newTestHarness(t, &out)

	h.applyCommand("PANIC", 0)

	if _, emergency := state.Snapshot(); !emergency {
		t.Error("PANIC should raise the emergency flag")
	}
	if got := stats.Snapshot(false).Emergency; got != telemetry.StatusTriggered {
		t.Errorf("Expected emergency status TRIGGERED, got %s", got)
	}
}
