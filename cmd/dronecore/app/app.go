package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/capture"
	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/harness"
	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
	"github.com/roman-kulish/drone-rt-profiler/internal/sched"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
	"github.com/roman-kulish/drone-rt-profiler/internal/transport"
)

// Run wires the shared registries, the collaborators and the harness
// together and blocks until the run stops. The process exits cleanly
// after the failsafe shutdown sequence or an external termination signal.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	state := drone.NewState()
	stats := telemetry.NewRegistry()

	// A broken command link means no PANIC path: refuse to start rather
	// than fly uncommandable.
	link, err := transport.ListenUDP(config.Command.Port)
	if err != nil {
		return fmt.Errorf("failed to open command link: %w", err)
	}
	defer link.Close()

	logger.Info("command link listening", slog.String("addr", link.Addr().String()))

	options := []harness.Option{harness.WithLogger(logger)}

	if config.Profiling.Enabled {
		store, sessionID, err := createStore(ctx, config)
		if err != nil {
			return fmt.Errorf("failed to create profiling store: %w", err)
		}
		defer store.Close()

		rec, err := profile.NewRecorder(store, sessionID,
			profile.WithLogger(logger),
			profile.WithFlushCount(config.Profiling.MaxBatchSize))
		if err != nil {
			return fmt.Errorf("failed to create timeline recorder: %w", err)
		}
		defer rec.Close()

		logger.Info("timeline recording enabled", slog.Int64("session", sessionID))
		options = append(options, harness.WithRecorder(rec))
	}

	if config.Vision.CameraCommand != "" {
		camera := capture.NewCamera(config.Vision.CameraCommand, config.Vision.ExpandedArgs(), capture.WithLogger(logger))
		if err := camera.Start(ctx); err != nil {
			logger.Warn(fmt.Sprintf("camera unavailable, vision task will run synthetic load: %s", err.Error()))
		} else {
			defer camera.Stop()
			options = append(options, harness.WithCapture(camera))
		}
	}

	h := harness.New(state, stats, link, harnessConfig(config), options...)
	return h.Run(ctx)
}

func harnessConfig(config *Config) harness.Config {
	core := config.Scheduling.Core

	return harness.Config{
		FlightPeriod:    time.Duration(config.Flight.Period),
		VisionIdle:      time.Duration(config.Vision.Idle),
		CommandIdle:     time.Duration(config.Command.Idle),
		MonitorInterval: time.Duration(config.Monitor.Interval),
		GraceDelay:      time.Duration(config.Settings.GraceDelay),
		Flight:          sched.Assignment{Priority: config.Scheduling.FlightPriority, Core: core},
		Vision:          sched.Assignment{Priority: config.Scheduling.VisionPriority, Core: core},
		Command:         sched.Assignment{Priority: config.Scheduling.CommandPriority, Core: core},
		Emergency:       sched.Assignment{Priority: config.Scheduling.EmergencyPriority, Core: core},
	}
}

func createStore(ctx context.Context, config *Config) (*profile.Store, int64, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dbDir := filepath.Join(wd, config.Profiling.DataDirectory)
	stat, err := os.Stat(dbDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("profiling directory '%s' does not exist: %w", dbDir, err)
		}
		return nil, 0, err
	}
	if !stat.IsDir() {
		return nil, 0, fmt.Errorf("invalid profiling directory '%s'", dbDir)
	}

	dbPath := filepath.Join(dbDir, fmt.Sprintf("flight_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	store := profile.NewStore(dbPath)

	mode := "multi-core"
	if config.Scheduling.Core != sched.NoCore {
		mode = "single-core"
	}

	sessionID, err := store.CreateSession(ctx, mode, config)
	if err != nil {
		_ = store.Close()
		return nil, 0, fmt.Errorf("creating session: %w", err)
	}

	return store, sessionID, nil
}
