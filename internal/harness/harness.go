// Package harness runs the five concurrent tasks of the scheduling
// experiment: a periodic flight controller, a best-effort vision load, a
// mid-priority command ingester, a sporadic emergency failsafe and a
// diagnostics monitor. Each task owns one OS thread with its own
// fixed-priority scheduling assignment; preemption between them is left
// entirely to the host kernel, which is the behavior under test.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/capture"
	"github.com/roman-kulish/drone-rt-profiler/internal/drone"
	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
	"github.com/roman-kulish/drone-rt-profiler/internal/sched"
	"github.com/roman-kulish/drone-rt-profiler/internal/telemetry"
	"github.com/roman-kulish/drone-rt-profiler/internal/transport"
)

const (
	DefaultFlightPeriod    = 10 * time.Millisecond
	DefaultVisionIdle      = 100 * time.Microsecond
	DefaultCommandIdle     = 10 * time.Millisecond
	DefaultMonitorInterval = time.Second
	DefaultGraceDelay      = time.Second

	// SCHED_FIFO priorities: the failsafe outranks everything so its wake
	// latency stays bounded no matter how loaded flight and vision are.
	DefaultEmergencyPriority = 90
	DefaultFlightPriority    = 50
	DefaultCommandPriority   = 30
	DefaultVisionPriority    = 10
)

// Config carries the per-task scheduling assignments and loop timing.
type Config struct {
	FlightPeriod    time.Duration
	VisionIdle      time.Duration
	CommandIdle     time.Duration
	MonitorInterval time.Duration
	GraceDelay      time.Duration

	Flight    sched.Assignment
	Vision    sched.Assignment
	Command   sched.Assignment
	Emergency sched.Assignment
}

// DefaultConfig returns the configuration the harness was profiled
// against: 100 Hz flight loop, 1 s monitor interval, no CPU pinning.
func DefaultConfig() Config {
	return Config{
		FlightPeriod:    DefaultFlightPeriod,
		VisionIdle:      DefaultVisionIdle,
		CommandIdle:     DefaultCommandIdle,
		MonitorInterval: DefaultMonitorInterval,
		GraceDelay:      DefaultGraceDelay,
		Flight:          sched.Assignment{Priority: DefaultFlightPriority, Core: sched.NoCore},
		Vision:          sched.Assignment{Priority: DefaultVisionPriority, Core: sched.NoCore},
		Command:         sched.Assignment{Priority: DefaultCommandPriority, Core: sched.NoCore},
		Emergency:       sched.Assignment{Priority: DefaultEmergencyPriority, Core: sched.NoCore},
	}
}

func (c *Config) applyDefaults() {
	if c.FlightPeriod <= 0 {
		c.FlightPeriod = DefaultFlightPeriod
	}
	if c.VisionIdle <= 0 {
		c.VisionIdle = DefaultVisionIdle
	}
	if c.CommandIdle <= 0 {
		c.CommandIdle = DefaultCommandIdle
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = DefaultMonitorInterval
	}
	if c.GraceDelay <= 0 {
		c.GraceDelay = DefaultGraceDelay
	}
}

// Option configures a Harness.
type Option func(h *Harness)

// WithLogger sets the harness logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithRecorder enables timeline profiling through the given recorder.
func WithRecorder(rec *profile.Recorder) Option {
	return func(h *Harness) {
		h.rec = rec
	}
}

// WithCapture sets the camera collaborator for the vision task. Without
// one the task runs on synthetic frames only.
func WithCapture(p capture.Provider) Option {
	return func(h *Harness) {
		h.camera = p
	}
}

// WithScheduler replaces the host kernel scheduling interface, letting
// tests run the full task set without privilege.
func WithScheduler(s sched.Interface) Option {
	return func(h *Harness) {
		h.sched = s
	}
}

// WithOutput redirects the monitor's status table.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) {
		h.out = w
	}
}

// Harness owns the shared registries and the five task loops.
type Harness struct {
	config Config
	state  *drone.State
	stats  *telemetry.Registry
	link   transport.Link
	camera capture.Provider
	sched  sched.Interface
	rec    *profile.Recorder
	out    io.Writer
	logger *slog.Logger

	// flightWork is the control-law stand-in workload run inside every
	// flight cycle; tests replace it to inject overruns.
	flightWork func()

	stop context.CancelFunc
	wg   sync.WaitGroup
}

// New creates a harness around the shared state, stats registry and
// command link. By default it talks to the real host scheduler, prints to
// stdout and keeps no timeline.
func New(state *drone.State, stats *telemetry.Registry, link transport.Link, config Config, options ...Option) *Harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger
	config.applyDefaults()

	h := Harness{
		config:     config,
		state:      state,
		stats:      stats,
		link:       link,
		sched:      sched.New(),
		out:        os.Stdout,
		logger:     logger,
		flightWork: busyWork,
	}

	for _, option := range options {
		option(&h)
	}

	return &h
}

// Run spawns the five tasks behind a start gate and blocks until the
// failsafe, or an external termination signal routed through the same
// path, stops the run.
func (h *Harness) Run(ctx context.Context) error {
	ctx, h.stop = context.WithCancel(ctx)
	defer h.stop()

	tasks := []func(context.Context){
		h.runEmergency,
		h.runFlight,
		h.runCommand,
		h.runVision,
		h.runMonitor,
	}

	startGate := make(chan struct{})
	for _, run := range tasks {
		h.wg.Add(1)
		go func(run func(context.Context)) {
			defer h.wg.Done()
			<-startGate
			run(ctx)
		}(run)
	}
	close(startGate) // release the task goroutines

	// An external termination signal follows the same failsafe path as a
	// PANIC command: raise the emergency and let the failsafe task run
	// the shutdown sequence.
	go func() {
		<-ctx.Done()
		h.state.RaiseEmergency()
	}()

	h.wg.Wait()
	return nil
}

// applyAssignment pins the calling goroutine to its OS thread and requests
// the task's scheduling parameters. A privilege failure is a warning; the
// task continues under default scheduling.
func (h *Harness) applyAssignment(task string, a sched.Assignment) {
	runtime.LockOSThread()

	if err := h.sched.Apply(a); err != nil {
		h.logger.Warn(fmt.Sprintf("%s task running with default scheduling: %s", task, err.Error()),
			slog.Int("priority", a.Priority))
		return
	}

	h.logger.Info(fmt.Sprintf("%s task scheduling applied", task),
		slog.Int("priority", a.Priority), slog.Int("core", a.Core))
}

// preemptions samples the calling thread's involuntary context switch
// count. Platforms without the capability read as zero.
func (h *Harness) preemptions() uint64 {
	n, err := h.sched.Preemptions()
	if err != nil {
		return 0
	}
	return n
}

// record forwards a timeline event when profiling is enabled.
func (h *Harness) record(task, kind string, preempts uint64) {
	if h.rec != nil {
		h.rec.Record(task, kind, preempts)
	}
}

// preemptTracker notices increases in a task's involuntary context switch
// count between samples.
type preemptTracker struct {
	last uint64
}

func (t *preemptTracker) bumped(now uint64) bool {
	if now > t.last {
		t.last = now
		return true
	}
	return false
}

// sleepUntil blocks until the absolute deadline or cancellation, whichever
// comes first. Sleeping to an absolute point rather than for a relative
// duration keeps periodic loops from accumulating drift.
func sleepUntil(ctx context.Context, deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	sleepFor(ctx, d)
}

func sleepFor(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
