package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// frameBacklog bounds how many frame-size signals can queue between the
// camera process and the vision task before signals are dropped.
const frameBacklog = 8

// WithLogger sets the logger for the camera.
func WithLogger(logger *slog.Logger) func(c *Camera) {
	return func(c *Camera) {
		c.logger = logger.With(slog.String("camera", c.command))
	}
}

// Camera runs an external capture+encode process and reports the size of
// each encoded frame the process prints to stdout, one decimal size per
// line. The process is treated as a black box: if it dies or prints
// garbage, the vision task simply sees no frames.
type Camera struct {
	command string
	args    []string

	frames    chan int
	isRunning atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	logger *slog.Logger
}

// NewCamera creates a camera around the given capture command with a
// discard logger.
func NewCamera(command string, args []string, options ...func(c *Camera)) *Camera {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	c := Camera{
		command: command,
		args:    args,
		frames:  make(chan int, frameBacklog),
		logger:  logger,
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// Start launches the capture process and begins draining its output.
func (c *Camera) Start(ctx context.Context) error {
	if c.isRunning.Load() {
		return fmt.Errorf("camera is already running")
	}

	c.isRunning.Store(true)

	ctx, c.cancel = context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, c.command, c.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.isRunning.Store(false)
		return fmt.Errorf("error creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		c.isRunning.Store(false)
		return fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		c.isRunning.Store(false)
		return fmt.Errorf("error starting capture process: %w", err)
	}

	c.logger.Info("capture process started")

	c.wg.Add(3)
	go c.handleStdout(stdout)
	go c.handleStderr(stderr)
	go c.handleCmdWait(ctx, cmd)

	return nil
}

// TryCapture returns the size of the next encoded frame, if one has
// arrived, without blocking.
func (c *Camera) TryCapture() (int, bool) {
	select {
	case size := <-c.frames:
		return size, true
	default:
		return 0, false
	}
}

// Stop terminates the capture process and waits for the pipe readers to
// finish.
func (c *Camera) Stop() {
	if !c.isRunning.Load() {
		return // already stopped
	}

	c.cancel()
	c.wg.Wait()
	c.isRunning.Store(false)
}

// handleStdout parses frame-size lines and queues them for the vision
// task, dropping signals the task is too far behind to consume.
func (c *Camera) handleStdout(stdout io.Reader) {
	defer c.wg.Done()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		size, err := strconv.Atoi(line)
		if err != nil {
			c.logger.Warn(fmt.Sprintf("unparsable frame size: %s", err.Error()), slog.String("line", line))
			continue
		}

		select {
		case c.frames <- size:
		default: // vision task is behind, drop the signal
		}
	}
}

// handleStderr logs whatever the capture process complains about.
func (c *Camera) handleStderr(stderr io.Reader) {
	defer c.wg.Done()

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.logger.Warn(fmt.Sprintf("%s >> %s", c.command, line))
	}
}

// handleCmdWait reaps the capture process. A non-zero exit is degraded
// data, not a harness failure.
func (c *Camera) handleCmdWait(ctx context.Context, cmd *exec.Cmd) {
	defer c.wg.Done()

	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		c.logger.Warn(fmt.Sprintf("capture process exited: %s", err.Error()))
	}
}
