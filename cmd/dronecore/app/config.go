package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/drone-rt-profiler/internal/harness"
	"github.com/roman-kulish/drone-rt-profiler/internal/sched"
)

const (
	defaultCommandPort  = 8080
	defaultCameraWidth  = 640
	defaultCameraHeight = 480
	defaultFramerate    = 30
	defaultDataDir      = "data"
	defaultBatchSize    = 100
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "10ms" or "1s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config represents the main application configuration
type Config struct {
	Settings   Settings         `yaml:"settings"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Flight     FlightConfig     `yaml:"flight"`
	Command    CommandConfig    `yaml:"command"`
	Vision     VisionConfig     `yaml:"vision"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Profiling  ProfilingConfig  `yaml:"profiling"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel   string   `yaml:"logLevel"`
	GraceDelay Duration `yaml:"graceDelay"`
}

// SchedulingConfig assigns SCHED_FIFO priorities and an optional shared
// CPU pin to the real-time tasks. Core -1 leaves placement to the kernel;
// pinning everything to one core is the single-core contention experiment.
type SchedulingConfig struct {
	Core              int `yaml:"core"`
	FlightPriority    int `yaml:"flightPriority"`
	CommandPriority   int `yaml:"commandPriority"`
	VisionPriority    int `yaml:"visionPriority"`
	EmergencyPriority int `yaml:"emergencyPriority"`
}

// FlightConfig represents flight control loop settings
type FlightConfig struct {
	Period Duration `yaml:"period"`
}

// CommandConfig represents ground-station command link settings
type CommandConfig struct {
	Port int      `yaml:"port"`
	Idle Duration `yaml:"idle"`
}

// VisionConfig represents the external camera collaborator settings.
// CameraArgs may contain {width}, {height} and {framerate} placeholders.
// An empty CameraCommand runs the vision task on synthetic frames only.
type VisionConfig struct {
	CameraCommand string   `yaml:"cameraCommand"`
	CameraArgs    []string `yaml:"cameraArgs"`
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Framerate     int      `yaml:"framerate"`
	Idle          Duration `yaml:"idle"`
}

// MonitorConfig represents diagnostics settings
type MonitorConfig struct {
	Interval Duration `yaml:"interval"`
}

// ProfilingConfig represents the timeline recorder settings
type ProfilingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// NewConfig returns the defaults the harness was profiled with.
func NewConfig() *Config {
	return &Config{
		Settings: Settings{
			LogLevel:   "info",
			GraceDelay: Duration(harness.DefaultGraceDelay),
		},
		Scheduling: SchedulingConfig{
			Core:              sched.NoCore,
			FlightPriority:    harness.DefaultFlightPriority,
			CommandPriority:   harness.DefaultCommandPriority,
			VisionPriority:    harness.DefaultVisionPriority,
			EmergencyPriority: harness.DefaultEmergencyPriority,
		},
		Flight: FlightConfig{
			Period: Duration(harness.DefaultFlightPeriod),
		},
		Command: CommandConfig{
			Port: defaultCommandPort,
			Idle: Duration(harness.DefaultCommandIdle),
		},
		Vision: VisionConfig{
			Width:     defaultCameraWidth,
			Height:    defaultCameraHeight,
			Framerate: defaultFramerate,
			Idle:      Duration(harness.DefaultVisionIdle),
		},
		Monitor: MonitorConfig{
			Interval: Duration(harness.DefaultMonitorInterval),
		},
		Profiling: ProfilingConfig{
			DataDirectory: defaultDataDir,
			MaxBatchSize:  defaultBatchSize,
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	config := NewConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Command.Port <= 0 || c.Command.Port > 65535 {
		return fmt.Errorf("invalid command port: %d", c.Command.Port)
	}
	if c.Flight.Period <= 0 {
		return fmt.Errorf("invalid flight period: %s", time.Duration(c.Flight.Period))
	}

	for name, prio := range map[string]int{
		"flight":    c.Scheduling.FlightPriority,
		"command":   c.Scheduling.CommandPriority,
		"vision":    c.Scheduling.VisionPriority,
		"emergency": c.Scheduling.EmergencyPriority,
	} {
		if prio < 0 || prio > 99 {
			return fmt.Errorf("invalid %s priority: %d (SCHED_FIFO allows 0-99)", name, prio)
		}
	}
	return nil
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExpandedArgs returns the camera arguments with resolution and framerate
// placeholders substituted.
func (v VisionConfig) ExpandedArgs() []string {
	r := strings.NewReplacer(
		"{width}", fmt.Sprintf("%d", v.Width),
		"{height}", fmt.Sprintf("%d", v.Height),
		"{framerate}", fmt.Sprintf("%d", v.Framerate),
	)

	args := make([]string, len(v.CameraArgs))
	for i, arg := range v.CameraArgs {
		args[i] = r.Replace(arg)
	}
	return args
}
