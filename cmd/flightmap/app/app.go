package app

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
)

// Run renders the recorded timeline of one profiling session into a PNG:
// one lane per task, one colored mark per event, deadline misses
// highlighted across the lane.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := profile.NewStore(config.DBPath)
	defer store.Close()

	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	events, err := store.Events(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("session %d has no timeline events", config.SessionID)
	}

	logger.Info("loaded session timeline",
		slog.Int64("session", session.ID),
		slog.String("mode", session.Mode),
		slog.Int("events", len(events)),
		slog.String("start", events[0].Timestamp.Local().Format(time.DateTime)),
		slog.String("end", events[len(events)-1].Timestamp.Local().Format(time.DateTime)))

	renderer, err := NewTimelineRenderer(RenderConfig{
		Width:    config.Width,
		FontPath: config.FontPath,
	})
	if err != nil {
		return fmt.Errorf("creating timeline renderer: %w", err)
	}

	img, err := renderer.Render(session, events)
	if err != nil {
		return fmt.Errorf("rendering timeline: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	logger.Info("writing timeline image", slog.String("destination", config.OutputFile))
	return png.Encode(out, img)
}
