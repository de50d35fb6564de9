package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/roman-kulish/drone-rt-profiler/internal/profile"
)

const (
	dpi      = 120.0
	fontSize = 10.0

	laneHeight     = 48
	tickMarkHeight = 5

	defaultTopBorder    = 20
	defaultLeftBorder   = 100
	defaultBottomBorder = 50
	defaultRightBorder  = 20

	timeFormat     = "15:04:05"
	datetimeFormat = time.DateTime
)

// Task lanes in priority order, failsafe on top.
var lanes = []string{
	profile.TaskEmergency,
	profile.TaskFlight,
	profile.TaskCommand,
	profile.TaskVision,
	profile.TaskMonitor,
}

var kindColors = map[string]color.RGBA{
	profile.EventStart:        {R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	profile.EventEnd:          {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	profile.EventPreempted:    {R: 0xff, G: 0x8c, B: 0x00, A: 0xff},
	profile.EventDeadlineMiss: {R: 0xd0, G: 0x00, B: 0x00, A: 0xff},
	profile.EventPacket:       {R: 0x00, G: 0x50, B: 0xd0, A: 0xff},
	profile.EventFrame:        {R: 0x00, G: 0xa0, B: 0x40, A: 0xff},
	profile.EventEmergency:    {R: 0xc0, G: 0x00, B: 0xc0, A: 0xff},
}

// RenderConfig holds the timeline visualization options.
type RenderConfig struct {
	Width    int    // timeline area width in pixels
	FontPath string // TrueType font for labels; empty disables annotations
}

// TimelineRenderer draws a recorded session as one horizontal lane per
// task with colored event marks.
type TimelineRenderer struct {
	config RenderConfig
}

// NewTimelineRenderer creates a timeline renderer with the given
// configuration.
func NewTimelineRenderer(config RenderConfig) (*TimelineRenderer, error) {
	if config.Width <= 0 {
		config.Width = 1200
	}
	return &TimelineRenderer{config: config}, nil
}

// Render creates an image of the session timeline with annotations.
func (r *TimelineRenderer) Render(session *profile.Session, events []profile.Event) (*image.RGBA, error) {
	height := laneHeight * len(lanes)
	fullWidth := r.config.Width + defaultLeftBorder + defaultRightBorder
	fullHeight := height + defaultTopBorder + defaultBottomBorder
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	start := events[0].Timestamp
	end := events[len(events)-1].Timestamp
	span := end.Sub(start)
	if span <= 0 {
		span = time.Second
	}

	laneIndex := make(map[string]int, len(lanes))
	for i, task := range lanes {
		laneIndex[task] = i
		r.drawLaneSeparator(img, i)
	}

	for _, ev := range events {
		lane, ok := laneIndex[ev.Task]
		if !ok {
			continue
		}

		xRatio := float64(ev.Timestamp.Sub(start)) / float64(span)
		x := defaultLeftBorder + int(xRatio*float64(r.config.Width-1))

		c, ok := kindColors[ev.Kind]
		if !ok {
			c = kindColors[profile.EventStart]
		}

		// Deadline misses and emergencies get a full-height mark so they
		// stand out among the per-cycle ticks.
		markHeight := laneHeight / 3
		if ev.Kind == profile.EventDeadlineMiss || ev.Kind == profile.EventEmergency {
			markHeight = laneHeight - 8
		}

		r.drawMark(img, x, lane, markHeight, c)
	}

	if r.config.FontPath != "" {
		ann, err := newAnnotator(r.config.FontPath)
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, r.config.Width, session, start, end); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	return img, nil
}

func (r *TimelineRenderer) drawLaneSeparator(img *image.RGBA, lane int) {
	y := defaultTopBorder + lane*laneHeight
	for x := defaultLeftBorder; x < defaultLeftBorder+r.config.Width; x++ {
		img.Set(x, y, color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff})
	}
}

func (r *TimelineRenderer) drawMark(img *image.RGBA, x, lane, markHeight int, c color.RGBA) {
	bottom := defaultTopBorder + (lane+1)*laneHeight - 4
	for dy := 0; dy < markHeight; dy++ {
		img.Set(x, bottom-dy, c)
		img.Set(x+1, bottom-dy, c)
	}
}

// Internal annotator implementation

type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(fontPath string) (*annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, width int, session *profile.Session, start, end time.Time) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawLaneLabels(img); err != nil {
		return fmt.Errorf("drawing lane labels: %w", err)
	}
	if err := a.drawTimeScale(img, width, start, end); err != nil {
		return fmt.Errorf("drawing time scale: %w", err)
	}
	if err := a.drawInfoBar(img, session, start, end); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}
	return nil
}

func (a *annotator) drawLaneLabels(img *image.RGBA) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for i, task := range lanes {
		textY := defaultTopBorder + i*laneHeight + (laneHeight+fontHeight)/2 - metrics.Descent.Round()
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(task, pt); err != nil {
			return fmt.Errorf("drawing lane label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, width int, start, end time.Time) error {
	span := end.Sub(start)
	step := niceTimeStep(span)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	axisY := img.Bounds().Max.Y - defaultBottomBorder
	textY := axisY + tickMarkHeight + fontHeight

	for t := start.Truncate(step); !t.After(end); t = t.Add(step) {
		if t.Before(start) {
			continue
		}

		xRatio := float64(t.Sub(start)) / float64(span)
		x := defaultLeftBorder + int(xRatio*float64(width-1))

		for y := axisY; y < axisY+tickMarkHeight; y++ {
			img.Set(x, y, color.Black)
		}

		label := t.Local().Format(timeFormat)
		labelWidth := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(labelWidth.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, session *profile.Session, start, end time.Time) error {
	info := fmt.Sprintf("Session %d (%s); Time: %s - %s",
		session.ID,
		session.Mode,
		start.Local().Format(datetimeFormat),
		end.Local().Format(datetimeFormat))

	metrics := a.fontFace.Metrics()
	textY := img.Bounds().Max.Y - metrics.Descent.Round() - 4

	pt := freetype.Pt(defaultLeftBorder, textY)
	if _, err := a.context.DrawString(info, pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// niceTimeStep picks a tick interval that yields roughly eight labels.
func niceTimeStep(span time.Duration) time.Duration {
	rough := span / 8

	niceIntervals := []time.Duration{
		time.Second,
		5 * time.Second,
		10 * time.Second,
		30 * time.Second,
		time.Minute,
		5 * time.Minute,
		10 * time.Minute,
	}

	for _, interval := range niceIntervals {
		if rough <= interval {
			return interval
		}
	}
	return 30 * time.Minute
}
