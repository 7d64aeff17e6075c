package record

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/offlinefirst/mimic/pkg/events"
)

// The synthetic source and snapshot provider stand in for real platform
// hooks on hosts without input instrumentation. They replay a short scripted
// desk session so the rest of the pipeline can be exercised end to end.

type syntheticSource struct {
	clock func() time.Time
}

func defaultSource(clock func() time.Time) Source {
	if clock == nil {
		clock = time.Now
	}
	return syntheticSource{clock: clock}
}

func (s syntheticSource) Stream(ctx context.Context, emit func(events.Event) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := s.clock().UTC()
	at := func(offset time.Duration) time.Time { return start.Add(offset) }

	timeline := events.Events{
		&events.MouseButtonEvent{Timestamp: at(0), Action: events.ActionPress, Button: events.ButtonLeft, Location: events.Point{X: 210, Y: 340}},
		&events.MouseButtonEvent{Timestamp: at(80 * time.Millisecond), Action: events.ActionRelease, Button: events.ButtonLeft, Location: events.Point{X: 210, Y: 340}},
		&events.KeyboardEvent{Timestamp: at(600 * time.Millisecond), Action: events.ActionPress, Key: "h"},
		&events.KeyboardEvent{Timestamp: at(660 * time.Millisecond), Action: events.ActionRelease, Key: "h"},
		&events.KeyboardEvent{Timestamp: at(740 * time.Millisecond), Action: events.ActionPress, Key: "i"},
		&events.KeyboardEvent{Timestamp: at(800 * time.Millisecond), Action: events.ActionRelease, Key: "i"},
		&events.KeyboardEvent{Timestamp: at(900 * time.Millisecond), Action: events.ActionPress, Key: events.KeyEnter},
		&events.KeyboardEvent{Timestamp: at(960 * time.Millisecond), Action: events.ActionRelease, Key: events.KeyEnter},
		&events.ScrollEvent{Timestamp: at(2 * time.Second), Location: events.Point{X: 400, Y: 500}, Scroll: events.Delta{DY: -2}},
		&events.ScrollEvent{Timestamp: at(2400 * time.Millisecond), Location: events.Point{X: 400, Y: 500}, Scroll: events.Delta{DY: -3}},
	}

	for _, event := range timeline {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(event); err != nil {
			return err
		}
	}
	return nil
}

type syntheticSnapshots struct {
	frame int
}

func defaultSnapshotProvider() SnapshotProvider {
	return &syntheticSnapshots{}
}

func (p *syntheticSnapshots) Snapshot(ctx context.Context) (image.Image, events.Point, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, events.Point{}, err
		}
	}
	const width, height = 64, 40
	p.frame++
	shade := uint8(40 + (p.frame*31)%200)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: shade, G: uint8(x % 255), B: uint8(y % 255), A: 255})
		}
	}
	return img, events.Point{X: width / 2, Y: height / 2}, nil
}
