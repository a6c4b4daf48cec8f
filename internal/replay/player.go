package replay

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

// Epoch is the virtual time a replay starts at.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Line is one observed engine event.
type Line struct {
	At   time.Duration
	Step int
	Text string
}

func (l Line) String() string {
	return fmt.Sprintf("%6dms  #%-3d %s", l.At.Milliseconds(), l.Step, l.Text)
}

// Result summarizes a replay.
type Result struct {
	Name  string
	Steps int
	Lines []Line

	Sessions  int
	Cancelled int
	Failures  int

	// Clicks counts click events per scene item.
	Clicks map[string]int

	Elapsed    time.Duration
	FingerDown bool
}

// Summary is a one-line description of r.
func (r *Result) Summary() string {
	ids := make([]string, 0, len(r.Clicks))
	for id := range r.Clicks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	clicks := ""
	for _, id := range ids {
		clicks += fmt.Sprintf(" %s=%d", id, r.Clicks[id])
	}
	if clicks == "" {
		clicks = " none"
	}
	return fmt.Sprintf("%s: %d steps, %d sessions (%d cancelled), %d events in %s, clicks:%s",
		r.Name, r.Steps, r.Sessions, r.Cancelled, len(r.Lines), r.Elapsed, clicks)
}

// Option configures a Player.
type Option func(*Player)

// WithOutput prints every event line to w as it happens.
func WithOutput(w io.Writer) Option {
	return func(p *Player) {
		p.out = w
	}
}

// WithLogger sets the logger handed to the engine.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEngineConfig sets the engine configuration.
func WithEngineConfig(cfg touch.Config) Option {
	return func(p *Player) {
		p.cfg = cfg
	}
}

// WithRealTime makes the player sleep for step delays instead of only
// advancing the virtual clock.
func WithRealTime(enabled bool) Option {
	return func(p *Player) {
		p.realTime = enabled
	}
}

// Player replays traces. Each Run uses a fresh scene and engine.
type Player struct {
	cfg      touch.Config
	logger   *logging.Logger
	out      io.Writer
	realTime bool
}

// NewPlayer creates a player.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		cfg:    touch.DefaultConfig(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type clock struct {
	start, now time.Time
}

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *clock) elapsed() time.Duration  { return c.now.Sub(c.start) }

// Run replays t. A cancelled ctx stops between steps and returns the
// partial result with ctx's error.
func (p *Player) Run(ctx context.Context, t *Trace) (*Result, error) {
	clk := &clock{start: Epoch, now: Epoch}
	sc := scene.New()
	sc.Finger.Now = clk.Now

	cfg := p.cfg
	if t.TouchScrolling != nil {
		cfg.TouchScrolling = *t.TouchScrolling
	}
	bus := event.NewBus()
	engine, err := sc.Attach(cfg,
		touch.WithBus(bus),
		touch.WithLogger(p.logger),
		touch.WithClock(clk.Now),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := engine.Detach(); err != nil {
			p.logger.Warn("detach: %v", err)
		}
	}()
	for _, dt := range t.Draggable {
		engine.AddDraggableType(dt.Kind, dt.Appearances...)
	}

	res := &Result{Name: t.Name, Clicks: make(map[string]int)}
	step := 0
	observe := func(ev event.Envelope) {
		switch ev.EventTopic() {
		case event.TopicSessionStarted:
			res.Sessions++
		case event.TopicSessionCancelled:
			res.Cancelled++
		case event.TopicHandlerFailed:
			res.Failures++
		}
		text := touch.Describe(ev)
		if text == "" {
			return
		}
		line := Line{At: clk.elapsed(), Step: step, Text: text}
		res.Lines = append(res.Lines, line)
		if p.out != nil {
			fmt.Fprintln(p.out, line)
		}
	}
	for _, pattern := range []event.Topic{"mouse.*", "touch.**"} {
		if _, err := bus.Subscribe(pattern, observe); err != nil {
			return nil, err
		}
	}

	defer func() {
		res.Elapsed = clk.elapsed()
		res.FingerDown = sc.Finger.IsDown()
		for _, it := range sc.Items() {
			if n := sc.Clicks(it.ID); n > 0 {
				res.Clicks[it.ID] = n
			}
		}
	}()

	for i, s := range t.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.wait(ctx, s.After.Std()); err != nil {
			return res, err
		}
		clk.advance(s.After.Std())
		step = i + 1
		apply(sc, s)
		res.Steps++
	}
	return res, nil
}

func (p *Player) wait(ctx context.Context, d time.Duration) error {
	if !p.realTime || d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func apply(sc *scene.Scene, s Step) {
	switch s.Type {
	case StepTap:
		sc.Tap(s.X, s.Y)
		return
	case StepOrientation:
		sc.Doc.DispatchOrientation(&dom.OrientationEvent{Orientation: s.Orientation})
		return
	}
	if t, ok := dom.ParseTouchType(s.Type); ok {
		switch t {
		case dom.TouchStart:
			sc.Down(s.X, s.Y)
		case dom.TouchMove:
			sc.Move(s.X, s.Y)
		case dom.TouchEnd:
			sc.Up(s.X, s.Y)
		case dom.TouchCancel:
			sc.Cancel()
		}
		return
	}
	if t, ok := dom.ParseGestureType(s.Type); ok {
		sc.Gesture(t, s.X, s.Y, s.Scale, s.Rotation)
	}
}
