// Package terminal is the interactive playground: the demo scene drawn in a
// terminal with the mouse acting as a finger.
//
// A left-button press, drag and release become touchstart, touchmove and
// touchend. Holding Ctrl (or Alt) while pressing starts a pinch instead:
// horizontal drag distance drives the gesture scale and vertical distance
// its rotation. The right button cancels the touch.
//
// Keys: q or Esc quits, s toggles touch scrolling, r rebuilds the scene,
// c clears the event log.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

// logSize is the number of event lines kept for display.
const logSize = 200

// pinchUnit is the horizontal distance, in cells, that adds 1 to the
// gesture scale.
const pinchUnit = 10

// EngineHook is called with every engine the playground creates. The
// returned cleanup runs when that engine is replaced or the playground
// closes.
type EngineHook func(e *touch.Engine) (cleanup func(), err error)

// Option configures a Playground.
type Option func(*Playground)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Playground) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEngineHook installs a hook run for every engine.
func WithEngineHook(h EngineHook) Option {
	return func(p *Playground) {
		p.hook = h
	}
}

// pointer is the mouse-as-finger state.
type pointer struct {
	down    bool
	pinch   bool
	originX int
	originY int
}

// Playground owns one scene and its engine. Everything except Apply must
// be called from the goroutine running Run.
type Playground struct {
	cfg    touch.Config
	logger *logging.Logger
	hook   EngineHook

	// applied is the last reloaded configuration; pending is the next one.
	applied *config.Config
	pending atomic.Pointer[config.Config]

	scene   *scene.Scene
	engine  *touch.Engine
	cleanup func()

	pointer pointer
	gesture *dom.GestureEvent
	log     []string
	pal     *palette

	wake chan struct{}
}

// New creates a playground with a fresh scene.
func New(cfg touch.Config, opts ...Option) (*Playground, error) {
	p := &Playground{
		cfg:    cfg,
		logger: logging.Nop(),
		pal:    newPalette(),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("playground")
	if err := p.rebuild(); err != nil {
		return nil, err
	}
	return p, nil
}

// Scene returns the current scene.
func (p *Playground) Scene() *scene.Scene { return p.scene }

// Engine returns the current engine.
func (p *Playground) Engine() *touch.Engine { return p.engine }

// Log returns the event log, oldest first.
func (p *Playground) Log() []string { return p.log }

// rebuild replaces the scene and engine.
func (p *Playground) rebuild() error {
	p.release()

	sc := scene.New()
	bus := event.NewBus()
	engine, err := sc.Attach(p.cfg,
		touch.WithBus(bus),
		touch.WithLogger(p.logger),
		touch.WithAlerter(dom.AlerterFunc(func(msg string) { p.record("alert: " + msg) })),
	)
	if err != nil {
		return err
	}
	for _, pattern := range []event.Topic{"mouse.*", "touch.**"} {
		if _, err := bus.Subscribe(pattern, p.observe); err != nil {
			return err
		}
	}
	engine.SetGestureListener(func(ev *dom.GestureEvent) { p.gesture = ev })
	if p.applied != nil {
		p.applied.Apply(engine)
	}

	p.scene, p.engine = sc, engine
	p.pointer = pointer{}
	p.gesture = nil
	if p.hook != nil {
		cleanup, err := p.hook(engine)
		if err != nil {
			return fmt.Errorf("engine hook: %w", err)
		}
		p.cleanup = cleanup
	}
	return nil
}

func (p *Playground) release() {
	if p.engine != nil {
		if err := p.engine.Detach(); err != nil {
			p.logger.Warn("detach: %v", err)
		}
	}
	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
}

// Close detaches the engine and runs the hook cleanup.
func (p *Playground) Close() {
	p.release()
	p.engine = nil
}

// Apply hands a reloaded configuration to the playground. It may be called
// from any goroutine; Run applies it on its own goroutine and redraws.
func (p *Playground) Apply(cfg *config.Config) {
	p.pending.Store(cfg)
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// applyPending pushes the pending configuration to the engine. Settings
// other than touch scrolling and draggable types take effect on rebuild.
func (p *Playground) applyPending() {
	cfg := p.pending.Swap(nil)
	if cfg == nil {
		return
	}
	p.cfg = cfg.EngineConfig()
	p.applied = cfg
	added := cfg.Apply(p.engine)
	p.logger.Info("configuration applied (%d new draggable types)", added)
	p.record(fmt.Sprintf("config reloaded, touch scrolling %v", p.engine.TouchScrolling()))
}

func (p *Playground) observe(ev event.Envelope) {
	if text := touch.Describe(ev); text != "" {
		p.record(text)
	}
}

func (p *Playground) record(line string) {
	p.log = append(p.log, line)
	if over := len(p.log) - logSize; over > 0 {
		p.log = append(p.log[:0], p.log[over:]...)
	}
}

// HandleEvent feeds one terminal event to the scene. It reports whether
// the playground should quit.
func (p *Playground) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return p.handleKey(e)
	case *tcell.EventMouse:
		x, y := e.Position()
		p.handleMouse(x, y, e.Buttons(), e.Modifiers())
	}
	return false
}

func (p *Playground) handleKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}
	switch e.Rune() {
	case 'q':
		return true
	case 's':
		enabled := !p.engine.TouchScrolling()
		p.engine.SetTouchScrolling(enabled)
		p.record(fmt.Sprintf("touch scrolling %v", enabled))
	case 'r':
		if err := p.rebuild(); err != nil {
			p.logger.Error("rebuild: %v", err)
			p.record("rebuild failed: " + err.Error())
		}
	case 'c':
		p.log = p.log[:0]
	}
	return false
}

func (p *Playground) handleMouse(x, y int, buttons tcell.ButtonMask, mods tcell.ModMask) {
	ptr := &p.pointer
	switch {
	case buttons&tcell.Button2 != 0:
		if ptr.down && !ptr.pinch {
			p.scene.Cancel()
		}
		if ptr.pinch {
			p.pinch(dom.GestureEnd, x, y)
		}
		*ptr = pointer{}

	case buttons&tcell.Button1 != 0:
		if !ptr.down {
			*ptr = pointer{down: true, originX: x, originY: y}
			if mods&(tcell.ModCtrl|tcell.ModAlt) != 0 {
				ptr.pinch = true
				p.pinch(dom.GestureStart, x, y)
				return
			}
			p.scene.Down(x, y)
			return
		}
		if ptr.pinch {
			p.pinch(dom.GestureChange, x, y)
			return
		}
		p.scene.Move(x, y)

	case buttons == tcell.ButtonNone && ptr.down:
		if ptr.pinch {
			p.pinch(dom.GestureEnd, x, y)
		} else {
			p.scene.Up(x, y)
		}
		*ptr = pointer{}
	}
}

// pinch dispatches a gesture event at the pinch origin.
func (p *Playground) pinch(t dom.GestureType, x, y int) {
	ptr := p.pointer
	scale := math.Max(0.1, 1+float64(x-ptr.originX)/pinchUnit)
	rotation := float64(y-ptr.originY) * 15
	if t == dom.GestureStart {
		scale, rotation = 1, 0
	}
	p.scene.Gesture(t, ptr.originX, ptr.originY, scale, rotation)
}

// Run draws the scene on screen and processes input until the user quits
// or ctx is cancelled. The screen must be initialized; Run does not
// finalize it.
func (p *Playground) Run(ctx context.Context, screen tcell.Screen) error {
	if p.engine == nil {
		return errors.New("playground is closed")
	}
	screen.EnableMouse()
	screen.HideCursor()

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	p.render(screen)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
			p.applyPending()
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
			}
			if p.HandleEvent(ev) {
				return nil
			}
		}
		p.render(screen)
	}
}

func (p *Playground) render(screen tcell.Screen) {
	screen.Clear()
	p.Draw(screen)
	screen.Show()
}
