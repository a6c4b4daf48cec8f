// Package window shows the demo scene in a Gio window.
//
// Pointer events with a touch source drive the touch engine through
// gioinput, so a touch screen produces real multi-finger input: a second
// finger starts a pinch. WithMouse lets the primary mouse button act as a
// finger and the secondary button cancel the touch, for desktops without
// a touch screen. The window title shows the session mode and the latest
// engine event; Esc closes the window.
package window

import (
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/dom/memdom"
	"github.com/dshills/touchemu/internal/event"
	"github.com/dshills/touchemu/internal/gioinput"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

// Title prefixes the window title.
const Title = "touchemu"

var (
	background = colorful.MustParseHex("#101418")
	white      = colorful.Color{R: 1, G: 1, B: 1}
)

// EngineHook is called with the engine once it is attached. The returned
// cleanup runs on Close.
type EngineHook func(e *touch.Engine) (cleanup func(), err error)

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(v *Viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithEngineHook installs h.
func WithEngineHook(h EngineHook) Option {
	return func(v *Viewer) {
		v.hook = h
	}
}

// WithMouse makes the mouse act as a finger.
func WithMouse(enabled bool) Option {
	return func(v *Viewer) {
		v.mouse = enabled
	}
}

// Viewer owns the scene, its engine and the pointer adapter of one window.
// Everything except Apply must be called from the window's event loop.
type Viewer struct {
	logger *logging.Logger
	hook   EngineHook
	mouse  bool

	scene   *scene.Scene
	engine  *touch.Engine
	cleanup func()
	input   *gioinput.Adapter

	// cell is the size of one scene unit in pixels.
	cell   float32
	colors map[scene.Role]colorful.Color
	last   string
	ops    op.Ops

	pending atomic.Pointer[config.Config]
	window  atomic.Pointer[app.Window]
}

// New builds the scene and attaches an engine configured by cfg.
func New(cfg touch.Config, opts ...Option) (*Viewer, error) {
	v := &Viewer{
		logger: logging.Nop(),
		cell:   1,
		colors: make(map[scene.Role]colorful.Color),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("window")
	for role := scene.RoleButton; role <= scene.RolePanel; role++ {
		v.colors[role] = colorful.MustParseHex(role.Color())
	}

	sc := scene.New()
	bus := event.NewBus()
	engine, err := sc.Attach(cfg, touch.WithBus(bus), touch.WithLogger(v.logger))
	if err != nil {
		return nil, err
	}
	for _, pattern := range []event.Topic{"mouse.*", "touch.**"} {
		if _, err := bus.Subscribe(pattern, v.observe); err != nil {
			_ = engine.Detach()
			return nil, err
		}
	}
	v.scene = sc
	v.engine = engine
	v.input = gioinput.New(sc.Doc,
		func(x, y int) dom.Element { return sc.Doc.HitTest(x, y) },
		gioinput.WithEpoch(time.Now()),
	)

	if v.hook != nil {
		cleanup, err := v.hook(engine)
		if err != nil {
			_ = engine.Detach()
			return nil, err
		}
		v.cleanup = cleanup
	}
	return v, nil
}

// Scene returns the scene.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Engine returns the engine.
func (v *Viewer) Engine() *touch.Engine { return v.engine }

// Last returns the description of the latest engine event.
func (v *Viewer) Last() string { return v.last }

// Close runs the engine hook cleanup and detaches the engine.
func (v *Viewer) Close() {
	if v.cleanup != nil {
		v.cleanup()
		v.cleanup = nil
	}
	if err := v.engine.Detach(); err != nil {
		v.logger.Debug("detach: %v", err)
	}
}

func (v *Viewer) observe(ev event.Envelope) {
	if text := touch.Describe(ev); text != "" {
		v.last = text
		v.logger.Debug("%s", text)
	}
}

// Apply schedules a reloaded configuration for the next frame. It is safe
// to call from any goroutine.
func (v *Viewer) Apply(cfg *config.Config) {
	v.pending.Store(cfg)
	if w := v.window.Load(); w != nil {
		w.Invalidate()
	}
}

func (v *Viewer) applyPending() {
	cfg := v.pending.Swap(nil)
	if cfg == nil {
		return
	}
	added := cfg.Apply(v.engine)
	v.logger.Info("configuration applied (touch scrolling %v, %d new draggable types)",
		v.engine.TouchScrolling(), added)
}

// Feed passes a window pointer event to the engine. It reports whether the
// event became touch input.
func (v *Viewer) Feed(ev pointer.Event) bool {
	if ev.Source == pointer.Mouse {
		if !v.mouse {
			return false
		}
		switch ev.Type {
		case pointer.Press:
			if ev.Buttons.Contain(pointer.ButtonSecondary) {
				ev.Type = pointer.Cancel
			} else if !ev.Buttons.Contain(pointer.ButtonPrimary) {
				return false
			}
		case pointer.Move:
			return false
		}
		ev.Source = pointer.Touch
	}
	return v.input.Feed(ev)
}

// resize fits the scene into size with square cells.
func (v *Viewer) resize(size image.Point) {
	cell := min(float32(size.X)/float32(scene.Width), float32(size.Y)/float32(scene.Height))
	if cell < 1 {
		cell = 1
	}
	if cell != v.cell {
		v.cell = cell
		v.input.SetScale(cell)
	}
}

// Layout draws the scene into ops and registers the pointer handler over
// the whole window.
func (v *Viewer) Layout(ops *op.Ops, size image.Point) {
	v.resize(size)
	paint.FillShape(ops, nrgba(background), clip.Rect{Max: size}.Op())

	var active dom.Element
	if s := v.engine.Session(); s != nil {
		active = s.InitialTarget
	}
	focused := v.scene.Focused()
	for _, it := range v.scene.Items() {
		c := v.colors[it.Role]
		if active != nil && dom.Element(it.El) == active {
			c = c.BlendLab(white, 0.35)
		}
		r := v.rect(it.El.Bounds())
		paint.FillShape(ops, nrgba(c), clip.Rect(r).Op())
		if it == focused {
			underline := image.Rect(r.Min.X, r.Max.Y-2, r.Max.X, r.Max.Y)
			paint.FillShape(ops, nrgba(white), clip.Rect(underline).Op())
		}
	}

	area := clip.Rect{Max: size}.Push(ops)
	pointer.InputOp{
		Tag:   v,
		Grab:  true,
		Types: pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Move,
	}.Add(ops)
	key.InputOp{Tag: v, Keys: key.NameEscape}.Add(ops)
	area.Pop()
}

func (v *Viewer) rect(r memdom.Rect) image.Rectangle {
	px := func(u int) int { return int(float32(u) * v.cell) }
	return image.Rect(px(r.X), px(r.Y), px(r.X+r.W), px(r.Y+r.H))
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// WindowTitle returns the session mode and the latest engine event.
func (v *Viewer) WindowTitle() string {
	mode := "idle"
	if s := v.engine.Session(); s != nil {
		mode = s.Mode.String()
	}
	t := Title + " | " + mode
	if v.last != "" {
		t += " | " + v.last
	}
	return t
}

// Frame handles one frame: pending configuration, queued input, then
// drawing. It reports whether Esc asked to close the window.
func (v *Viewer) Frame(e system.FrameEvent) (closing bool) {
	v.applyPending()
	v.resize(e.Size)
	for _, ev := range e.Queue.Events(v) {
		switch ev := ev.(type) {
		case pointer.Event:
			v.Feed(ev)
		case key.Event:
			if ev.Name == key.NameEscape && ev.State == key.Press {
				closing = true
			}
		}
	}
	v.ops.Reset()
	v.Layout(&v.ops, e.Size)
	e.Frame(&v.ops)
	return closing
}

// Run drives w until it is destroyed.
func (v *Viewer) Run(w *app.Window) error {
	v.window.Store(w)
	defer v.window.Store(nil)

	shown := ""
	for e := range w.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			if v.Frame(e) {
				w.Perform(system.ActionClose)
			}
			if t := v.WindowTitle(); t != shown {
				shown = t
				w.Option(app.Title(t))
			}
		case system.DestroyEvent:
			return e.Err
		}
	}
	return nil
}
