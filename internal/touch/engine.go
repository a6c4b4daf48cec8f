package touch

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
	"github.com/dshills/touchemu/internal/logging"
)

// Default configuration values.
const (
	DefaultMoveThreshold = 15

	// EventSource is the metadata source of every published event.
	EventSource = "touch"
)

// Config holds the engine settings.
type Config struct {
	// DoubleClickInterval is the longest gap between two clicks on the same
	// target that still counts as a double click.
	DoubleClickInterval time.Duration

	// MoveThreshold is the displacement, in either axis, that cancels a
	// non-drag touch as a click candidate.
	MoveThreshold int

	// TouchScrolling enables native (non-virtualized) scrolling.
	TouchScrolling bool

	// AllowedMouseEvents lists the genuine mouse events the filter passes.
	AllowedMouseEvents AllowedMouseEvents

	// DraggableTypes are registered on top of the built-in table.
	DraggableTypes []DraggableType

	// ToolTip is applied to the tooltip collaborator on attach.
	ToolTip dom.ToolTipSettings
}

// DefaultToolTipSettings returns the tooltip timings used for touch input.
func DefaultToolTipSettings() dom.ToolTipSettings {
	return dom.ToolTipSettings{
		ShowInterval: 600 * time.Millisecond,
		HideInterval: 15000 * time.Millisecond,
		OffsetX:      -35,
		OffsetY:      -100,
	}
}

// DefaultConfig returns the default engine settings.
func DefaultConfig() Config {
	return Config{
		DoubleClickInterval: DefaultDoubleClickInterval,
		MoveThreshold:       DefaultMoveThreshold,
		TouchScrolling:      true,
		AllowedMouseEvents:  DefaultAllowedMouseEvents(),
		ToolTip:             DefaultToolTipSettings(),
	}
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithBus publishes session and synthesized mouse events on bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithAlerter sets the channel handler failures are reported on.
func WithAlerter(a dom.Alerter) Option {
	return func(e *Engine) {
		e.alerter = a
	}
}

// WithToolTip couples the engine to a tooltip.
func WithToolTip(t dom.ToolTip) Option {
	return func(e *Engine) {
		e.synth.tooltip = t
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRegistry shares a draggable registry between engines.
func WithRegistry(r *DraggableRegistry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// Engine is the touch event coordinator for one input surface.
type Engine struct {
	doc dom.Document
	cfg Config

	registry   *DraggableRegistry
	classifier classifier
	synth      synthesizer
	clicks     *clickMemory
	filter     mouseFilter

	session        *Session
	correlation    string
	mouseEnabled   bool
	touchScrolling atomic.Bool

	touchListener   func(*dom.TouchEvent)
	gestureListener func(*dom.GestureEvent)

	surface dom.Surface
	bus     *event.Bus
	logger  *logging.Logger
	alerter dom.Alerter
	now     func() time.Time
}

// New creates an engine for doc. Zero fields of cfg take their defaults.
func New(doc dom.Document, cfg Config, opts ...Option) *Engine {
	if cfg.DoubleClickInterval <= 0 {
		cfg.DoubleClickInterval = DefaultDoubleClickInterval
	}
	if cfg.MoveThreshold <= 0 {
		cfg.MoveThreshold = DefaultMoveThreshold
	}
	if cfg.AllowedMouseEvents == nil {
		cfg.AllowedMouseEvents = DefaultAllowedMouseEvents()
	}

	e := &Engine{
		doc:          doc,
		cfg:          cfg,
		clicks:       newClickMemory(cfg.DoubleClickInterval),
		filter:       mouseFilter{allowed: cfg.AllowedMouseEvents},
		mouseEnabled: true,
		logger:       logging.Nop(),
		now:          time.Now,
	}
	e.touchScrolling.Store(cfg.TouchScrolling)

	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewDraggableRegistry()
	}
	for _, dt := range cfg.DraggableTypes {
		e.registry.Add(dt.Kind, dt.Appearances...)
	}
	e.logger = e.logger.WithComponent("touch")
	e.classifier = classifier{doc: doc, registry: e.registry}
	e.synth.fired = e.mouseFired
	return e
}

// Attach installs the engine's handlers and mouse event filter on s.
func (e *Engine) Attach(s dom.Surface) error {
	if s == nil {
		return ErrNilSurface
	}
	if e.surface != nil {
		return ErrAlreadyAttached
	}
	e.surface = s
	s.SetTouchHandler(e.HandleTouch)
	s.SetGestureHandler(e.HandleGesture)
	s.SetOrientationHandler(e.HandleOrientation)
	s.SetMouseEventFilter(e.FilterMouseEvent)

	if e.synth.tooltip != nil {
		e.synth.tooltip.Configure(e.cfg.ToolTip)
	}
	e.logger.Info("attached (touch scrolling %v)", e.touchScrolling.Load())
	return nil
}

// Detach removes every handler and the filter and resets all state.
func (e *Engine) Detach() error {
	if e.surface == nil {
		return ErrNotAttached
	}
	e.surface.SetTouchHandler(nil)
	e.surface.SetGestureHandler(nil)
	e.surface.SetOrientationHandler(nil)
	e.surface.SetMouseEventFilter(nil)
	e.surface = nil
	e.Reset()
	e.logger.Info("detached")
	return nil
}

// Reset abandons the active session and clears hover, click memory and
// gesture suppression.
func (e *Engine) Reset() {
	if s := e.session; s != nil {
		if vs := s.virtualScroll(); vs != nil {
			vs.finish()
		}
	}
	e.session = nil
	e.correlation = ""
	e.synth.reset()
	e.clicks.clear()
	e.mouseEnabled = true
}

// Session returns the active session, or nil.
func (e *Engine) Session() *Session { return e.session }

// MouseEnabled reports whether mouse emulation is active (no gesture in
// progress).
func (e *Engine) MouseEnabled() bool { return e.mouseEnabled }

// Registry returns the draggable registry.
func (e *Engine) Registry() *DraggableRegistry { return e.registry }

// AddDraggableType registers an additional draggable widget kind. See
// DraggableRegistry.Add.
func (e *Engine) AddDraggableType(kind string, appearances ...string) bool {
	ok := e.registry.Add(kind, appearances...)
	if ok {
		e.logger.Debug("draggable type %s added %v", kind, appearances)
	}
	return ok
}

// SetTouchListener installs the listener receiving raw touch events while
// mouse emulation is suppressed. Nil removes it.
func (e *Engine) SetTouchListener(fn func(*dom.TouchEvent)) { e.touchListener = fn }

// SetGestureListener installs the listener receiving every gesture event.
// Nil removes it.
func (e *Engine) SetGestureListener(fn func(*dom.GestureEvent)) { e.gestureListener = fn }

// SetTouchScrolling toggles native scrolling for sessions started later.
func (e *Engine) SetTouchScrolling(enabled bool) {
	if e.touchScrolling.Swap(enabled) != enabled {
		e.logger.Debug("touch scrolling %v", enabled)
	}
}

// TouchScrolling reports whether native scrolling is enabled.
func (e *Engine) TouchScrolling() bool { return e.touchScrolling.Load() }

// FilterMouseEvent reports whether a mouse event may reach the toolkit.
func (e *Engine) FilterMouseEvent(ev *dom.MouseEvent) bool {
	if ev == nil {
		return false
	}
	return e.filter.allow(ev)
}

// HandleOrientation accepts orientation changes. Nothing depends on them yet.
func (e *Engine) HandleOrientation(ev *dom.OrientationEvent) {
	if ev == nil {
		return
	}
	e.logger.Debug("orientation %d", ev.Orientation)
}

// HandleTouch is the entry point for native touch events.
func (e *Engine) HandleTouch(ev *dom.TouchEvent) {
	if ev == nil {
		return
	}
	defer e.recoverFrom(ev.EventName())

	if e.doc.Suspended() {
		ev.PreventDefault()
		return
	}
	if !e.mouseEnabled {
		if e.touchListener != nil {
			e.touchListener(ev)
		}
		return
	}

	switch ev.Type {
	case dom.TouchStart:
		e.touchStart(ev)
	case dom.TouchMove:
		e.touchMove(ev)
	case dom.TouchEnd:
		e.touchEnd(ev)
	case dom.TouchCancel:
		e.touchCancel(ev)
	}
}

func (e *Engine) touchStart(ev *dom.TouchEvent) {
	touch, ok := ev.FirstTouch()
	if !ok || ev.Target == nil {
		return
	}
	if stale := e.session; stale != nil {
		e.logger.Warn("touchstart during session %s, dropping it", stale.ID)
		e.cancelSession(ev)
		e.endSession(stale, event.TopicSessionCancelled, false)
	}

	target := ev.Target
	widget := e.doc.WidgetOf(target)
	pos := Position{X: touch.ClientX, Y: touch.ClientY}

	// A windowed list without scroll bars behaves like a plain tap.
	mode := e.classifier.classify(widget, e.touchScrolling.Load())
	if m, ok := mode.(*VirtualScrollMode); ok {
		m.scroll = beginVirtualScroll(widget)
		if m.scroll == nil {
			mode = ClickMode{}
		}
	}
	s := &Session{
		ID:              uuid.NewString(),
		Mode:            mode,
		Clickable:       true,
		Pressed:         true,
		InitialTarget:   target,
		WidgetTarget:    widget,
		InitialPosition: pos,
		Started:         e.now(),
	}
	e.session = s
	e.correlation = s.ID
	if !s.Mode.allowsNativeDefault() {
		ev.PreventDefault()
	}
	e.logger.Debug("session %s started: %s at %d,%d", s.ID, s.Mode, pos.X, pos.Y)
	publish(e, event.TopicSessionStarted, e.sessionInfo(s, pos, false))

	e.synth.moveTo(target, ev)
	e.synth.fire(dom.MouseDown, target, ev, pos)
}

func (e *Engine) touchMove(ev *dom.TouchEvent) {
	s := e.session
	if s == nil {
		return
	}
	touch, ok := ev.FirstTouch()
	if !ok {
		return
	}
	pos := Position{X: touch.ClientX, Y: touch.ClientY}

	if !s.IsScroll() {
		ev.PreventDefault()
	}
	if m, ok := s.Mode.(*VirtualScrollMode); ok && m.scroll != nil {
		if m.scroll.move(s.InitialPosition, pos, m.Outer) {
			s.Mode = ScrollMode{}
			e.logger.Debug("session %s escalated to outer scroll", s.ID)
			publish(e, event.TopicScrollEscalated, e.sessionInfo(s, pos, false))
		}
	}

	if s.IsDrag() {
		if pos != s.InitialPosition {
			s.Clickable = false
		}
		e.synth.fire(dom.MouseMove, ev.Target, ev, pos)
		return
	}
	if s.Clickable && pos.Exceeds(s.InitialPosition, e.cfg.MoveThreshold) {
		e.cancelSession(ev)
	}
}

func (e *Engine) touchEnd(ev *dom.TouchEvent) {
	ev.PreventDefault()
	s := e.session
	if s == nil {
		return
	}
	pos := s.InitialPosition
	if touch, ok := ev.FirstTouch(); ok {
		pos = Position{X: touch.ClientX, Y: touch.ClientY}
	}
	target := ev.Target

	if s.Pressed {
		s.Pressed = false
		e.synth.fire(dom.MouseUp, target, ev, pos)
	}
	if vs := s.virtualScroll(); vs != nil {
		vs.finish()
	}
	e.session = nil

	clicked := s.Clickable && target != nil && target == s.InitialTarget
	if clicked {
		e.synth.fire(dom.Click, target, ev, pos)
		now := e.now()
		if e.clicks.isDoubleClick(target, now) {
			e.clicks.clear()
			e.synth.fire(dom.DblClick, target, ev, pos)
		} else {
			e.clicks.record(target, now)
		}
	}
	e.logger.Debug("session %s ended (click %v)", s.ID, clicked)
	publish(e, event.TopicSessionEnded, e.sessionInfo(s, pos, clicked))
}

func (e *Engine) touchCancel(ev *dom.TouchEvent) {
	ev.PreventDefault()
	s := e.session
	if s == nil {
		return
	}
	e.endSession(s, event.TopicSessionCancelled, true)
}

// cancelSession releases the virtual mouse over the neutral target and
// strips click eligibility from the active session.
func (e *Engine) cancelSession(origin dom.InputEvent) {
	neutral := e.doc.NeutralTarget()
	e.synth.moveTo(neutral, origin)

	s := e.session
	if s == nil {
		return
	}
	s.Clickable = false
	if s.Pressed {
		s.Pressed = false
		e.synth.fire(dom.MouseUp, neutral, origin, Position{})
	}
	e.logger.Debug("session %s cancelled as click candidate", s.ID)
}

// endSession destroys s without synthesizing anything.
func (e *Engine) endSession(s *Session, topic event.Topic, abort bool) {
	if e.session == s {
		e.session = nil
	}
	if vs := s.virtualScroll(); vs != nil {
		vs.finish()
	}
	if abort {
		e.logger.Debug("session %s aborted", s.ID)
	}
	publish(e, topic, e.sessionInfo(s, s.InitialPosition, false))
}

// recoverFrom is deferred by the top-level handlers. A recovered panic is
// reported and abandons the session.
func (e *Engine) recoverFrom(name string) {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("%w: %s: %v", ErrHandlerPanic, name, r)
	e.logger.Error("%v\n%s", err, debug.Stack())

	var id string
	if s := e.session; s != nil {
		id = s.ID
		e.session = nil
		if vs := s.virtualScroll(); vs != nil {
			vs.finish()
		}
	}
	publish(e, event.TopicHandlerFailed, FailureInfo{SessionID: id, Event: name, Err: err})

	if e.alerter != nil {
		e.alerter.Alert(fmt.Sprintf("Error in touch event handling: %v", r))
	}
}

// SessionInfo is the payload of session lifecycle events.
type SessionInfo struct {
	SessionID string
	Mode      string
	Target    dom.Element
	X, Y      int
	Clicked   bool
	Duration  time.Duration
}

// MouseInfo is the payload of synthesized mouse events.
type MouseInfo struct {
	SessionID string
	Type      dom.MouseType
	Target    dom.Element
	X, Y      int
}

// GestureInfo is the payload of gesture events.
type GestureInfo struct {
	Type     dom.GestureType
	Scale    float64
	Rotation float64
}

// FailureInfo is the payload of TopicHandlerFailed.
type FailureInfo struct {
	SessionID string
	Event     string
	Err       error
}

func (e *Engine) sessionInfo(s *Session, pos Position, clicked bool) SessionInfo {
	return SessionInfo{
		SessionID: s.ID,
		Mode:      s.Mode.String(),
		Target:    s.InitialTarget,
		X:         pos.X,
		Y:         pos.Y,
		Clicked:   clicked,
		Duration:  e.now().Sub(s.Started),
	}
}

func (e *Engine) mouseFired(ev *dom.MouseEvent) {
	if e.bus == nil {
		return
	}
	info := MouseInfo{
		SessionID: e.correlation,
		Type:      ev.Type,
		Target:    ev.Target,
		X:         ev.ClientX,
		Y:         ev.ClientY,
	}
	publish(e, event.TopicMousePrefix.Child(ev.Type.String()), info)
}

func publish[T any](e *Engine, topic event.Topic, payload T) {
	if e.bus == nil {
		return
	}
	ev := event.New(topic, payload, EventSource)
	if e.correlation != "" {
		ev = ev.WithCorrelation(e.correlation)
	}
	if err := e.bus.Publish(ev); err != nil {
		e.logger.Warn("publish %s: %v", topic, err)
	}
}
