package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h)}
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", w))
	}
	return c
}

func (c *canvas) SetContent(x, y int, primary rune, _ []rune, _ tcell.Style) {
	c.cells[y][x] = primary
}

func (c *canvas) Size() (int, int) { return c.w, c.h }

func (c *canvas) line(y int) string { return string(c.cells[y]) }

func newPlayground(t *testing.T, opts ...Option) *Playground {
	t.Helper()
	p, err := New(touch.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func mouse(p *Playground, x, y int, b tcell.ButtonMask, mod tcell.ModMask) {
	p.HandleEvent(tcell.NewEventMouse(x, y, b, mod))
}

func key(p *Playground, r rune) bool {
	return p.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func logged(p *Playground, prefix string) bool {
	for _, l := range p.Log() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestDraw(t *testing.T) {
	p := newPlayground(t)
	c := newCanvas(100, 30)
	p.Draw(c)

	if got := c.line(2)[3:5]; got != "OK" {
		t.Errorf("ok label = %q, want OK", got)
	}
	if got := c.line(10)[3:10]; got != "Item 00" {
		t.Errorf("first row = %q, want Item 00", got)
	}
	if !strings.HasPrefix(c.line(scene.Height), " idle | scroll true") {
		t.Errorf("status line = %q", c.line(scene.Height))
	}

	mouse(p, 5, 2, tcell.Button1, tcell.ModNone)
	mouse(p, 5, 2, tcell.ButtonNone, tcell.ModNone)
	c = newCanvas(100, 30)
	p.Draw(c)
	if got := c.line(2)[3:9]; got != "OK (1)" {
		t.Errorf("ok label after tap = %q", got)
	}
	var log string
	for y := scene.Height + 1; y < 30; y++ {
		log += c.line(y)
	}
	if !strings.Contains(log, "session ended click on div#ok") {
		t.Errorf("event log not drawn below the status line:\n%s", log)
	}
}

func TestDrawTextClipsWideGraphemes(t *testing.T) {
	c := newCanvas(10, 1)
	used := drawText(c, 0, 0, 5, "日本語", tcell.StyleDefault)
	if used != 4 {
		t.Errorf("drawText() = %d cells, want 4", used)
	}
	if c.cells[0][0] != '日' || c.cells[0][2] != '本' || c.cells[0][4] != ' ' {
		t.Errorf("cells = %q", c.line(0))
	}
}

func TestTap(t *testing.T) {
	p := newPlayground(t)
	mouse(p, 5, 2, tcell.Button1, tcell.ModNone)
	if p.Engine().Session() == nil {
		t.Fatal("press did not start a session")
	}
	mouse(p, 5, 2, tcell.ButtonNone, tcell.ModNone)

	if got := p.Scene().Clicks("ok"); got != 1 {
		t.Errorf("Clicks(ok) = %d, want 1", got)
	}
	if !logged(p, "click") {
		t.Errorf("log = %v", p.Log())
	}
}

func TestMotionWithoutButtonIgnored(t *testing.T) {
	p := newPlayground(t)
	mouse(p, 5, 2, tcell.ButtonNone, tcell.ModNone)
	if len(p.Log()) != 0 || p.Engine().Session() != nil {
		t.Errorf("hover produced events: %v", p.Log())
	}
}

func TestCtrlDragPinches(t *testing.T) {
	p := newPlayground(t)
	mouse(p, 5, 2, tcell.Button1, tcell.ModCtrl)
	if p.Engine().MouseEnabled() {
		t.Fatal("mouse emulation enabled during pinch")
	}
	mouse(p, 15, 2, tcell.Button1, tcell.ModCtrl)
	if p.gesture == nil || p.gesture.Scale != 2 {
		t.Errorf("gesture = %+v, want scale 2", p.gesture)
	}
	mouse(p, 15, 2, tcell.ButtonNone, tcell.ModNone)

	if !p.Engine().MouseEnabled() {
		t.Error("mouse emulation not restored")
	}
	if p.Scene().Clicks("ok") != 0 {
		t.Error("pinch produced a click")
	}
	if !logged(p, "gesture ended scale=2.00") {
		t.Errorf("log = %v", p.Log())
	}
}

func TestRightButtonCancels(t *testing.T) {
	p := newPlayground(t)
	mouse(p, 5, 2, tcell.Button1, tcell.ModNone)
	mouse(p, 5, 2, tcell.Button2, tcell.ModNone)
	if p.Engine().Session() != nil {
		t.Error("session survived cancel")
	}
	mouse(p, 5, 2, tcell.ButtonNone, tcell.ModNone)
	if p.Scene().Clicks("ok") != 0 {
		t.Error("cancelled touch produced a click")
	}
	if !logged(p, "session cancelled") {
		t.Errorf("log = %v", p.Log())
	}
}

func TestKeys(t *testing.T) {
	hooked, cleaned := 0, 0
	p := newPlayground(t, WithEngineHook(func(e *touch.Engine) (func(), error) {
		hooked++
		return func() { cleaned++ }, nil
	}))

	if key(p, 's') || p.Engine().TouchScrolling() {
		t.Error("s did not turn touch scrolling off")
	}

	p.Scene().Tap(5, 2)
	if key(p, 'c') || len(p.Log()) != 0 {
		t.Errorf("c left %d log lines", len(p.Log()))
	}

	old := p.Scene()
	if key(p, 'r') || p.Scene() == old {
		t.Error("r did not rebuild the scene")
	}
	if hooked != 2 || cleaned != 1 {
		t.Errorf("hook calls = %d cleanups = %d, want 2 and 1", hooked, cleaned)
	}

	if !key(p, 'q') {
		t.Error("q did not quit")
	}
	if !p.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc did not quit")
	}
}

func TestApplyReloadedConfig(t *testing.T) {
	p := newPlayground(t)
	cfg := config.Default()
	cfg.Emulation.TouchScrolling = false
	cfg.Emulation.DraggableTypes = []config.DraggableType{{Kind: scene.KindButton}}

	p.Apply(cfg)
	p.applyPending()
	if p.Engine().TouchScrolling() {
		t.Error("touch scrolling still on")
	}

	key(p, 'r')
	if p.Engine().TouchScrolling() {
		t.Error("rebuild lost the reloaded touch scrolling setting")
	}
	mouse(p, 5, 2, tcell.Button1, tcell.ModNone)
	if s := p.Engine().Session(); s == nil || s.Mode.String() != "drag" {
		t.Errorf("button session = %v, want drag", s)
	}
}

func TestRunQuits(t *testing.T) {
	p := newPlayground(t)
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer screen.Fini()
	screen.SetSize(100, 30)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background(), screen) }()

	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after q")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	p := newPlayground(t)
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx, screen); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
