package touch

import (
	"testing"
	"time"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/dom/memdom"
)

// fixture is a small document:
//
//	body
//	├── button   (10,10 20x10)  plain control
//	├── button2  (40,30 20x10)  plain control
//	├── text     (40,10 40x10)  INPUT text field
//	├── shell    (100,10 50x20) draggable Shell
//	└── outer    (0,50 200x150) ScrolledComposite, vbar 500/100
//	    ├── list (10,60 100x100) Grid, vbar 300/100, hbar 100/100
//	    │   └── row (10,60 100x20) grid row
//	    └── panel (120,60 50x50) plain widget
type fixture struct {
	t      *testing.T
	doc    *memdom.Document
	engine *Engine
	finger *memdom.Finger
	clock  *fakeClock

	button, button2, text, shell, outer, list, row, panel *memdom.Element

	outerBar *memdom.ScrollBar
	listV    *memdom.ScrollBar
	listH    *memdom.ScrollBar
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T, cfg Config, opts ...Option) *fixture {
	t.Helper()

	d := memdom.New(200, 200)
	root := d.Root()
	f := &fixture{t: t, doc: d, clock: &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}}

	el := func(parent *memdom.Element, tag, id string, r memdom.Rect, w dom.Widget) *memdom.Element {
		e := parent.Append(d.CreateElement(tag, id, r))
		d.Bind(e, w)
		return e
	}

	f.button = el(d.Body(), "DIV", "button", memdom.Rect{X: 10, Y: 10, W: 20, H: 10},
		memdom.NewWidget("org.eclipse.swt.widgets.Button", root).SetControl(true))
	f.button2 = el(d.Body(), "DIV", "button2", memdom.Rect{X: 40, Y: 30, W: 20, H: 10},
		memdom.NewWidget("org.eclipse.swt.widgets.Button", root).SetControl(true))
	f.text = el(d.Body(), "INPUT", "text", memdom.Rect{X: 40, Y: 10, W: 40, H: 10},
		memdom.NewTextField("org.eclipse.swt.widgets.Text", root))
	f.shell = el(d.Body(), "DIV", "shell", memdom.Rect{X: 100, Y: 10, W: 50, H: 20},
		memdom.NewWidget("org.eclipse.swt.widgets.Shell", root).SetControl(true))

	f.outerBar = memdom.NewScrollBar(500, 100)
	outer := memdom.NewScrollPane("org.eclipse.swt.custom.ScrolledComposite", root, f.outerBar, nil)
	f.outer = el(d.Body(), "DIV", "outer", memdom.Rect{X: 0, Y: 50, W: 200, H: 150}, outer)

	f.listV = memdom.NewScrollBar(300, 100)
	f.listH = memdom.NewScrollBar(100, 100)
	list := memdom.NewScrollPane("org.eclipse.rwt.widgets.Grid", outer, f.listV, f.listH)
	f.list = el(f.outer, "DIV", "list", memdom.Rect{X: 10, Y: 60, W: 100, H: 100}, list)

	row := memdom.NewRow("org.eclipse.rwt.widgets.GridRow", list, nil)
	row.SetAppearance("tree-row")
	f.row = el(f.list, "DIV", "row", memdom.Rect{X: 10, Y: 60, W: 100, H: 20}, row)

	f.panel = el(f.outer, "DIV", "panel", memdom.Rect{X: 120, Y: 60, W: 50, H: 50},
		memdom.NewWidget("org.eclipse.swt.widgets.Composite", outer))

	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.engine = New(d, cfg, opts...)
	if err := f.engine.Attach(d); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	f.finger = d.Finger(0)
	f.finger.Now = f.clock.Now
	return f
}

// center returns the middle of el.
func center(el *memdom.Element) (int, int) {
	b := el.Bounds()
	return b.X + b.W/2, b.Y + b.H/2
}

func (f *fixture) tap(el *memdom.Element) {
	x, y := center(el)
	f.finger.Tap(x, y)
}

// types returns the recorded synthesized mouse event types.
func (f *fixture) types() []dom.MouseType {
	var out []dom.MouseType
	for _, r := range f.doc.Records() {
		if r.Synthesized {
			out = append(out, r.Type)
		}
	}
	return out
}

func (f *fixture) expectTypes(want ...dom.MouseType) {
	f.t.Helper()
	got := f.types()
	if len(got) != len(want) {
		f.t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			f.t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func (f *fixture) records(t dom.MouseType) []memdom.Record {
	var out []memdom.Record
	for _, r := range f.doc.Records() {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}
