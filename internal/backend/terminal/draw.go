package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/touchemu/internal/scene"
)

// Canvas is the drawing surface. tcell.Screen implements it.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// palette holds the scene colors.
type palette struct {
	base   map[scene.Role]colorful.Color
	white  colorful.Color
	black  colorful.Color
	status tcell.Style
}

func newPalette() *palette {
	p := &palette{
		base:  make(map[scene.Role]colorful.Color),
		white: colorful.Color{R: 1, G: 1, B: 1},
		black: colorful.Color{},
	}
	for role := scene.RoleButton; role <= scene.RolePanel; role++ {
		p.base[role] = colorful.MustParseHex(role.Color())
	}
	p.status = p.style(colorful.MustParseHex("#101418"))
	return p
}

// item returns the style for role. Active items are blended toward white,
// odd rows are darkened a little.
func (p *palette) item(role scene.Role, active, odd bool) tcell.Style {
	c := p.base[role]
	if odd {
		c = c.BlendLab(p.black, 0.15)
	}
	if active {
		c = c.BlendLab(p.white, 0.35)
	}
	return p.style(c)
}

// style uses c as background with a readable foreground.
func (p *palette) style(c colorful.Color) tcell.Style {
	fg := p.white
	if _, _, l := c.Hcl(); l > 0.6 {
		fg = p.black
	}
	return tcell.StyleDefault.Background(tcellColor(c)).Foreground(tcellColor(fg))
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Draw paints the scene, a status line and the event log.
func (p *Playground) Draw(c Canvas) {
	w, h := c.Size()
	sc := p.scene
	active := p.activeItem()

	for _, it := range sc.Items() {
		b := it.El.Bounds()
		odd := it.Role == scene.RoleRow && (sc.ListV.Value()+b.Y)%2 == 1
		st := p.pal.item(it.Role, it == active, odd)
		if f := sc.Focused(); f == it {
			st = st.Underline(true)
		}
		fill(c, b.X, b.Y, b.W, b.H, st)
		if label := sc.Label(it); label != "" {
			drawText(c, b.X+1, b.Y+b.H/2, b.W-2, label, st)
		}
	}

	y := scene.Height
	if y >= h {
		return
	}
	fill(c, 0, y, w, 1, p.pal.status)
	drawText(c, 1, y, w-2, p.statusLine(), p.pal.status)

	rows := h - y - 1
	lines := p.log
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, line := range lines {
		drawText(c, 1, y+1+i, w-2, line, tcell.StyleDefault)
	}
}

func (p *Playground) statusLine() string {
	mode := "idle"
	if s := p.engine.Session(); s != nil {
		mode = s.Mode.String()
	}
	if !p.engine.MouseEnabled() {
		mode = "gesture"
		if g := p.gesture; g != nil {
			mode = fmt.Sprintf("gesture x%.2f %.0f°", g.Scale, g.Rotation)
		}
	}
	return fmt.Sprintf("%s | scroll %v | list %d outer %d scale %d | q quit  s scrolling  r reset  c clear",
		mode, p.engine.TouchScrolling(), p.scene.ListV.Value(), p.scene.OuterV.Value(), p.scene.ScaleValue())
}

// activeItem is the item the current session started on.
func (p *Playground) activeItem() *scene.Item {
	s := p.engine.Session()
	if s == nil {
		return nil
	}
	for _, it := range p.scene.Items() {
		if s.InitialTarget == it.El {
			return it
		}
	}
	return nil
}

func fill(c Canvas, x, y, w, h int, st tcell.Style) {
	cw, ch := c.Size()
	for row := y; row < y+h && row < ch; row++ {
		for col := x; col < x+w && col < cw; col++ {
			if row >= 0 && col >= 0 {
				c.SetContent(col, row, ' ', nil, st)
			}
		}
	}
}

// drawText writes s from (x, y), one grapheme cluster per cell group, and
// stops before exceeding limit cells. It returns the cells used.
func drawText(c Canvas, x, y, limit int, s string, st tcell.Style) int {
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if w == 0 {
			continue
		}
		if used+w > limit {
			break
		}
		c.SetContent(x+used, y, runes[0], runes[1:], st)
		used += w
	}
	return used
}
