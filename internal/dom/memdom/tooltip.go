package memdom

import "github.com/dshills/touchemu/internal/dom"

// ToolTip records the hints a tooltip receives.
type ToolTip struct {
	Settings   dom.ToolTipSettings
	Configured bool

	// Current is the element the tooltip is shown for, or nil.
	Current dom.Element

	Shown  int
	Hidden int
}

// Configure implements dom.ToolTip.
func (t *ToolTip) Configure(s dom.ToolTipSettings) {
	t.Settings = s
	t.Configured = true
}

// ShowFor implements dom.ToolTip.
func (t *ToolTip) ShowFor(target dom.Element) {
	t.Current = target
	t.Shown++
}

// Hide implements dom.ToolTip.
func (t *ToolTip) Hide() {
	t.Current = nil
	t.Hidden++
}
