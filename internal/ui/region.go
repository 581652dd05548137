package ui

import "strings"

// minFlexHeight is the smallest height the flexible region is ever given,
// even on absurdly short terminals.
const minFlexHeight = 3

// Region is a named slot in the vertical layout. Fixed is the slot height
// in rows; zero marks the one flexible region that fills the remainder.
type Region struct {
	Name  string
	Fixed int
}

// Layout is an ordered set of regions composing the full terminal frame.
// Each region's content is replaced independently; Frame snaps them into a
// single string whose line count equals the requested height, so a repaint
// is always one atomic write.
type Layout struct {
	regions []Region
	content map[string]string
}

// NewLayout creates a layout from top to bottom.
func NewLayout(regions ...Region) *Layout {
	return &Layout{
		regions: regions,
		content: make(map[string]string, len(regions)),
	}
}

// Update replaces a region's content. Unknown names are ignored.
func (t *Layout) Update(name, content string) {
	t.content[name] = content
}

// SetFixed changes a fixed region's height (the footer grows while the
// input wraps across extra rows).
func (t *Layout) SetFixed(name string, rows int) {
	for i := range t.regions {
		if t.regions[i].Name == name && t.regions[i].Fixed > 0 {
			t.regions[i].Fixed = rows
		}
	}
}

// SlotHeight reports the rows region name receives for a terminal of
// totalHeight rows. The flexible region gets everything the fixed regions
// leave, floored at minFlexHeight.
func (t *Layout) SlotHeight(name string, totalHeight int) int {
	fixed := 0
	for _, r := range t.regions {
		if r.Fixed > 0 {
			fixed += r.Fixed
		}
	}
	for _, r := range t.regions {
		if r.Name != name {
			continue
		}
		if r.Fixed > 0 {
			return r.Fixed
		}
		h := totalHeight - fixed
		if h < minFlexHeight {
			h = minFlexHeight
		}
		return h
	}
	return 0
}

// Frame composes all regions into a single frame of exactly height lines.
// Region content taller than its slot is clipped (fixed regions keep their
// top lines; the flexible region keeps its bottom lines, which is the
// viewport behavior the transcript wants); shorter content is padded.
func (t *Layout) Frame(width, height int) string {
	var out []string
	for _, r := range t.regions {
		slot := t.SlotHeight(r.Name, height)
		lines := strings.Split(t.content[r.Name], "\n")
		if t.content[r.Name] == "" {
			lines = nil
		}
		if len(lines) > slot {
			if r.Fixed > 0 {
				lines = lines[:slot]
			} else {
				lines = lines[len(lines)-slot:]
			}
		}
		for len(lines) < slot {
			lines = append(lines, "")
		}
		out = append(out, lines...)
	}
	if len(out) > height {
		out = out[:height]
	}
	return strings.Join(out, "\n")
}
