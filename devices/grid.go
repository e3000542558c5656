// Package devices provides intcode I/O handlers that drive simulated
// hardware: a hull-painting robot and an arcade cabinet. Each is a state
// machine over the program's output stream and derives its input values
// from accumulated state.
package devices

import (
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("intcode.devices")

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{p.X + d.X, p.Y + d.Y}
}

// Grid is a sparse map of cell values.
type Grid map[Point]int

// Bounds returns the smallest and largest coordinates present. ok is false
// for an empty grid.
func (g Grid) Bounds() (lo, hi Point, ok bool) {
	for p := range g {
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi, ok
}

// render draws rows from lo.Y to hi.Y (or reversed when yUp is set, so that
// larger Y appears first) using glyph for each cell.
func (g Grid) render(lo, hi Point, yUp bool, glyph func(v int, ok bool) byte) string {
	var sb strings.Builder
	row := func(y int) {
		for x := lo.X; x <= hi.X; x++ {
			v, ok := g[Point{x, y}]
			sb.WriteByte(glyph(v, ok))
		}
		sb.WriteByte('\n')
	}
	if yUp {
		for y := hi.Y; y >= lo.Y; y-- {
			row(y)
		}
	} else {
		for y := lo.Y; y <= hi.Y; y++ {
			row(y)
		}
	}
	return sb.String()
}
