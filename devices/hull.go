package devices

import (
	"errors"
	"fmt"
)

// Panel colours.
const (
	Black = 0
	White = 1
)

// ErrBadCommand is returned for output values a device cannot interpret.
var ErrBadCommand = errors.New("unrecognized device command")

type robotState int

const (
	robotPainting robotState = iota
	robotTurning
)

// HullRobot is the I/O handler of a hull-painting robot. Input reports the
// colour of the panel under the robot. Outputs alternate between a paint
// colour and a turn (0 left, 1 right), after which the robot moves one
// panel forward. Y grows upward; the robot starts at the origin facing up.
type HullRobot struct {
	pos   Point
	dir   Point
	state robotState
	hull  Grid
	moves int
}

// NewHullRobot creates a robot over a black hull. A non-black start colour
// is painted onto the origin panel first.
func NewHullRobot(start int) *HullRobot {
	r := &HullRobot{dir: Point{0, 1}, hull: make(Grid)}
	if start != Black {
		r.hull[r.pos] = start
	}
	return r
}

func (r *HullRobot) Input() (int, error) {
	return r.hull[r.pos], nil
}

func (r *HullRobot) Output(v int) error {
	switch r.state {
	case robotPainting:
		if v != Black && v != White {
			return fmt.Errorf("paint colour %d: %w", v, ErrBadCommand)
		}
		r.hull[r.pos] = v
		r.state = robotTurning

	case robotTurning:
		switch v {
		case 0:
			r.dir = Point{-r.dir.Y, r.dir.X}
		case 1:
			r.dir = Point{r.dir.Y, -r.dir.X}
		default:
			return fmt.Errorf("rotation direction %d: %w", v, ErrBadCommand)
		}
		r.pos = r.pos.Add(r.dir)
		r.moves++
		r.state = robotPainting
	}
	return nil
}

// Position returns the robot's current panel.
func (r *HullRobot) Position() Point { return r.pos }

// Heading returns the unit vector the robot faces.
func (r *HullRobot) Heading() Point { return r.dir }

// Painted returns the number of panels painted at least once.
func (r *HullRobot) Painted() int { return len(r.hull) }

// Hull returns the painted panels.
func (r *HullRobot) Hull() Grid { return r.hull }

// Render draws the painted area with '#' for white and '.' for black,
// highest row first.
func (r *HullRobot) Render() string {
	lo, hi, ok := r.hull.Bounds()
	if !ok {
		return ""
	}
	log.Debugf("hull spans x %d..%d, y %d..%d after %d moves", lo.X, hi.X, lo.Y, hi.Y, r.moves)
	return r.hull.render(lo, hi, true, func(v int, _ bool) byte {
		if v == White {
			return '#'
		}
		return '.'
	})
}
