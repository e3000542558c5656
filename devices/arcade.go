package devices

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Tile identifies what occupies an arcade screen cell.
type Tile int

const (
	TileEmpty  Tile = 0
	TileWall   Tile = 1
	TileBlock  Tile = 2
	TilePaddle Tile = 3
	TileBall   Tile = 4
)

var tileGlyphs = [...]byte{' ', '#', '=', '_', '*'}

// scorePos is the pseudo-coordinate whose tile value is the score.
var scorePos = Point{-1, 0}

type arcadeState int

const (
	expectX arcadeState = iota
	expectY
	expectTile
)

// Joystick chooses the next joystick position. predicted is the move the
// arcade's own ball tracking would make.
type Joystick interface {
	Move(a *Arcade, predicted int) (int, error)
}

// Arcade is the I/O handler of an arcade cabinet. Outputs arrive as
// (x, y, tile) triples; the triple (-1, 0, n) sets the score instead. Input
// returns a joystick position: -1 left, 0 neutral, 1 right.
type Arcade struct {
	state arcadeState
	x, y  int

	tiles  Grid
	score  int
	ball   Point
	prev   Point
	paddle Point

	hasBall, hasPrev, hasPaddle bool

	// Joystick overrides the built-in ball-tracking move when set.
	Joystick Joystick
	// Frames receives a rendering of the screen before every input when set.
	Frames io.Writer
}

// NewArcade creates an arcade with an empty screen.
func NewArcade() *Arcade {
	return &Arcade{tiles: make(Grid)}
}

func (a *Arcade) Output(v int) error {
	switch a.state {
	case expectX:
		a.x = v
		a.state = expectY
	case expectY:
		a.y = v
		a.state = expectTile
	case expectTile:
		a.state = expectX
		p := Point{a.x, a.y}
		if p == scorePos {
			a.score = v
			log.Debugf("score %d", v)
			return nil
		}
		if v < int(TileEmpty) || v > int(TileBall) {
			return fmt.Errorf("tile id %d at %v: %w", v, p, ErrBadCommand)
		}
		a.tiles[p] = v
		switch Tile(v) {
		case TilePaddle:
			a.paddle, a.hasPaddle = p, true
		case TileBall:
			if a.hasBall {
				a.prev, a.hasPrev = a.ball, true
			}
			a.ball, a.hasBall = p, true
		}
	}
	return nil
}

func (a *Arcade) Input() (int, error) {
	if a.Frames != nil {
		if _, err := io.WriteString(a.Frames, a.Render()); err != nil {
			return 0, err
		}
	}
	predicted := a.Predict()
	if a.Joystick != nil {
		return a.Joystick.Move(a, predicted)
	}
	return predicted, nil
}

// Predict returns the joystick move that brings the paddle toward where
// the ball will be next, extrapolating from its last two positions. It is
// 0 until both a ball and a paddle have been drawn.
func (a *Arcade) Predict() int {
	if !a.hasBall || !a.hasPaddle {
		return 0
	}
	next := a.ball.X
	if a.hasPrev {
		next += a.ball.X - a.prev.X
	}
	switch {
	case a.paddle.X < next:
		return 1
	case a.paddle.X > next:
		return -1
	default:
		return 0
	}
}

// Score returns the last reported score.
func (a *Arcade) Score() int { return a.score }

// Tiles returns the screen contents.
func (a *Arcade) Tiles() Grid { return a.tiles }

// Ball returns the ball position and whether one has been drawn.
func (a *Arcade) Ball() (Point, bool) { return a.ball, a.hasBall }

// Paddle returns the paddle position and whether one has been drawn.
func (a *Arcade) Paddle() (Point, bool) { return a.paddle, a.hasPaddle }

// BlockCount returns the number of block tiles on screen.
func (a *Arcade) BlockCount() int {
	n := 0
	for _, v := range a.tiles {
		if Tile(v) == TileBlock {
			n++
		}
	}
	return n
}

// Render draws the screen from (0,0) to the largest drawn coordinate,
// followed by the score.
func (a *Arcade) Render() string {
	_, hi, ok := a.tiles.Bounds()
	if !ok {
		return fmt.Sprintf("Score: %d\n", a.score)
	}
	screen := a.tiles.render(Point{0, 0}, hi, false, func(v int, _ bool) byte {
		return tileGlyphs[v]
	})
	return screen + fmt.Sprintf("Score: %d\n", a.score)
}

// ConsoleJoystick asks a human for each move. Accepted answers are p or an
// empty line (take the prediction), n (neutral), l (left) and r (right).
type ConsoleJoystick struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleJoystick reads answers from r and writes prompts to w.
func NewConsoleJoystick(r io.Reader, w io.Writer) *ConsoleJoystick {
	return &ConsoleJoystick{in: bufio.NewReader(r), out: w}
}

func (j *ConsoleJoystick) Move(a *Arcade, predicted int) (int, error) {
	for {
		paddle, _ := a.Paddle()
		fmt.Fprintf(j.out, "paddle_x: %d  prediction: %d\nnext move? (p/l/r/n) ", paddle.X, predicted)

		line, err := j.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return 0, fmt.Errorf("reading joystick: %w", err)
		}
		switch strings.TrimSpace(line) {
		case "p", "":
			return predicted, nil
		case "n":
			return 0, nil
		case "l":
			return -1, nil
		case "r":
			return 1, nil
		default:
			fmt.Fprintln(j.out, "unrecognized input!")
		}
	}
}
