// Package snake is the snake game played on a square grid of tiles drawn with vkgrid.
package snake

import (
	"math/rand"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrHitBorder is returned by Tick when the head would leave the board.
	ErrHitBorder = errors.New("snake hit the border")
	// ErrHitSnake is returned by Tick when the head would move into the snake's own body.
	ErrHitSnake = errors.New("snake hit itself")
)

// Cell is what occupies a square of the board.
type Cell int

const (
	Empty Cell = iota
	Body
	Apple
)

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Body:
		return "snake"
	case Apple:
		return "apple"
	}
	return "unknown"
}

// Direction is a heading on the board. North is increasing y.
type Direction int

const (
	North Direction = iota
	South
	West
	East
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	}
	return "unknown"
}

// Delta is the one square step taken when moving in d.
func (d Direction) Delta() Coord {
	switch d {
	case North:
		return Coord{0, 1}
	case South:
		return Coord{0, -1}
	case West:
		return Coord{-1, 0}
	}
	return Coord{1, 0}
}

// Opposite is the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	}
	return West
}

// Coord is a square on the board, (0, 0) is drawn in the bottom left corner.
type Coord struct {
	X, Y int8
}

func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y}
}

// Board holds the game state. The tail follows the head by replaying the queue of turns the
// head has made that the tail has not yet reached.
type Board struct {
	size      int8
	cells     map[Coord]Cell
	direction Direction
	head      Coord
	tail      Coord
	tailDir   Direction
	turns     []Direction
	rng       *rand.Rand
	log       logrus.FieldLogger
}

// Option customizes a new Board.
type Option func(*Board)

// WithRand sets the source used to place apples.
func WithRand(r *rand.Rand) Option {
	return func(b *Board) { b.rng = r }
}

// WithLogger sets the logger game events are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Board) { b.log = l }
}

// NewBoard creates a size by size board with a three square snake heading east along the
// middle row from x 2 to 4, and an apple at x 7 of the same row. Boards too small for that
// layout put the snake and apple in the first squares that fit.
func NewBoard(size int8, opts ...Option) *Board {
	b := &Board{
		size:  size,
		cells: make(map[Coord]Cell, int(size)*int(size)),
		log:   logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	for x := int8(0); x < size; x++ {
		for y := int8(0); y < size; y++ {
			b.cells[Coord{x, y}] = Empty
		}
	}

	row := size / 2
	tailX := min8(2, size-1)
	headX := min8(4, size-1)
	for x := tailX; x <= headX; x++ {
		b.cells[Coord{x, row}] = Body
	}
	b.tail = Coord{tailX, row}
	b.head = Coord{headX, row}
	b.direction = East
	b.tailDir = East

	apple := Coord{min8(7, size-1), row}
	if b.cells[apple] == Empty {
		b.cells[apple] = Apple
	} else {
		b.spawnApple()
	}
	return b
}

func min8(a, b int8) int8 {
	if a < b {
		return a
	}
	return b
}

// Size is the board's width and height in squares.
func (b *Board) Size() int8 {
	return b.size
}

// Cell reports what occupies c, ok is false when c is off the board.
func (b *Board) Cell(c Coord) (cell Cell, ok bool) {
	cell, ok = b.cells[c]
	return
}

func (b *Board) Head() Coord {
	return b.head
}

func (b *Board) Tail() Coord {
	return b.tail
}

func (b *Board) Direction() Direction {
	return b.direction
}

// Length is the number of squares the snake occupies.
func (b *Board) Length() int {
	n := 0
	for _, c := range b.cells {
		if c == Body {
			n++
		}
	}
	return n
}

// Input requests a new heading. Reversing straight back into the body is ignored. When the
// heading differs from the tail's, the turn is queued for the tail to follow.
func (b *Board) Input(d Direction) {
	if d == b.direction.Opposite() {
		d = b.direction
	}
	b.direction = d

	if b.tailDir == d {
		return
	}
	if n := len(b.turns); n > 0 && b.turns[n-1] == d {
		return
	}
	b.turns = append(b.turns, d)
}

// Tick advances the snake one square. Running into the border or the body returns
// ErrHitBorder or ErrHitSnake and leaves the board unchanged. Eating an apple grows the
// snake by one square and places a new apple on a random empty square.
func (b *Board) Tick() error {
	target := b.head.Add(b.direction.Delta())
	cell, ok := b.cells[target]
	if !ok {
		return errors.Wrapf(ErrHitBorder, "moving %s from %v", b.direction, b.head)
	}
	if cell == Body {
		return errors.Wrapf(ErrHitSnake, "moving %s into %v", b.direction, target)
	}
	ate := cell == Apple
	b.cells[target] = Body

	if !ate {
		ahead, ok := b.cells[b.tail.Add(b.tailDir.Delta())]
		if (!ok || ahead != Body) && len(b.turns) > 0 {
			b.tailDir = b.turns[0]
			b.turns = b.turns[1:]
		}
		b.cells[b.tail] = Empty
	}

	b.head = target
	if ate {
		b.log.WithField("length", b.Length()).Debug("apple eaten")
		b.spawnApple()
	} else {
		b.tail = b.tail.Add(b.tailDir.Delta())
	}
	return nil
}

// spawnApple places an apple on a uniformly chosen empty square. A full board gets none.
func (b *Board) spawnApple() {
	empty := make([]Coord, 0, len(b.cells))
	for x := int8(0); x < b.size; x++ {
		for y := int8(0); y < b.size; y++ {
			c := Coord{x, y}
			if b.cells[c] == Empty {
				empty = append(empty, c)
			}
		}
	}
	if len(empty) == 0 {
		return
	}
	b.cells[empty[b.rng.Intn(len(empty))]] = Apple
}
