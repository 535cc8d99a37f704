package snake

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard() *Board {
	return NewBoard(10, WithRand(rand.New(rand.NewSource(1))))
}

func TestNewBoardLayout(t *testing.T) {
	b := newTestBoard()

	for _, c := range []Coord{{2, 5}, {3, 5}, {4, 5}} {
		cell, ok := b.Cell(c)
		require.True(t, ok)
		assert.Equal(t, Body, cell, c)
	}
	cell, _ := b.Cell(Coord{7, 5})
	assert.Equal(t, Apple, cell)
	assert.Equal(t, Coord{4, 5}, b.Head())
	assert.Equal(t, Coord{2, 5}, b.Tail())
	assert.Equal(t, East, b.Direction())
	assert.Equal(t, 3, b.Length())

	_, ok := b.Cell(Coord{10, 0})
	assert.False(t, ok)
	_, ok = b.Cell(Coord{-1, 0})
	assert.False(t, ok)
}

func TestTickMovesAndEats(t *testing.T) {
	b := newTestBoard()

	require.NoError(t, b.Tick())
	assert.Equal(t, Coord{5, 5}, b.Head())
	assert.Equal(t, Coord{3, 5}, b.Tail())
	cell, _ := b.Cell(Coord{2, 5})
	assert.Equal(t, Empty, cell)

	require.NoError(t, b.Tick())
	require.NoError(t, b.Tick())
	assert.Equal(t, Coord{7, 5}, b.Head())
	assert.Equal(t, Coord{4, 5}, b.Tail(), "the tail waits a tick after eating")
	assert.Equal(t, 4, b.Length())

	apples := 0
	for x := int8(0); x < 10; x++ {
		for y := int8(0); y < 10; y++ {
			if c, _ := b.Cell(Coord{x, y}); c == Apple {
				apples++
			}
		}
	}
	assert.Equal(t, 1, apples, "a new apple replaces the eaten one")
}

func TestTailFollowsTurns(t *testing.T) {
	b := newTestBoard()

	b.Input(North)
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Tick())
	}
	assert.Equal(t, Coord{4, 8}, b.Head())
	assert.Equal(t, Coord{4, 6}, b.Tail())
	for _, c := range []Coord{{4, 6}, {4, 7}, {4, 8}} {
		cell, _ := b.Cell(c)
		assert.Equal(t, Body, cell, c)
	}
	assert.Equal(t, 3, b.Length())
}

func TestReversalIsIgnored(t *testing.T) {
	b := newTestBoard()
	b.Input(West)
	assert.Equal(t, East, b.Direction())
	assert.Empty(t, b.turns)

	b.Input(North)
	b.Input(North)
	assert.Len(t, b.turns, 1, "repeated input queues one turn")
}

func TestHitBorder(t *testing.T) {
	b := newTestBoard()
	b.Input(North)
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = b.Tick()
	}
	assert.True(t, errors.Is(err, ErrHitBorder))
	assert.Equal(t, Coord{4, 9}, b.Head(), "the failed tick leaves the board alone")
}

func TestHitSnake(t *testing.T) {
	b := newTestBoard()
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Tick())
	}
	require.Equal(t, 4, b.Length())

	b.Input(North)
	require.NoError(t, b.Tick())
	b.Input(West)
	require.NoError(t, b.Tick())
	b.Input(South)
	head := b.Head()
	length := b.Length()

	err := b.Tick()
	assert.True(t, errors.Is(err, ErrHitSnake))
	assert.Equal(t, head, b.Head())
	assert.Equal(t, length, b.Length())
}

func TestCellColors(t *testing.T) {
	assert.Equal(t, [3]float32{0, 0, 1}, [3]float32(Body.Color()))
	assert.Equal(t, [3]float32{1, 0, 0}, [3]float32(Apple.Color()))
	assert.Equal(t, [3]float32{0, 0, 0}, [3]float32(Empty.Color()))
}
