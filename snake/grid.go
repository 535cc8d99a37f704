package snake

import (
	"github.com/celer/vkgrid"
)

// Layout places board squares on screen. Square (x, y) covers the TileSize pixel square
// starting at pixel (x*TileSize, y*TileSize), shrunk by Inset on every side. Pixel (0, 0) is
// the bottom left of the window, so north on the board is up.
type Layout struct {
	TileSize float32
	Inset    float32
	Screen   vkgrid.ScreenTransform
}

// Quad is the on screen geometry of square c.
func (l Layout) Quad(c Coord) vkgrid.VertexData {
	x0 := float32(c.X)*l.TileSize + l.Inset
	y0 := float32(c.Y)*l.TileSize + l.Inset
	x1 := float32(c.X)*l.TileSize + l.TileSize - l.Inset
	y1 := float32(c.Y)*l.TileSize + l.TileSize - l.Inset
	return l.Screen.Quad(x0, y0, x1, y1)
}

// Grid is one Tile per board square, drawn column by column.
type Grid struct {
	size  int8
	tiles []*Tile
}

type gridOptions struct {
	upload VertexUploader
}

type GridOption func(*gridOptions)

// WithVertexUploader sets where tile quads are placed, HostVertices by default.
func WithVertexUploader(u VertexUploader) GridOption {
	return func(o *gridOptions) {
		o.upload = u
	}
}

// NewGrid creates the tiles for a size by size board.
func NewGrid(d *vkgrid.Device, layout *vkgrid.DescriptorSetLayout, size int8, l Layout, opts ...GridOption) (*Grid, error) {
	o := gridOptions{upload: HostVertices(d)}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Grid{size: size}
	for x := int8(0); x < size; x++ {
		for y := int8(0); y < size; y++ {
			t, err := NewTile(d, layout, o.upload, l.Quad(Coord{x, y}), Empty)
			if err != nil {
				g.Destroy()
				return nil, err
			}
			g.tiles = append(g.tiles, t)
		}
	}
	return g, nil
}

// Tile returns the tile for square c, nil when c is off the board.
func (g *Grid) Tile(c Coord) *Tile {
	if c.X < 0 || c.Y < 0 || c.X >= g.size || c.Y >= g.size {
		return nil
	}
	return g.tiles[int(c.X)*int(g.size)+int(c.Y)]
}

// Sync copies every square's contents from b into the matching tile.
func (g *Grid) Sync(b *Board) {
	for x := int8(0); x < g.size; x++ {
		for y := int8(0); y < g.size; y++ {
			c := Coord{x, y}
			if cell, ok := b.Cell(c); ok {
				g.Tile(c).Cell = cell
			}
		}
	}
}

// Draw records every tile.
func (g *Grid) Draw(cb *vkgrid.CommandBuffer, layout *vkgrid.PipelineLayout) error {
	for _, t := range g.tiles {
		if err := t.Draw(cb, layout); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grid) Destroy() {
	for _, t := range g.tiles {
		t.Destroy()
	}
	g.tiles = nil
}
