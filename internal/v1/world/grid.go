// Package world provides the two world shapes the game modes simulate on: a
// fixed-size 2D tile grid for board-style modes and a chunked voxel store for
// open-world modes. Neither is goroutine-safe on its own; the owning room's
// lock covers all access.
package world

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/content"

// Tile is one cell of a board grid.
type Tile struct {
	Block content.BlockID `json:"block"`
	Biome content.Biome   `json:"biome"`
}

// Grid is a [y][x] indexed tile field.
type Grid struct {
	W, H  int
	tiles [][]Tile
}

// NewGrid returns a w×h grid with every tile set to fill.
func NewGrid(w, h int, fill Tile) *Grid {
	tiles := make([][]Tile, h)
	for y := range tiles {
		row := make([]Tile, w)
		for x := range row {
			row[x] = fill
		}
		tiles[y] = row
	}
	return &Grid{W: w, H: h, tiles: tiles}
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Get returns the tile at (x, y); ok is false out of bounds.
func (g *Grid) Get(x, y int) (Tile, bool) {
	if !g.InBounds(x, y) {
		return Tile{}, false
	}
	return g.tiles[y][x], true
}

// Set writes the tile at (x, y). Callers must hold the owning room's lock;
// the grid is only written from inside a tick or a synchronous handler.
func (g *Grid) Set(x, y int, t Tile) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.tiles[y][x] = t
	return true
}

// SetBlock replaces only the block id at (x, y), keeping the biome.
func (g *Grid) SetBlock(x, y int, id content.BlockID) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.tiles[y][x].Block = id
	return true
}

// Walkable reports whether a player or mob may occupy (x, y).
func (g *Grid) Walkable(x, y int) bool {
	t, ok := g.Get(x, y)
	if !ok {
		return false
	}
	return content.BlockByID(t.Block).Walkable
}

// L1Dist is the diamond (Manhattan) distance between two points.
func L1Dist(ax, ay, bx, by int) int {
	return abs(ax-bx) + abs(ay-by)
}

// VisitL1 calls fn for every in-bounds tile within L1 distance r of the
// center. Vision queries pass radius+2 to avoid pop-in at the edges.
func (g *Grid) VisitL1(cx, cy, r int, fn func(x, y int, t Tile)) {
	for y := cy - r; y <= cy+r; y++ {
		if y < 0 || y >= g.H {
			continue
		}
		rem := r - abs(y-cy)
		for x := cx - rem; x <= cx+rem; x++ {
			if x < 0 || x >= g.W {
				continue
			}
			fn(x, y, g.tiles[y][x])
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
