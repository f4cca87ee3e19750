package world

import (
	"fmt"
	"math/rand"
)

// Terrain holds the tile grid, indexed [y][x].
type Terrain struct {
	Tiles [Height][Width]Tile
}

// NewTerrain creates a grid that is all water.
func NewTerrain() *Terrain {
	t := &Terrain{}
	for y := range t.Tiles {
		for x := range t.Tiles[y] {
			t.Tiles[y][x] = TileWater
		}
	}
	return t
}

// Tile returns the tile at c. c must be in bounds.
func (t *Terrain) Tile(c Coord) Tile {
	return t.Tiles[c.Y][c.X]
}

// SetTile replaces the tile at c. c must be in bounds.
func (t *Terrain) SetTile(c Coord, tile Tile) {
	t.Tiles[c.Y][c.X] = tile
}

// IsWater reports whether c is a water tile.
func (t *Terrain) IsWater(c Coord) bool {
	return t.Tiles[c.Y][c.X] == TileWater
}

// TileSpotsOfType returns every coordinate whose tile is one of types,
// in row-major order.
func (t *Terrain) TileSpotsOfType(types ...Tile) []Coord {
	var spots []Coord
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if tileIn(t.Tiles[y][x], types) {
				spots = append(spots, Coord{x, y})
			}
		}
	}
	return spots
}

// RandomTileOfType picks a random coordinate whose tile is one of types.
// Returns false if there is none.
func (t *Terrain) RandomTileOfType(rng *rand.Rand, types ...Tile) (Coord, bool) {
	spots := t.TileSpotsOfType(types...)
	if len(spots) == 0 {
		return Coord{}, false
	}
	return spots[rng.Intn(len(spots))], true
}

// Clone returns an independent copy of the grid.
func (t *Terrain) Clone() *Terrain {
	c := *t
	return &c
}

// Counts returns a summary of tile type distribution.
func (t *Terrain) Counts() map[Tile]int {
	counts := make(map[Tile]int)
	for y := range t.Tiles {
		for _, tile := range t.Tiles[y] {
			counts[tile]++
		}
	}
	return counts
}

// String returns a summary of the terrain.
func (t *Terrain) String() string {
	land := 0
	for tile, n := range t.Counts() {
		if tile != TileWater {
			land += n
		}
	}
	return fmt.Sprintf("Terrain(%dx%d, land=%d)", Width, Height, land)
}

func tileIn(tile Tile, types []Tile) bool {
	for _, t := range types {
		if t == tile {
			return true
		}
	}
	return false
}
