// Package world provides the hex grid, terrain, and spatial helpers.
// The grid is a fixed 16×16 rectangle in offset coordinates: odd columns are
// shifted half a tile down, so adjacency depends on column parity.
package world

import "fmt"

// Grid dimensions.
const (
	Width  = 16
	Height = 16
)

// Coord is a tile position on the offset hex grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Valid reports whether c lies inside the grid.
func (c Coord) Valid() bool {
	return c.X >= 0 && c.X < Width && c.Y >= 0 && c.Y < Height
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Tile is the terrain type of a single grid cell.
type Tile uint8

const (
	TileFog      Tile = iota // Unseen; only produced by views, never stored
	TileWater                // Impassable without a raft or wings
	TileForest               // Can be chopped for wood
	TileLand                 // Can be farmed or planted
	TileDesert               // Barren
	TileMountain             // Can be mined
)

// NumTiles is the number of tile types.
const NumTiles = 6

// LandTiles are the tile types islands and starter huts are made of.
var LandTiles = []Tile{TileForest, TileLand, TileDesert, TileMountain}

// Name returns a human-readable name for a tile type.
func (t Tile) Name() string {
	switch t {
	case TileFog:
		return "Fog"
	case TileWater:
		return "Water"
	case TileForest:
		return "Forest"
	case TileLand:
		return "Land"
	case TileDesert:
		return "Desert"
	case TileMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// Adjacent returns the in-bounds neighbors of c.
// Order: left, right, up, down, then the two diagonals. Even columns reach
// up-left/up-right, odd columns reach down-left/down-right. Callers rely on
// this order for BFS tie-breaking.
func Adjacent(c Coord) []Coord {
	x, y := c.X, c.Y
	hood := make([]Coord, 0, 6)
	if x > 0 {
		hood = append(hood, Coord{x - 1, y})
	}
	if x+1 < Width {
		hood = append(hood, Coord{x + 1, y})
	}
	if y > 0 {
		hood = append(hood, Coord{x, y - 1})
	}
	if y+1 < Height {
		hood = append(hood, Coord{x, y + 1})
	}
	if x&1 == 0 {
		if x > 0 && y > 0 {
			hood = append(hood, Coord{x - 1, y - 1})
		}
		if x+1 < Width && y > 0 {
			hood = append(hood, Coord{x + 1, y - 1})
		}
	} else {
		if x > 0 && y+1 < Height {
			hood = append(hood, Coord{x - 1, y + 1})
		}
		if x+1 < Width && y+1 < Height {
			hood = append(hood, Coord{x + 1, y + 1})
		}
	}
	return hood
}

// SquaredDistance is the crude Euclidean distance used for placement.
// It ignores hex geometry.
func SquaredDistance(a, b Coord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
