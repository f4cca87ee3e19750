// Package snapshot converts game state to and from persisted documents.
//
// Documents are plain JSON-shaped structs with short keys. Decoding is
// all-or-nothing: any malformed field aborts with an error wrapping
// ErrMalformed and nothing is partially restored.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/talgya/gaia/internal/civ"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

// ErrMalformed marks persisted state that cannot be restored.
var ErrMalformed = errors.New("malformed snapshot")

// GameDoc is the full game state.
type GameDoc struct {
	Terrain [][]int  `json:"terr"`
	Civs    []CivDoc `json:"civs"`
	Active  int      `json:"ac"`
}

// CivDoc is one civilization.
type CivDoc struct {
	Alive      bool        `json:"alive"`
	Human      *bool       `json:"human,omitempty"`
	Population []EntityDoc `json:"pop"`
	Food       int         `json:"food"`
	Wood       int         `json:"wood"`
	Gold       int         `json:"gold"`
}

// EntityDoc is one unit or building. Raft is present for raft-capable kinds,
// State (building level) for buildings.
type EntityDoc struct {
	Type      string `json:"type"`
	Tile      [2]int `json:"tile"`
	Exhausted bool   `json:"exh"`
	Life      int    `json:"life"`
	Raft      *bool  `json:"raft,omitempty"`
	State     *int   `json:"state,omitempty"`
}

// ActionDoc is one history entry. Doer is absent for End, Target is present
// only for move and attack.
type ActionDoc struct {
	Action string  `json:"a"`
	Doer   *int    `json:"d,omitempty"`
	Target *[2]int `json:"t,omitempty"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// EncodeTerrain converts the tile grid to rows of integers.
func EncodeTerrain(t *world.Terrain) [][]int {
	rows := make([][]int, world.Height)
	for y := range rows {
		rows[y] = make([]int, world.Width)
		for x := range rows[y] {
			rows[y][x] = int(t.Tiles[y][x])
		}
	}
	return rows
}

// DecodeTerrain checks dimensions and tile values and rebuilds the grid.
func DecodeTerrain(rows [][]int) (*world.Terrain, error) {
	if len(rows) != world.Height {
		return nil, malformed("terrain has %d rows, want %d", len(rows), world.Height)
	}
	t := world.NewTerrain()
	for y, row := range rows {
		if len(row) != world.Width {
			return nil, malformed("terrain row %d has %d tiles, want %d", y, len(row), world.Width)
		}
		for x, v := range row {
			if v < 0 || v >= world.NumTiles {
				return nil, malformed("tile (%d,%d) has unknown type %d", x, y, v)
			}
			t.Tiles[y][x] = world.Tile(v)
		}
	}
	return t, nil
}

// EncodeEntity converts e.
func EncodeEntity(e *entity.Entity) EntityDoc {
	doc := EntityDoc{
		Type:      e.Kind.Name(),
		Tile:      [2]int{e.Tile.X, e.Tile.Y},
		Exhausted: e.Exhausted,
		Life:      e.Life,
	}
	if e.CanRaft() {
		raft := e.Raft
		doc.Raft = &raft
	}
	if e.IsBuilding() {
		level := int(e.Level)
		doc.State = &level
	}
	return doc
}

// DecodeEntity rebuilds an entity, rejecting unknown type tags.
func DecodeEntity(doc EntityDoc) (*entity.Entity, error) {
	kind, err := entity.ParseKind(doc.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	tile := world.Coord{X: doc.Tile[0], Y: doc.Tile[1]}
	if !tile.Valid() {
		return nil, malformed("%s tile %v out of range", doc.Type, tile)
	}
	e := entity.NewAt(kind, tile)
	e.Exhausted = doc.Exhausted
	e.Life = doc.Life
	if doc.Raft != nil && e.CanRaft() {
		e.Raft = *doc.Raft
	}
	if e.IsBuilding() {
		if doc.State == nil {
			return nil, malformed("building at %v has no state", tile)
		}
		if *doc.State < int(entity.LevelHut) || *doc.State > int(entity.LevelCastle) {
			return nil, malformed("building at %v has unknown state %d", tile, *doc.State)
		}
		e.Level = entity.Level(*doc.State)
	}
	return e, nil
}

// EncodeCiv converts c. The replay checkpoint is not part of the document.
func EncodeCiv(c *civ.Civ) CivDoc {
	human := c.Human
	doc := CivDoc{
		Alive:      c.Alive,
		Human:      &human,
		Population: make([]EntityDoc, len(c.Population)),
		Food:       c.Food,
		Wood:       c.Wood,
		Gold:       c.Gold,
	}
	for i, e := range c.Population {
		doc.Population[i] = EncodeEntity(e)
	}
	return doc
}

// DecodeCiv rebuilds a civ. A missing human flag means human.
func DecodeCiv(doc CivDoc) (*civ.Civ, error) {
	c := civ.NewWithResources(civ.Resources{Food: doc.Food, Wood: doc.Wood, Gold: doc.Gold})
	c.Alive = doc.Alive
	if doc.Human != nil {
		c.Human = *doc.Human
	}
	for i, ed := range doc.Population {
		e, err := DecodeEntity(ed)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		c.Population = append(c.Population, e)
	}
	return c, nil
}

// NewGameDoc converts a whole game.
func NewGameDoc(t *world.Terrain, civs []*civ.Civ, active int) GameDoc {
	doc := GameDoc{
		Terrain: EncodeTerrain(t),
		Civs:    make([]CivDoc, len(civs)),
		Active:  active,
	}
	for i, c := range civs {
		doc.Civs[i] = EncodeCiv(c)
	}
	return doc
}

// Restore rebuilds the game described by d.
func (d GameDoc) Restore() (*world.Terrain, []*civ.Civ, int, error) {
	terr, err := DecodeTerrain(d.Terrain)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(d.Civs) > 0 && (d.Active < 0 || d.Active >= len(d.Civs)) {
		return nil, nil, 0, malformed("active civ %d out of range [0,%d)", d.Active, len(d.Civs))
	}
	civs := make([]*civ.Civ, len(d.Civs))
	for i, cd := range d.Civs {
		c, err := DecodeCiv(cd)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("civ %d: %w", i, err)
		}
		civs[i] = c
	}
	return terr, civs, d.Active, nil
}
