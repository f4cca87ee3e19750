// Package civ provides the per-player civilization state: resource economy,
// population roster, alive/dead lifecycle and fog-of-war visibility.
package civ

import (
	"math/rand"

	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

// Starting resources for a fresh civ.
const (
	StartFood = 7
	StartWood = 7
	StartGold = 1
)

// Resources is a civ's stockpile.
type Resources struct {
	Food int `json:"food" yaml:"food"`
	Wood int `json:"wood" yaml:"wood"`
	Gold int `json:"gold" yaml:"gold"`
}

// Afford reports whether r covers cost. Yields (negative entries) are always
// affordable.
func (r Resources) Afford(cost entity.Cost) bool {
	return r.Food >= cost.Food && r.Wood >= cost.Wood && r.Gold >= cost.Gold
}

// Pay debits cost from r. Negative cost entries credit r.
func (r *Resources) Pay(cost entity.Cost) {
	r.Food -= cost.Food
	r.Wood -= cost.Wood
	r.Gold -= cost.Gold
}

// Checkpoint is the full game state a civ last saw plus the history cursor
// to resume replay from. An empty checkpoint has a nil State.
type Checkpoint struct {
	State  []byte
	Cursor int
}

// Valid reports whether the checkpoint holds a state.
func (c Checkpoint) Valid() bool {
	return c.State != nil
}

// Civ is one player's civilization.
type Civ struct {
	Resources
	Population []*entity.Entity
	Alive      bool
	Human      bool

	checkpoint Checkpoint
}

// New creates a living human civ with the stock starting resources.
func New() *Civ {
	return NewWithResources(Resources{Food: StartFood, Wood: StartWood, Gold: StartGold})
}

// NewWithResources creates a living human civ with the given stockpile.
func NewWithResources(r Resources) *Civ {
	return &Civ{
		Resources: r,
		Alive:     true,
		Human:     true,
	}
}

// Counts tallies the population by role.
type Counts struct {
	Creatures int
	Buildings int
	Farms     int
	Mines     int
}

// Count tallies the civ's population.
func (c *Civ) Count() Counts {
	var n Counts
	for _, e := range c.Population {
		switch {
		case e.IsFarm():
			n.Farms++
		case e.IsMine():
			n.Mines++
		case e.IsCreature():
			n.Creatures++
		case e.IsBuilding():
			n.Buildings++
		}
	}
	return n
}

// StartTurn runs the civ's start-of-turn bookkeeping: farms yield food, mines
// yield gold, and both are exhausted for the turn. The civ dies if it has no
// creatures and either no buildings or too little food with no farms.
// Returns the counts it computed. Dead civs are left untouched.
func (c *Civ) StartTurn() Counts {
	if !c.Alive {
		return Counts{}
	}

	for _, e := range c.Population {
		switch {
		case e.IsFarm():
			c.Food++
			e.Exhausted = true
		case e.IsMine():
			c.Gold++
			e.Exhausted = true
		}
	}

	n := c.Count()
	if n.Creatures == 0 && (n.Buildings == 0 || (c.Food < 2 && n.Farms == 0)) {
		c.Alive = false
	}
	return n
}

// RefreshUnits clears the exhausted flag of every entity.
func (c *Civ) RefreshUnits() {
	for _, e := range c.Population {
		e.Exhausted = false
	}
}

// IndexOf returns the population index of e, or -1.
func (c *Civ) IndexOf(e *entity.Entity) int {
	for i, p := range c.Population {
		if p == e {
			return i
		}
	}
	return -1
}

// Remove drops e from the population. Reports whether it was present.
func (c *Civ) Remove(e *entity.Entity) bool {
	i := c.IndexOf(e)
	if i < 0 {
		return false
	}
	c.Population = append(c.Population[:i], c.Population[i+1:]...)
	return true
}

// Add appends e to the population.
func (c *Civ) Add(e *entity.Entity) {
	c.Population = append(c.Population, e)
}

// VisibilityMap marks every tile within each entity's visibility radius,
// measured in grid steps.
func (c *Civ) VisibilityMap() [world.Height][world.Width]bool {
	var vis [world.Height][world.Width]bool
	type node struct {
		c     world.Coord
		depth int
	}
	for _, e := range c.Population {
		radius := e.Visibility()
		var seen [world.Height][world.Width]bool
		seen[e.Tile.Y][e.Tile.X] = true
		vis[e.Tile.Y][e.Tile.X] = true
		queue := []node{{e.Tile, 0}}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if n.depth >= radius {
				continue
			}
			for _, adj := range world.Adjacent(n.c) {
				if seen[adj.Y][adj.X] {
					continue
				}
				seen[adj.Y][adj.X] = true
				vis[adj.Y][adj.X] = true
				queue = append(queue, node{adj, n.depth + 1})
			}
		}
	}
	return vis
}

// PlaceStarterHut gives the civ a hut on a land tile chosen to be far from
// every entity already on the map. Returns false if there is no land.
func (c *Civ) PlaceStarterHut(rng *rand.Rand, terr *world.Terrain, all []*Civ) bool {
	var occupied []world.Coord
	for _, other := range all {
		for _, e := range other.Population {
			occupied = append(occupied, e.Tile)
		}
	}
	candidates := terr.TileSpotsOfType(world.LandTiles...)
	spot, ok := world.FarthestSpot(rng, candidates, occupied, world.PlacementAttempts)
	if !ok {
		return false
	}
	c.Add(entity.NewAt(entity.KindBuilding, spot))
	return true
}

// SetCheckpoint records the state the civ saw when it ended its turn.
func (c *Civ) SetCheckpoint(state []byte, cursor int) {
	c.checkpoint = Checkpoint{State: state, Cursor: cursor}
}

// Checkpoint returns the civ's replay checkpoint without clearing it.
func (c *Civ) Checkpoint() Checkpoint {
	return c.checkpoint
}

// TakeCheckpoint returns and clears the civ's replay checkpoint.
func (c *Civ) TakeCheckpoint() Checkpoint {
	cp := c.checkpoint
	c.checkpoint = Checkpoint{}
	return cp
}

// OwnedSpot is a tile held by the civ for the ownership overlay.
type OwnedSpot struct {
	Tile      world.Coord
	Exhausted bool
}

// OwnedSpots lists the tiles of the civ's population.
func (c *Civ) OwnedSpots() []OwnedSpot {
	spots := make([]OwnedSpot, len(c.Population))
	for i, e := range c.Population {
		spots[i] = OwnedSpot{Tile: e.Tile, Exhausted: e.Exhausted}
	}
	return spots
}

// Clone deep-copies the civ, including its checkpoint reference.
func (c *Civ) Clone() *Civ {
	out := *c
	out.Population = make([]*entity.Entity, len(c.Population))
	for i, e := range c.Population {
		out.Population[i] = e.Clone()
	}
	return &out
}

// Populations extracts the rosters of civs, indexed like civs.
func Populations(civs []*Civ) [][]*entity.Entity {
	pops := make([][]*entity.Entity, len(civs))
	for i, c := range civs {
		pops[i] = c.Population
	}
	return pops
}
