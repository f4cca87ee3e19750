package engine

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/talgya/gaia/internal/civ"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/targeter"
	"github.com/talgya/gaia/internal/world"
)

// ErrIllegal is returned for actions the selected entity cannot take now.
var ErrIllegal = errors.New("illegal action")

// Options are the actions open to one selected entity.
type Options struct {
	Moves   []world.Coord
	Attacks []world.Coord
	Menu    []entity.Command
}

// Legal lists what entity sel of the active civ may do. Exhausted entities
// and out-of-range selections have no options.
func (g *Game) Legal(sel int) Options {
	c := g.ActiveCiv()
	if g.Over || sel < 0 || sel >= len(c.Population) {
		return Options{}
	}
	e := c.Population[sel]
	if e.Exhausted {
		return Options{}
	}

	t := g.Targeter()
	canEnterWater := e.CanFly() || (e.CanRaft() && c.Wood >= g.Rules.WaterCrossingWood)
	return Options{
		Moves:   targeter.Tiles(t.MoveTargets(e.Tile, e.MoveRange(), canEnterWater, e.CanFly())),
		Attacks: targeter.Tiles(t.AttackTargets(e.Tile, e.AttackRange(), g.Active, e.CanShoot())),
		Menu:    e.MenuOptions(g.Terrain.Tile(e.Tile)),
	}
}

// Check reports whether a is legal for the active civ right now.
func (g *Game) Check(a Action) error {
	if !a.Kind.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	if a.Kind == entity.CmdEnd {
		return nil
	}
	c := g.ActiveCiv()
	if a.Doer < 0 || a.Doer >= len(c.Population) {
		return fmt.Errorf("%w: %d", ErrBadDoer, a.Doer)
	}
	opts := g.Legal(a.Doer)
	ok := false
	switch a.Kind {
	case entity.CmdMove:
		ok = a.Target != nil && slices.Contains(opts.Moves, *a.Target)
	case entity.CmdAttack:
		ok = a.Target != nil && slices.Contains(opts.Attacks, *a.Target)
	default:
		ok = slices.Contains(opts.Menu, a.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: %s by %s", ErrIllegal, a, c.Population[a.Doer])
	}
	return nil
}

// Sighting is an entity the observer can see.
type Sighting struct {
	Civ    int
	Index  int // Position in the owner's population
	Entity entity.Entity
}

// View is what one civ gets to see of the board.
type View struct {
	Observer  int
	Active    int
	Tiles     [world.Height][world.Width]world.Tile // Fog outside vision
	Owned     [][]civ.OwnedSpot                     // Per civ, visible tiles only
	Entities  []Sighting                            // Back to front
	Resources civ.Resources                         // The observer's stockpile
}

// View renders the board from observer's point of view.
func (g *Game) View(observer int) View {
	v := View{Observer: observer, Active: g.Active}
	if observer < 0 || observer >= len(g.Civs) {
		return v
	}
	vis := g.Civs[observer].VisibilityMap()

	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			if vis[y][x] {
				v.Tiles[y][x] = g.Terrain.Tiles[y][x]
			} else {
				v.Tiles[y][x] = world.TileFog
			}
		}
	}

	v.Owned = make([][]civ.OwnedSpot, len(g.Civs))
	for i, c := range g.Civs {
		for _, s := range c.OwnedSpots() {
			if vis[s.Tile.Y][s.Tile.X] {
				v.Owned[i] = append(v.Owned[i], s)
			}
		}
		for j, e := range c.Population {
			if vis[e.Tile.Y][e.Tile.X] {
				v.Entities = append(v.Entities, Sighting{Civ: i, Index: j, Entity: *e})
			}
		}
	}
	sort.SliceStable(v.Entities, func(a, b int) bool {
		return v.Entities[a].Entity.Tile.Y < v.Entities[b].Entity.Tile.Y
	})

	v.Resources = g.Civs[observer].Resources
	return v
}
