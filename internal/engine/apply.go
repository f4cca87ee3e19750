package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/gaia/internal/civ"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

// spawnKinds maps the unit-spawning commands to what they produce.
var spawnKinds = map[entity.Command]entity.Kind{
	entity.CmdGnome:  entity.KindGnome,
	entity.CmdDwarf:  entity.KindDwarf,
	entity.CmdElf:    entity.KindElf,
	entity.CmdDragon: entity.KindDragon,
}

// convertKinds maps the commands that turn a unit into something else.
var convertKinds = map[entity.Command]entity.Kind{
	entity.CmdHut:       entity.KindBuilding,
	entity.CmdFarm:      entity.KindFarm,
	entity.CmdMine:      entity.KindMine,
	entity.CmdTrebuchet: entity.KindTrebuchet,
}

// Apply runs a to completion.
func (g *Game) Apply(a Action) error {
	done, err := g.Begin(a)
	if err != nil {
		return err
	}
	if done != nil {
		done()
	}
	return nil
}

// Begin applies the immediate effects of a and returns the deferred part, if
// any. The deferred part must run before the next action begins; until then
// the doer is still on its original tile.
//
// Actions whose preconditions fail (not enough resources, nowhere to spawn)
// change nothing and return no error. An error means the action itself is
// corrupt.
func (g *Game) Begin(a Action) (func(), error) {
	step := g.Step
	g.Step++

	if a.Kind == entity.CmdEnd {
		g.end(step)
		return nil, nil
	}

	c := g.ActiveCiv()
	if a.Doer < 0 || a.Doer >= len(c.Population) {
		return nil, fmt.Errorf("%w: %s doer %d, civ %d has %d", ErrBadDoer, a.Kind, a.Doer, g.Active, len(c.Population))
	}
	doer := c.Population[a.Doer]

	switch a.Kind {
	case entity.CmdMove:
		if a.Target == nil || !a.Target.Valid() {
			return nil, fmt.Errorf("%w: move to %v", ErrBadTarget, a.Target)
		}
		return g.move(c, doer, *a.Target), nil
	case entity.CmdAttack:
		if a.Target == nil || !a.Target.Valid() {
			return nil, fmt.Errorf("%w: attack on %v", ErrBadTarget, a.Target)
		}
		return g.attack(step, doer, *a.Target)
	case entity.CmdGnome, entity.CmdDwarf, entity.CmdElf, entity.CmdDragon:
		return g.spawn(step, c, doer, a.Kind), nil
	case entity.CmdFort, entity.CmdCastle:
		g.upgrade(step, c, doer, a.Kind)
	case entity.CmdHut, entity.CmdFarm, entity.CmdMine, entity.CmdTrebuchet:
		g.convert(step, c, doer, a.Kind)
	case entity.CmdChop:
		g.chop(step, c, doer)
	case entity.CmdPlant:
		g.plant(c, doer)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return nil, nil
}

// end hands the turn to the next living civ and runs its start of turn.
// Civs that die at the start of their turn are passed over.
func (g *Game) end(step int) {
	g.ActiveCiv().RefreshUnits()

	for range g.Civs {
		g.Active = (g.Active + 1) % len(g.Civs)
		next := g.ActiveCiv()
		wasAlive := next.Alive
		counts := next.StartTurn()
		if next.Alive {
			slog.Debug("turn started", "step", step, "civ", g.Active,
				"creatures", counts.Creatures, "buildings", counts.Buildings,
				"food", next.Food, "wood", next.Wood, "gold", next.Gold)
			g.event(step, "turn", "civ %d begins its turn", g.Active)
			return
		}
		if wasAlive {
			slog.Info("civ died", "step", step, "civ", g.Active)
			g.event(step, "death", "civ %d has fallen", g.Active)
		}
	}

	g.Over = true
	slog.Info("every civ is dead", "step", step)
	g.event(step, "death", "no civ remains")
}

func (g *Game) move(c *civ.Civ, doer *entity.Entity, target world.Coord) func() {
	toWater := g.Terrain.IsWater(target)
	if toWater && !g.Terrain.IsWater(doer.Tile) && !doer.CanFly() {
		c.Wood -= g.Rules.WaterCrossingWood
	}
	doer.SetOnWater(toWater)
	doer.Exhausted = true
	return func() {
		doer.Tile = target
	}
}

// opponent finds the entity on tile owned by a civ other than the active one.
func (g *Game) opponent(tile world.Coord) (*entity.Entity, *civ.Civ) {
	for i, c := range g.Civs {
		if i == g.Active {
			continue
		}
		for _, e := range c.Population {
			if e.Tile == tile {
				return e, c
			}
		}
	}
	return nil, nil
}

func (g *Game) attack(step int, attacker *entity.Entity, target world.Coord) (func(), error) {
	victim, owner := g.opponent(target)
	if victim == nil {
		return nil, fmt.Errorf("%w: no opponent at %v", ErrBadTarget, target)
	}
	attacker.Exhausted = true
	active := g.ActiveCiv()

	if !victim.IsCreature() {
		return func() {
			owner.Remove(victim)
			active.Add(victim)
			g.event(step, "combat", "%s captured %s", attacker, victim)
		}, nil
	}
	if attacker.Strength() >= victim.Life {
		return func() {
			attacker.Tile = victim.Tile
			attacker.SetOnWater(g.Terrain.IsWater(victim.Tile))
			attacker.Life++
			victim.Life = 0
			owner.Remove(victim)
			g.event(step, "combat", "%s killed %s", attacker, victim)
		}, nil
	}
	return func() {
		attacker.Strike(victim)
		g.event(step, "combat", "%s struck %s, life %d", attacker, victim, victim.Life)
	}, nil
}

// spawn has a building produce a unit on the nearest open land tile, or the
// nearest open water tile if there is no land. The unit starts on the
// building's tile and reaches its spot when the deferred part runs.
func (g *Game) spawn(step int, c *civ.Civ, doer *entity.Entity, cmd entity.Command) func() {
	cost := g.cost(cmd)
	if !doer.IsBuilding() || !c.Afford(cost) {
		return nil
	}
	t := g.Targeter()
	spot, ok := t.NearestOpenSpot(doer.Tile, false)
	if !ok {
		spot, ok = t.NearestOpenSpot(doer.Tile, true)
	}
	if !ok {
		slog.Debug("no room to spawn", "step", step, "cmd", cmd, "at", doer.Tile)
		return nil
	}

	c.Pay(cost)
	doer.Exhausted = true
	unit := entity.NewAt(spawnKinds[cmd], doer.Tile)
	unit.Exhausted = true
	c.Add(unit)
	g.event(step, "build", "%s spawned from %s", unit.Kind, doer)
	return func() {
		unit.Tile = spot
		unit.SetOnWater(g.Terrain.IsWater(spot))
	}
}

// convert replaces a unit with whatever it builds, on the same tile.
func (g *Game) convert(step int, c *civ.Civ, doer *entity.Entity, cmd entity.Command) {
	cost := g.cost(cmd)
	if !doer.IsCreature() || !c.Afford(cost) {
		return
	}
	c.Pay(cost)
	built := entity.NewAt(convertKinds[cmd], doer.Tile)
	built.SetOnWater(g.Terrain.IsWater(doer.Tile))
	built.Exhausted = true
	c.Add(built)
	c.Remove(doer)
	g.event(step, "build", "%s became %s", doer, built)
}

func (g *Game) upgrade(step int, c *civ.Civ, doer *entity.Entity, cmd entity.Command) {
	want := entity.LevelHut
	if cmd == entity.CmdCastle {
		want = entity.LevelFort
	}
	cost := g.cost(cmd)
	if !doer.IsBuilding() || doer.Level != want || !c.Afford(cost) {
		return
	}
	c.Pay(cost)
	doer.Upgrade()
	g.event(step, "build", "%s upgraded to %s", doer, cmd)
}

// chop clears the forest under doer for wood. A random land tile elsewhere
// grows into forest.
func (g *Game) chop(step int, c *civ.Civ, doer *entity.Entity) {
	cost := g.cost(entity.CmdChop)
	if !c.Afford(cost) {
		return
	}
	if land, ok := g.Terrain.RandomTileOfType(g.actionRand(step), world.TileLand); ok {
		g.Terrain.SetTile(land, world.TileForest)
	}
	doer.Exhausted = true
	g.Terrain.SetTile(doer.Tile, world.TileLand)
	c.Pay(cost)
}

func (g *Game) plant(c *civ.Civ, doer *entity.Entity) {
	cost := g.cost(entity.CmdPlant)
	if !c.Afford(cost) {
		return
	}
	c.Pay(cost)
	doer.Exhausted = true
	g.Terrain.SetTile(doer.Tile, world.TileForest)
}
