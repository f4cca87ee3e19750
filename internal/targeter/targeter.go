// Package targeter computes legal move and attack targets by breadth-first
// search over the hex grid.
//
// A Targeter is an immutable occupancy snapshot taken when it is built. It is
// never updated; build a new one after the game state changes.
package targeter

import (
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

// NoCiv marks an unoccupied tile in the civ index.
const NoCiv = -1

// Spot is a BFS frontier node.
type Spot struct {
	Tile  world.Coord
	Steps int
	Prev  *Spot
}

// Path returns the tiles from the search origin to s, inclusive.
func (s *Spot) Path() []world.Coord {
	var rev []world.Coord
	for p := s; p != nil; p = p.Prev {
		rev = append(rev, p.Tile)
	}
	path := make([]world.Coord, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

// Targeter answers reachability queries against one snapshot of the board.
type Targeter struct {
	terr     *world.Terrain
	occupant [world.Height][world.Width]*entity.Entity
	civ      [world.Height][world.Width]int

	// MeleeCrossesWater lets non-shooting attackers search across water.
	// Off by default: only ranged attacks reach over water.
	MeleeCrossesWater bool
}

// New indexes every entity of every civ. populations[i] is civ i's roster.
func New(terr *world.Terrain, populations [][]*entity.Entity) *Targeter {
	t := &Targeter{terr: terr}
	for y := range t.civ {
		for x := range t.civ[y] {
			t.civ[y][x] = NoCiv
		}
	}
	for i, pop := range populations {
		for _, e := range pop {
			t.occupant[e.Tile.Y][e.Tile.X] = e
			t.civ[e.Tile.Y][e.Tile.X] = i
		}
	}
	return t
}

// Occupant returns the entity on c and its civ index, or nil and NoCiv.
func (t *Targeter) Occupant(c world.Coord) (*entity.Entity, int) {
	return t.occupant[c.Y][c.X], t.civ[c.Y][c.X]
}

func (t *Targeter) occupied(c world.Coord) bool {
	return t.occupant[c.Y][c.X] != nil
}

// NearestOpenSpot returns the first unoccupied tile reached by BFS from
// origin, skipping water unless allowWater. Ties between equally distant
// tiles go to whichever Adjacent lists first, not the geometrically nearest.
func (t *Targeter) NearestOpenSpot(origin world.Coord, allowWater bool) (world.Coord, bool) {
	var seen [world.Height][world.Width]bool
	seen[origin.Y][origin.X] = true
	queue := []world.Coord{origin}

	for len(queue) > 0 {
		spot := queue[0]
		queue = queue[1:]
		for _, n := range world.Adjacent(spot) {
			if seen[n.Y][n.X] {
				continue
			}
			if t.terr.IsWater(n) && !allowWater {
				continue
			}
			if !t.occupied(n) {
				return n, true
			}
			seen[n.Y][n.X] = true
			queue = append(queue, n)
		}
	}
	return world.Coord{}, false
}

// MoveTargets returns every unoccupied tile reachable from origin in at most
// steps moves.
//
// Occupied tiles other than origin are neither targets nor expanded. From a
// land origin, stepping onto water needs canEnterWater, and a water tile ends
// the branch unless canMoveOnWater. From a water origin, reaching land ends
// the branch unless canMoveOnWater.
func (t *Targeter) MoveTargets(origin world.Coord, steps int, canEnterWater, canMoveOnWater bool) []*Spot {
	startedOnWater := t.terr.IsWater(origin)

	var seen [world.Height][world.Width]bool
	seen[origin.Y][origin.X] = true
	queue := []*Spot{{Tile: origin}}
	var targets []*Spot

	for len(queue) > 0 {
		spot := queue[0]
		queue = queue[1:]

		keepGoing := spot.Steps < steps
		if spot.Steps > 0 {
			if t.occupied(spot.Tile) {
				continue
			}
			targets = append(targets, spot)
		}
		onWater := t.terr.IsWater(spot.Tile)
		if startedOnWater {
			if !onWater && !canMoveOnWater {
				keepGoing = false
			}
		} else if onWater && !canMoveOnWater {
			keepGoing = false
		}
		if !keepGoing {
			continue
		}

		for _, n := range world.Adjacent(spot.Tile) {
			if seen[n.Y][n.X] {
				continue
			}
			if !startedOnWater && t.terr.IsWater(n) && !canEnterWater {
				continue
			}
			seen[n.Y][n.X] = true
			queue = append(queue, &Spot{Tile: n, Steps: spot.Steps + 1, Prev: spot})
		}
	}
	return targets
}

// AttackTargets returns tiles within steps of origin that hold an entity of a
// civ other than activeCiv.
//
// Without canShoot the search stops at the first occupied tile on each branch
// and does not cross water. With canShoot it passes through occupants and water.
func (t *Targeter) AttackTargets(origin world.Coord, steps, activeCiv int, canShoot bool) []*Spot {
	crossesWater := canShoot || t.MeleeCrossesWater

	var seen [world.Height][world.Width]bool
	seen[origin.Y][origin.X] = true
	queue := []*Spot{{Tile: origin}}
	var targets []*Spot

	for len(queue) > 0 {
		spot := queue[0]
		queue = queue[1:]

		keepGoing := spot.Steps < steps
		if occ, civ := t.Occupant(spot.Tile); spot.Steps > 0 && occ != nil {
			if civ != activeCiv {
				targets = append(targets, spot)
			}
			if !canShoot {
				keepGoing = false
			}
		}
		if !keepGoing {
			continue
		}

		for _, n := range world.Adjacent(spot.Tile) {
			if seen[n.Y][n.X] {
				continue
			}
			if t.terr.IsWater(n) && !crossesWater {
				continue
			}
			seen[n.Y][n.X] = true
			queue = append(queue, &Spot{Tile: n, Steps: spot.Steps + 1, Prev: spot})
		}
	}
	return targets
}

// Tiles extracts the coordinates of spots.
func Tiles(spots []*Spot) []world.Coord {
	out := make([]world.Coord, len(spots))
	for i, s := range spots {
		out[i] = s.Tile
	}
	return out
}

// Contains reports whether any spot sits on c.
func Contains(spots []*Spot, c world.Coord) bool {
	for _, s := range spots {
		if s.Tile == c {
			return true
		}
	}
	return false
}
