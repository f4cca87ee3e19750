package targeter

import (
	"testing"

	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

func landTerrain() *world.Terrain {
	terr := world.NewTerrain()
	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			terr.SetTile(world.Coord{X: x, Y: y}, world.TileLand)
		}
	}
	return terr
}

// bfsDistance is an independent shortest-path oracle over passable tiles.
func bfsDistance(from, to world.Coord, passable func(world.Coord) bool) int {
	dist := map[world.Coord]int{from: 0}
	queue := []world.Coord{from}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == to {
			return dist[c]
		}
		for _, n := range world.Adjacent(c) {
			if _, ok := dist[n]; ok || !passable(n) {
				continue
			}
			dist[n] = dist[c] + 1
			queue = append(queue, n)
		}
	}
	return -1
}

func TestOccupantIndex(t *testing.T) {
	terr := landTerrain()
	a := entity.NewAt(entity.KindGnome, world.Coord{X: 2, Y: 2})
	b := entity.NewAt(entity.KindBuilding, world.Coord{X: 5, Y: 5})
	tg := New(terr, [][]*entity.Entity{{a}, {b}})

	if e, civ := tg.Occupant(world.Coord{X: 2, Y: 2}); e != a || civ != 0 {
		t.Fatalf("occupant = %v civ %d", e, civ)
	}
	if e, civ := tg.Occupant(world.Coord{X: 5, Y: 5}); e != b || civ != 1 {
		t.Fatalf("occupant = %v civ %d", e, civ)
	}
	if e, civ := tg.Occupant(world.Coord{X: 0, Y: 0}); e != nil || civ != NoCiv {
		t.Fatalf("empty tile occupant = %v civ %d", e, civ)
	}
}

func TestNearestOpenSpot_FirstInTraversalOrder(t *testing.T) {
	terr := landTerrain()
	hut := entity.NewAt(entity.KindBuilding, world.Coord{X: 4, Y: 4})
	tg := New(terr, [][]*entity.Entity{{hut}})

	got, ok := tg.NearestOpenSpot(hut.Tile, false)
	if !ok || got != (world.Coord{X: 3, Y: 4}) {
		t.Fatalf("got %v, want (3,4) (left is listed first)", got)
	}
}

func TestNearestOpenSpot_WaterRules(t *testing.T) {
	terr := world.NewTerrain() // all water
	origin := world.Coord{X: 7, Y: 7}
	terr.SetTile(origin, world.TileLand)
	hut := entity.NewAt(entity.KindBuilding, origin)
	tg := New(terr, [][]*entity.Entity{{hut}})

	if _, ok := tg.NearestOpenSpot(origin, false); ok {
		t.Fatal("island of one tile has no dry open spot")
	}
	got, ok := tg.NearestOpenSpot(origin, true)
	if !ok || got != (world.Coord{X: 6, Y: 7}) {
		t.Fatalf("got %v %v, want water tile (6,7)", got, ok)
	}
}

func TestNearestOpenSpot_SkipsOccupied(t *testing.T) {
	terr := landTerrain()
	origin := world.Coord{X: 4, Y: 4}
	pop := []*entity.Entity{entity.NewAt(entity.KindBuilding, origin)}
	for _, n := range world.Adjacent(origin) {
		pop = append(pop, entity.NewAt(entity.KindGnome, n))
	}
	tg := New(terr, [][]*entity.Entity{pop})

	got, ok := tg.NearestOpenSpot(origin, false)
	if !ok {
		t.Fatal("expected a spot in the second ring")
	}
	if d := bfsDistance(origin, got, func(world.Coord) bool { return true }); d != 2 {
		t.Fatalf("got %v at distance %d, want 2", got, d)
	}
}

func TestMoveTargets_WithinRange(t *testing.T) {
	terr := landTerrain()
	origin := world.Coord{X: 7, Y: 7}
	g := entity.NewAt(entity.KindGnome, origin)
	tg := New(terr, [][]*entity.Entity{{g}})

	for steps := 0; steps <= 4; steps++ {
		spots := tg.MoveTargets(origin, steps, false, false)
		for _, s := range spots {
			if s.Tile == origin {
				t.Fatal("origin must not be a target")
			}
			if s.Steps > steps {
				t.Fatalf("spot %v has %d steps, range %d", s.Tile, s.Steps, steps)
			}
			if d := bfsDistance(origin, s.Tile, func(world.Coord) bool { return true }); d != s.Steps {
				t.Fatalf("spot %v steps=%d, shortest=%d", s.Tile, s.Steps, d)
			}
			if p := s.Path(); len(p) != s.Steps+1 || p[0] != origin || p[len(p)-1] != s.Tile {
				t.Fatalf("bad path %v for %v", p, s.Tile)
			}
		}
	}
	if n := len(tg.MoveTargets(origin, 1, false, false)); n != 6 {
		t.Fatalf("range 1 targets = %d, want 6", n)
	}
	if n := len(tg.MoveTargets(origin, 0, false, false)); n != 0 {
		t.Fatalf("range 0 targets = %d, want 0", n)
	}
}

func TestMoveTargets_OccupiedBlocks(t *testing.T) {
	terr := world.NewTerrain()
	// A one-tile-wide land corridor along row 0: (0,0) .. (5,0).
	for x := 0; x <= 5; x++ {
		terr.SetTile(world.Coord{X: x, Y: 0}, world.TileLand)
	}
	mover := entity.NewAt(entity.KindElf, world.Coord{X: 0, Y: 0})
	blocker := entity.NewAt(entity.KindGnome, world.Coord{X: 2, Y: 0})
	tg := New(terr, [][]*entity.Entity{{mover, blocker}})

	spots := tg.MoveTargets(mover.Tile, 3, false, false)
	if len(spots) != 1 || spots[0].Tile != (world.Coord{X: 1, Y: 0}) {
		t.Fatalf("targets = %v, want only (1,0)", Tiles(spots))
	}
}

func TestMoveTargets_WaterEntry(t *testing.T) {
	terr := world.NewTerrain()
	origin := world.Coord{X: 4, Y: 4}
	terr.SetTile(origin, world.TileLand)
	g := entity.NewAt(entity.KindGnome, origin)
	tg := New(terr, [][]*entity.Entity{{g}})

	if n := len(tg.MoveTargets(origin, 2, false, false)); n != 0 {
		t.Fatalf("no water permission: %d targets, want 0", n)
	}
	// Entering water is allowed but a raft stops on the first water tile.
	spots := tg.MoveTargets(origin, 2, true, false)
	if len(spots) != 6 {
		t.Fatalf("with permission: %d targets, want the 6 neighbors", len(spots))
	}
	for _, s := range spots {
		if s.Steps != 1 {
			t.Fatalf("%v reached in %d steps; water should end the branch", s.Tile, s.Steps)
		}
	}
	// Fliers keep going.
	if n := len(tg.MoveTargets(origin, 2, true, true)); n <= 6 {
		t.Fatalf("flier targets = %d, want more than 6", n)
	}
}

func TestMoveTargets_FromWater(t *testing.T) {
	terr := landTerrain()
	origin := world.Coord{X: 4, Y: 4}
	terr.SetTile(origin, world.TileWater)
	terr.SetTile(world.Coord{X: 3, Y: 4}, world.TileWater)
	g := entity.NewAt(entity.KindGnome, origin)
	g.Raft = true
	tg := New(terr, [][]*entity.Entity{{g}})

	for _, s := range tg.MoveTargets(origin, 2, false, false) {
		if s.Steps == 2 && !terr.IsWater(s.Prev.Tile) {
			t.Fatalf("%v reached through land %v; landing should end the move", s.Tile, s.Prev.Tile)
		}
	}
}

func TestAttackTargets_MeleeStopsAtFirstOccupant(t *testing.T) {
	terr := world.NewTerrain()
	for x := 0; x <= 5; x++ {
		terr.SetTile(world.Coord{X: x, Y: 0}, world.TileLand)
	}
	attacker := entity.NewAt(entity.KindDwarf, world.Coord{X: 0, Y: 0})
	near := entity.NewAt(entity.KindGnome, world.Coord{X: 1, Y: 0})
	far := entity.NewAt(entity.KindGnome, world.Coord{X: 2, Y: 0})
	tg := New(terr, [][]*entity.Entity{{attacker}, {near, far}})

	melee := tg.AttackTargets(attacker.Tile, 3, 0, false)
	if len(melee) != 1 || melee[0].Tile != near.Tile {
		t.Fatalf("melee targets = %v, want only %v", Tiles(melee), near.Tile)
	}
	ranged := tg.AttackTargets(attacker.Tile, 3, 0, true)
	if len(ranged) != 2 {
		t.Fatalf("ranged targets = %v, want both", Tiles(ranged))
	}
}

func TestAttackTargets_SkipsFriendsAndSelf(t *testing.T) {
	terr := landTerrain()
	attacker := entity.NewAt(entity.KindElf, world.Coord{X: 5, Y: 5})
	friend := entity.NewAt(entity.KindGnome, world.Coord{X: 6, Y: 5})
	tg := New(terr, [][]*entity.Entity{{attacker, friend}})

	if spots := tg.AttackTargets(attacker.Tile, 4, 0, true); len(spots) != 0 {
		t.Fatalf("targets = %v, want none", Tiles(spots))
	}
}

func TestAttackTargets_Water(t *testing.T) {
	terr := world.NewTerrain()
	terr.SetTile(world.Coord{X: 0, Y: 0}, world.TileLand)
	terr.SetTile(world.Coord{X: 2, Y: 0}, world.TileLand)
	attacker := entity.NewAt(entity.KindDwarf, world.Coord{X: 0, Y: 0})
	enemy := entity.NewAt(entity.KindGnome, world.Coord{X: 2, Y: 0})
	tg := New(terr, [][]*entity.Entity{{attacker}, {enemy}})

	if spots := tg.AttackTargets(attacker.Tile, 3, 0, false); len(spots) != 0 {
		t.Fatalf("melee across water = %v, want none", Tiles(spots))
	}
	if spots := tg.AttackTargets(attacker.Tile, 3, 0, true); len(spots) != 1 {
		t.Fatalf("ranged across water = %v, want the enemy", Tiles(spots))
	}
	tg.MeleeCrossesWater = true
	if spots := tg.AttackTargets(attacker.Tile, 3, 0, false); len(spots) != 1 {
		t.Fatalf("melee with water policy = %v, want the enemy", Tiles(spots))
	}
}
