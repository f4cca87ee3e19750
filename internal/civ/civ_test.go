package civ

import (
	"math/rand"
	"testing"

	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

func TestNew_StartingResources(t *testing.T) {
	c := New()
	if c.Food != 7 || c.Wood != 7 || c.Gold != 1 {
		t.Fatalf("resources = %+v, want 7/7/1", c.Resources)
	}
	if !c.Alive || !c.Human {
		t.Fatal("new civs are alive humans")
	}
}

func TestStartTurn_Production(t *testing.T) {
	c := New()
	farm := entity.NewAt(entity.KindFarm, world.Coord{X: 1, Y: 1})
	mine := entity.NewAt(entity.KindMine, world.Coord{X: 2, Y: 2})
	gnome := entity.NewAt(entity.KindGnome, world.Coord{X: 3, Y: 3})
	c.Population = []*entity.Entity{farm, mine, gnome}

	n := c.StartTurn()
	if c.Food != 8 || c.Gold != 2 {
		t.Fatalf("food=%d gold=%d, want 8 and 2", c.Food, c.Gold)
	}
	if !farm.Exhausted || !mine.Exhausted || gnome.Exhausted {
		t.Fatal("farms and mines work the turn; creatures stay fresh")
	}
	if n.Creatures != 1 || n.Farms != 1 || n.Mines != 1 {
		t.Fatalf("counts = %+v", n)
	}
	if !c.Alive {
		t.Fatal("civ with a creature must live")
	}
}

func TestStartTurn_DeathRule(t *testing.T) {
	cases := []struct {
		name  string
		pop   []entity.Kind
		food  int
		alive bool
	}{
		{"empty", nil, 7, false},
		{"hut with food", []entity.Kind{entity.KindBuilding}, 2, true},
		{"hut starving", []entity.Kind{entity.KindBuilding}, 1, false},
		{"hut starving with farm", []entity.Kind{entity.KindBuilding, entity.KindFarm}, 0, true},
		{"only a mine", []entity.Kind{entity.KindMine}, 7, false},
		{"lone gnome", []entity.Kind{entity.KindGnome}, 0, true},
	}
	for _, tc := range cases {
		c := New()
		c.Food = tc.food
		for i, k := range tc.pop {
			c.Add(entity.NewAt(k, world.Coord{X: i, Y: 0}))
		}
		// Farms produce before the check, so a farm alone always saves the civ.
		c.StartTurn()
		if c.Alive != tc.alive {
			t.Fatalf("%s: alive=%v, want %v", tc.name, c.Alive, tc.alive)
		}
	}
}

func TestStartTurn_DeadCivUntouched(t *testing.T) {
	c := New()
	c.Alive = false
	c.Add(entity.NewAt(entity.KindFarm, world.Coord{}))
	c.StartTurn()
	if c.Food != StartFood {
		t.Fatal("dead civs do not produce")
	}
}

func TestVisibilityMap_StepRadius(t *testing.T) {
	c := New()
	origin := world.Coord{X: 8, Y: 8}
	c.Add(entity.NewAt(entity.KindGnome, origin)) // visibility 2
	vis := c.VisibilityMap()

	count := 0
	for y := range vis {
		for x := range vis[y] {
			if vis[y][x] {
				count++
			}
		}
	}
	// A radius-2 hex disc covers 1 + 6 + 12 tiles.
	if count != 19 {
		t.Fatalf("visible tiles = %d, want 19", count)
	}
	if !vis[origin.Y][origin.X] {
		t.Fatal("own tile must be visible")
	}
	if vis[8][11] {
		t.Fatal("three columns away should be hidden")
	}
}

func TestPlaceStarterHut(t *testing.T) {
	terr := world.NewTerrain()
	if New().PlaceStarterHut(rand.New(rand.NewSource(1)), terr, nil) {
		t.Fatal("no land should mean no hut")
	}

	terr.SetTile(world.Coord{X: 15, Y: 15}, world.TileForest)
	a := New()
	a.Add(entity.NewAt(entity.KindGnome, world.Coord{X: 1, Y: 0}))
	b := New()
	civs := []*Civ{a, b}
	if !b.PlaceStarterHut(rand.New(rand.NewSource(5)), terr, civs) {
		t.Fatal("expected a hut")
	}
	hut := b.Population[0]
	if !hut.IsBuilding() || hut.Level != entity.LevelHut {
		t.Fatalf("placed %v, want a hut", hut)
	}
	if hut.Tile != (world.Coord{X: 15, Y: 15}) {
		t.Fatalf("hut at %v, want the only land tile", hut.Tile)
	}
}

func TestPlaceStarterHut_DistinctTiles(t *testing.T) {
	terr := world.NewTerrain()
	terr.SetTile(world.Coord{X: 4, Y: 4}, world.TileLand)
	terr.SetTile(world.Coord{X: 4, Y: 5}, world.TileLand)
	for seed := int64(0); seed < 20; seed++ {
		a, b := New(), New()
		civs := []*Civ{a, b}
		rng := rand.New(rand.NewSource(seed))
		if !a.PlaceStarterHut(rng, terr, civs) || !b.PlaceStarterHut(rng, terr, civs) {
			t.Fatalf("seed %d: expected two huts", seed)
		}
		if a.Population[0].Tile == b.Population[0].Tile {
			t.Fatalf("seed %d: both huts at %v", seed, a.Population[0].Tile)
		}
	}
}

func TestCheckpoint(t *testing.T) {
	c := New()
	if c.Checkpoint().Valid() {
		t.Fatal("fresh civs have no checkpoint")
	}
	c.SetCheckpoint([]byte(`{}`), 4)
	cp := c.TakeCheckpoint()
	if !cp.Valid() || cp.Cursor != 4 {
		t.Fatalf("checkpoint = %+v", cp)
	}
	if c.Checkpoint().Valid() {
		t.Fatal("TakeCheckpoint must clear it")
	}
}

func TestResources_AffordPay(t *testing.T) {
	r := Resources{Food: 2, Wood: 0, Gold: 0}
	if !r.Afford(entity.Cost{Food: 2}) || r.Afford(entity.Cost{Food: 3}) {
		t.Fatal("afford mismatch")
	}
	r.Pay(entity.Cost{Wood: -3})
	if r.Wood != 3 {
		t.Fatalf("negative cost should credit, wood=%d", r.Wood)
	}
}
