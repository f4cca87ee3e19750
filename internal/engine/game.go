// Package engine applies actions to the game state and drives turns.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand"

	"github.com/talgya/gaia/internal/civ"
	"github.com/talgya/gaia/internal/config"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/snapshot"
	"github.com/talgya/gaia/internal/targeter"
	"github.com/talgya/gaia/internal/world"
)

// ErrNoLand is returned when generated terrain has nowhere to place a hut.
var ErrNoLand = errors.New("no land for starter hut")

// maxEvents caps the event log.
const maxEvents = 1000

// Rules are the balance settings actions are applied under.
type Rules struct {
	Costs             map[entity.Command]entity.Cost
	WaterCrossingWood int
	MeleeCrossesWater bool
}

// DefaultRules returns the stock rules.
func DefaultRules() Rules {
	return RulesFrom(config.Default())
}

// RulesFrom extracts the rules from a config.
func RulesFrom(cfg config.Config) Rules {
	return Rules{
		Costs:             cfg.Costs,
		WaterCrossingWood: cfg.Policy.WaterCrossingWood,
		MeleeCrossesWater: cfg.Policy.MeleeCrossesWater,
	}
}

// Doc returns the rules in their saved form.
func (r Rules) Doc() *snapshot.RulesDoc {
	return &snapshot.RulesDoc{
		Costs:             maps.Clone(r.Costs),
		WaterCrossingWood: r.WaterCrossingWood,
		MeleeCrossesWater: r.MeleeCrossesWater,
	}
}

// RulesFromDoc rebuilds saved rules.
func RulesFromDoc(d snapshot.RulesDoc) (Rules, error) {
	for cmd := range d.Costs {
		if !cmd.Known() {
			return Rules{}, fmt.Errorf("%w: cost for unknown command %q", snapshot.ErrMalformed, cmd)
		}
	}
	if d.WaterCrossingWood < 0 {
		return Rules{}, fmt.Errorf("%w: negative water crossing wood %d", snapshot.ErrMalformed, d.WaterCrossingWood)
	}
	return Rules{
		Costs:             maps.Clone(d.Costs),
		WaterCrossingWood: d.WaterCrossingWood,
		MeleeCrossesWater: d.MeleeCrossesWater,
	}, nil
}

// Game holds the complete board state.
type Game struct {
	Terrain *world.Terrain
	Civs    []*civ.Civ
	Active  int
	Rules   Rules
	Seed    int64 // Derives the per-action RNG; see actionRand
	Step    int   // History index of the next action to apply
	Over    bool  // Every civ is dead
	Events  []Event
}

// Event is a notable occurrence in the game.
type Event struct {
	Step        int    `json:"step"`
	Civ         int    `json:"civ"`
	Description string `json:"description"`
	Category    string `json:"category"` // "turn", "combat", "build", "death"
}

// NewGame generates terrain and gives each of numCivs civs a starter hut.
func NewGame(cfg config.Config, rng *rand.Rand, numCivs int) (*Game, error) {
	if numCivs < 1 || numCivs > config.MaxCivs {
		return nil, fmt.Errorf("civs must be 1..%d, got %d", config.MaxCivs, numCivs)
	}
	terr := world.NewTerrain()
	world.Generate(terr, cfg.Terrain, rng)

	civs := make([]*civ.Civ, numCivs)
	for i := range civs {
		civs[i] = civ.NewWithResources(cfg.Start)
	}
	for i, c := range civs {
		if !c.PlaceStarterHut(rng, terr, civs) {
			return nil, fmt.Errorf("civ %d: %w", i, ErrNoLand)
		}
	}

	g := &Game{
		Terrain: terr,
		Civs:    civs,
		Rules:   RulesFrom(cfg),
		Seed:    rng.Int63(),
	}
	slog.Info("game created", "civs", numCivs, "terrain", terr.String())
	return g, nil
}

// Doc converts the board to its persisted form.
func (g *Game) Doc() snapshot.GameDoc {
	return snapshot.NewGameDoc(g.Terrain, g.Civs, g.Active)
}

// Restore rebuilds a game from a persisted board. step is the history index
// the board corresponds to.
func Restore(doc snapshot.GameDoc, rules Rules, seed int64, step int) (*Game, error) {
	terr, civs, active, err := doc.Restore()
	if err != nil {
		return nil, err
	}
	if len(civs) == 0 {
		return nil, fmt.Errorf("%w: no civs", snapshot.ErrMalformed)
	}
	g := &Game{
		Terrain: terr,
		Civs:    civs,
		Active:  active,
		Rules:   rules,
		Seed:    seed,
		Step:    step,
	}
	g.Over = g.allDead()
	return g, nil
}

// Encode serializes the board for a replay checkpoint.
func (g *Game) Encode() ([]byte, error) {
	return snapshot.EncodeGame(g.Doc())
}

// Digest fingerprints the board.
func (g *Game) Digest() string {
	return snapshot.Digest(g.Doc())
}

// ActiveCiv returns the civ whose turn it is.
func (g *Game) ActiveCiv() *civ.Civ {
	return g.Civs[g.Active]
}

// Targeter indexes the current board for reachability queries.
func (g *Game) Targeter() *targeter.Targeter {
	t := targeter.New(g.Terrain, civ.Populations(g.Civs))
	t.MeleeCrossesWater = g.Rules.MeleeCrossesWater
	return t
}

// AliveCount returns how many civs are still playing.
func (g *Game) AliveCount() int {
	n := 0
	for _, c := range g.Civs {
		if c.Alive {
			n++
		}
	}
	return n
}

func (g *Game) allDead() bool {
	return g.AliveCount() == 0
}

func (g *Game) cost(cmd entity.Command) entity.Cost {
	return g.Rules.Costs[cmd]
}

// actionRand seeds the randomness of the action at history index step, so a
// replay from any checkpoint draws the same numbers.
func (g *Game) actionRand(step int) *rand.Rand {
	return rand.New(rand.NewSource(g.Seed + int64(step)))
}

func (g *Game) event(step int, category, format string, args ...any) {
	g.Events = append(g.Events, Event{
		Step:        step,
		Civ:         g.Active,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if len(g.Events) > maxEvents {
		g.Events = g.Events[len(g.Events)-maxEvents:]
	}
}
