// Package config loads game settings from YAML.
// Fields left out of the file keep their Default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/gaia/internal/civ"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

// MaxCivs is the most players a game supports.
const MaxCivs = 4

// Config holds every tunable of a game.
type Config struct {
	Seed    int64                          `yaml:"seed"` // 0 = random
	Civs    int                            `yaml:"civs"`
	Terrain world.GenConfig                `yaml:"terrain"`
	Start   civ.Resources                  `yaml:"start"`
	Costs   map[entity.Command]entity.Cost `yaml:"costs"`
	Policy  Policy                         `yaml:"policy"`
	Storage Storage                        `yaml:"storage"`

	TickInterval   time.Duration `yaml:"tick_interval"`
	AnimationTicks int           `yaml:"animation_ticks"`
}

// Policy holds game-balance rules that are easy to mistake for engine
// constraints.
type Policy struct {
	// Wood spent when a unit moves from land onto water.
	WaterCrossingWood int `yaml:"water_crossing_wood"`
	// Lets melee attack searches cross water tiles.
	MeleeCrossesWater bool `yaml:"melee_crosses_water"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver string `yaml:"driver"` // "sqlite" or "file"
	Path   string `yaml:"path"`
}

// Default returns the stock rules.
func Default() Config {
	return Config{
		Civs:    2,
		Terrain: world.DefaultGenConfig(),
		Start:   civ.Resources{Food: civ.StartFood, Wood: civ.StartWood, Gold: civ.StartGold},
		Costs:   entity.DefaultCosts(),
		Policy: Policy{
			WaterCrossingWood: 1,
		},
		Storage: Storage{
			Driver: "sqlite",
			Path:   "data/gaia.db",
		},
		TickInterval:   50 * time.Millisecond,
		AnimationTicks: 8,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Civs < 1 || c.Civs > MaxCivs {
		errs = append(errs, fmt.Errorf("civs must be 1..%d, got %d", MaxCivs, c.Civs))
	}
	switch c.Terrain.Generator {
	case world.GeneratorIslands, world.GeneratorNoise:
	default:
		errs = append(errs, fmt.Errorf("unknown terrain generator %q", c.Terrain.Generator))
	}
	if c.Terrain.MinIslandSize < 1 {
		errs = append(errs, errors.New("terrain.min_island_size must be positive"))
	}
	for cmd := range c.Costs {
		if !cmd.Known() {
			errs = append(errs, fmt.Errorf("cost for unknown command %q", cmd))
		}
	}
	if c.Policy.WaterCrossingWood < 0 {
		errs = append(errs, errors.New("policy.water_crossing_wood must not be negative"))
	}
	switch c.Storage.Driver {
	case "sqlite", "file":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.AnimationTicks < 0 {
		errs = append(errs, errors.New("animation_ticks must not be negative"))
	}
	return errors.Join(errs...)
}

// Cost returns the price of cmd, or zero if it has none.
func (c Config) Cost(cmd entity.Command) entity.Cost {
	return c.Costs[cmd]
}
