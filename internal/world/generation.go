// Terrain generation. The default generator grows random-walk islands out of
// open water; the noise generator samples layered simplex noise instead.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Generator names accepted by GenConfig.Generator.
const (
	GeneratorIslands = "islands"
	GeneratorNoise   = "noise"
)

// GenConfig holds terrain generation parameters.
// Upper bounds are exclusive.
type GenConfig struct {
	Generator     string  `yaml:"generator"`
	MinIslands    int     `yaml:"min_islands"`
	MaxIslands    int     `yaml:"max_islands"`
	MinIslandSize int     `yaml:"min_island_size"`
	MaxIslandSize int     `yaml:"max_island_size"`
	Consistency   int     `yaml:"consistency"` // 1-in-N chance per step of changing tile type
	SeaLevel      float64 `yaml:"sea_level"`   // Noise generator only
}

// DefaultGenConfig returns the classic island parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Generator:     GeneratorIslands,
		MinIslands:    6,
		MaxIslands:    12,
		MinIslandSize: 15,
		MaxIslandSize: 45,
		Consistency:   8,
		SeaLevel:      0.45,
	}
}

// Generate fills t using the generator named in cfg.
func Generate(t *Terrain, cfg GenConfig, rng *rand.Rand) {
	if cfg.Generator == GeneratorNoise {
		GenerateNoise(t, cfg, rng.Int63())
		return
	}
	GenerateTerrain(t, cfg, rng)
}

// GenerateTerrain paints islands onto t by biased random walks.
// Each island starts at a random tile, has a random size and land type, and
// walks through Adjacent painting every visited tile. The land type is
// re-rolled with probability 1/Consistency at each step.
func GenerateTerrain(t *Terrain, cfg GenConfig, rng *rand.Rand) {
	numIslands := randRange(rng, cfg.MinIslands, cfg.MaxIslands)
	for i := 0; i < numIslands; i++ {
		c := Coord{X: rng.Intn(Width), Y: rng.Intn(Height)}
		size := randRange(rng, cfg.MinIslandSize, cfg.MaxIslandSize)
		tile := randomLand(rng)

		for j := 0; j < size; j++ {
			if cfg.Consistency > 0 && rng.Intn(cfg.Consistency) == 0 {
				tile = randomLand(rng)
			}
			t.SetTile(c, tile)
			adj := Adjacent(c)
			c = adj[rng.Intn(len(adj))]
		}
	}
}

// GenerateNoise derives every tile from two octave-noise layers: elevation
// decides water versus land, a second layer picks the land type.
func GenerateNoise(t *Terrain, cfg GenConfig, seed int64) {
	elevNoise := opensimplex.NewNormalized(seed)
	kindNoise := opensimplex.NewNormalized(seed + 1)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			// Odd columns sit half a tile lower.
			fx := float64(x) * 0.866
			fy := float64(y)
			if x&1 == 1 {
				fy += 0.5
			}

			elev := octaveNoise(elevNoise, fx, fy, 3, 0.15, 0.5)

			// Pull the border down so the map reads as an archipelago.
			dx := (fx - Width*0.433) / (Width * 0.433)
			dy := (fy - Height*0.5) / (Height * 0.5)
			falloff := 1.0 - math.Pow(math.Sqrt(dx*dx+dy*dy), 3)
			if falloff < 0 {
				falloff = 0
			}
			elev *= 0.5 + 0.5*falloff

			c := Coord{X: x, Y: y}
			if elev < cfg.SeaLevel {
				t.SetTile(c, TileWater)
				continue
			}
			kind := octaveNoise(kindNoise, fx, fy, 2, 0.2, 0.5)
			idx := int(kind * float64(len(LandTiles)))
			if idx >= len(LandTiles) {
				idx = len(LandTiles) - 1
			}
			t.SetTile(c, LandTiles[idx])
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func randomLand(rng *rand.Rand) Tile {
	return LandTiles[rng.Intn(len(LandTiles))]
}

// randRange returns a value in [lo, hi), or lo when the range is empty.
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo)
}
