// Starter placement: picks spread-out spots for new civilizations.
package world

import "math/rand"

// PlacementAttempts is how many candidates are sampled per placement.
const PlacementAttempts = 12

// noNeighbor is the distance reported when nothing is placed yet.
const noNeighbor = 1000000

// FarthestSpot samples attempts random candidates and keeps the one whose
// nearest occupied tile is farthest away (squared distance). This is a greedy
// approximation of max-min placement, not an exact search.
// Occupied candidates are only sampled when no free candidate exists.
// Returns false if there are no candidates.
func FarthestSpot(rng *rand.Rand, candidates, occupied []Coord, attempts int) (Coord, bool) {
	if len(candidates) == 0 {
		return Coord{}, false
	}
	if free := freeSpots(candidates, occupied); len(free) > 0 {
		candidates = free
	}

	var best Coord
	aloneness := 0
	for i := 0; i < attempts; i++ {
		spot := candidates[rng.Intn(len(candidates))]

		closest := noNeighbor
		for _, o := range occupied {
			if d := SquaredDistance(spot, o); d < closest {
				closest = d
			}
		}

		if closest > aloneness || i == 0 {
			aloneness = closest
			best = spot
		}
	}
	return best, true
}

func freeSpots(candidates, occupied []Coord) []Coord {
	taken := make(map[Coord]bool, len(occupied))
	for _, o := range occupied {
		taken[o] = true
	}
	free := make([]Coord, 0, len(candidates))
	for _, c := range candidates {
		if !taken[c] {
			free = append(free, c)
		}
	}
	return free
}
