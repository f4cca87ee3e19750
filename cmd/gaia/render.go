package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gaia/internal/engine"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

var tileGlyphs = [world.NumTiles]byte{
	world.TileFog:      ' ',
	world.TileWater:    '~',
	world.TileForest:   'T',
	world.TileLand:     '.',
	world.TileDesert:   ':',
	world.TileMountain: '^',
}

// glyph is the map letter of an entity: upper case for the observer's own.
func glyph(e entity.Entity, own bool) byte {
	var g byte
	switch e.Kind {
	case entity.KindBuilding:
		g = "hfc"[e.Level]
	default:
		g = strings.ToLower(e.Kind.Name())[0]
	}
	if own {
		g -= 'a' - 'A'
	}
	return g
}

// printView draws the board as text. Odd columns are drawn half a row lower
// by interleaving two text lines per grid row.
func printView(w io.Writer, g *engine.Game, v engine.View) {
	var cells [world.Height][world.Width]byte
	for y := range cells {
		for x := range cells[y] {
			cells[y][x] = tileGlyphs[v.Tiles[y][x]]
		}
	}
	for _, s := range v.Entities {
		cells[s.Entity.Tile.Y][s.Entity.Tile.X] = glyph(s.Entity, s.Civ == v.Observer)
	}

	for y := 0; y < world.Height; y++ {
		var even, odd strings.Builder
		for x := 0; x < world.Width; x++ {
			if x&1 == 0 {
				even.WriteByte(cells[y][x])
				even.WriteByte(' ')
				odd.WriteString("  ")
			} else {
				even.WriteString("  ")
				odd.WriteByte(cells[y][x])
				odd.WriteByte(' ')
			}
		}
		fmt.Fprintln(w, strings.TrimRight(even.String(), " "))
		fmt.Fprintln(w, strings.TrimRight(odd.String(), " "))
	}
	fmt.Fprintln(w)

	for i, c := range g.Civs {
		marker := " "
		if i == g.Active {
			marker = "*"
		}
		status := "alive"
		if !c.Alive {
			status = "dead"
		}
		n := c.Count()
		fmt.Fprintf(w, "%s civ %d (%s): %s creatures, %s buildings, %s farms, %s mines\n",
			marker, i, status, humanize.Comma(int64(n.Creatures)), humanize.Comma(int64(n.Buildings)),
			humanize.Comma(int64(n.Farms)), humanize.Comma(int64(n.Mines)))
	}
	fmt.Fprintf(w, "\ncivilization %d sees: food %s, wood %s, gold %s\n", v.Observer,
		humanize.Comma(int64(v.Resources.Food)), humanize.Comma(int64(v.Resources.Wood)),
		humanize.Comma(int64(v.Resources.Gold)))

	if n := len(g.Events); n > 0 {
		fmt.Fprintln(w, "\nrecent events:")
		for _, e := range g.Events[max(0, n-10):] {
			fmt.Fprintf(w, "  [%s] step %d: %s\n", e.Category, e.Step, e.Description)
		}
	}
}
