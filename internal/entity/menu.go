package entity

import "github.com/talgya/gaia/internal/world"

// Command names an action an entity can be told to perform.
// The values are the action tags written to the history log.
type Command string

const (
	CmdEnd       Command = "End"
	CmdMove      Command = "move"
	CmdAttack    Command = "attack"
	CmdGnome     Command = "gnome"
	CmdDwarf     Command = "dwarf"
	CmdElf       Command = "elf"
	CmdDragon    Command = "dragon"
	CmdFort      Command = "fort"
	CmdCastle    Command = "castle"
	CmdHut       Command = "hut"
	CmdChop      Command = "chop"
	CmdPlant     Command = "plant"
	CmdFarm      Command = "farm"
	CmdTrebuchet Command = "trebuchet"
	CmdMine      Command = "mine"
)

// Commands lists every recognized command.
var Commands = []Command{
	CmdEnd, CmdMove, CmdAttack, CmdGnome, CmdDwarf, CmdElf, CmdDragon,
	CmdFort, CmdCastle, CmdHut, CmdChop, CmdPlant, CmdFarm, CmdTrebuchet, CmdMine,
}

// Known reports whether c is a recognized command.
func (c Command) Known() bool {
	for _, k := range Commands {
		if k == c {
			return true
		}
	}
	return false
}

// Cost is a resource price. Negative values are yields.
type Cost struct {
	Food int `json:"food,omitempty" yaml:"food"`
	Wood int `json:"wood,omitempty" yaml:"wood"`
	Gold int `json:"gold,omitempty" yaml:"gold"`
}

// DefaultCosts is the stock price list.
func DefaultCosts() map[Command]Cost {
	return map[Command]Cost{
		CmdGnome:     {Food: 2},
		CmdDwarf:     {Food: 3},
		CmdElf:       {Gold: 2},
		CmdDragon:    {Gold: 13},
		CmdTrebuchet: {Gold: 3},
		CmdFort:      {Wood: 5},
		CmdCastle:    {Wood: 8},
		CmdHut:       {Wood: 1},
		CmdFarm:      {Wood: 2},
		CmdMine:      {Wood: 3},
		CmdChop:      {Wood: -3},
	}
}

// MenuOptions returns the build/upgrade commands the entity offers while
// standing on a tile of type tile.
func (e *Entity) MenuOptions(tile world.Tile) []Command {
	switch e.Kind {
	case KindBuilding:
		switch e.Level {
		case LevelHut:
			return []Command{CmdGnome, CmdFort}
		case LevelFort:
			return []Command{CmdGnome, CmdDwarf, CmdCastle}
		default:
			return []Command{CmdGnome, CmdDwarf, CmdElf, CmdDragon}
		}
	case KindGnome:
		var opts []Command
		switch tile {
		case world.TileForest:
			opts = append(opts, CmdChop)
		case world.TileLand:
			opts = append(opts, CmdPlant, CmdFarm)
		}
		return append(opts, CmdHut)
	case KindDwarf:
		opts := []Command{CmdTrebuchet}
		if tile == world.TileMountain {
			opts = append(opts, CmdMine)
		}
		return opts
	default:
		return nil
	}
}
