// Package entity provides the unit and building model.
// Every variant is a tag on a single Entity struct; per-variant behavior is
// looked up in a fixed capability table instead of being dispatched through
// methods on separate types.
package entity

import (
	"fmt"

	"github.com/talgya/gaia/internal/world"
)

// Kind tags an entity variant.
type Kind uint8

const (
	KindBuilding  Kind = iota // Spawns units; upgrades Hut → Fort → Castle
	KindFarm                  // +1 food per turn
	KindMine                  // +1 gold per turn
	KindGnome                 // Cheap worker, builds huts and farms
	KindDwarf                 // Sturdy melee, builds mines and trebuchets
	KindTrebuchet             // Long-range siege, fragile
	KindElf                   // Ranged skirmisher
	KindDragon                // Flies over everything
)

// NumKinds is the number of entity variants.
const NumKinds = 8

var kindNames = [NumKinds]string{
	"Building", "Farm", "Mine", "Gnome", "Dwarf", "Trebuchet", "Elf", "Dragon",
}

// Name returns the serialized type tag of the kind.
func (k Kind) Name() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

func (k Kind) String() string { return k.Name() }

// ParseKind maps a serialized type tag back to its kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unrecognized entity type %q", name)
}

// Level is the upgrade state of a building.
type Level uint8

const (
	LevelHut Level = iota
	LevelFort
	LevelCastle
)

// Capabilities are the fixed stats of a variant.
type Capabilities struct {
	MaxLife         int
	Strength        int
	MoveRange       int
	RaftMoveRange   int
	AttackRange     int
	RaftAttackRange int
	Visibility      int
	ShootOnLand     bool
	ShootOnRaft     bool
	Rafts           bool // Can float on water (raft flag tracks it)
	Flies           bool
	Creature        bool
}

var capabilities = [NumKinds]Capabilities{
	KindBuilding: {MaxLife: 1, Visibility: 2},
	KindFarm:     {MaxLife: 1, Visibility: 2},
	KindMine:     {MaxLife: 1, Visibility: 2},
	KindGnome: {
		MaxLife: 3, Strength: 1,
		MoveRange: 2, RaftMoveRange: 2,
		AttackRange: 2, RaftAttackRange: 2,
		Visibility: 2, ShootOnRaft: true,
		Rafts: true, Creature: true,
	},
	KindDwarf: {
		MaxLife: 5, Strength: 2,
		MoveRange: 2, RaftMoveRange: 2,
		AttackRange: 3, RaftAttackRange: 2,
		Visibility: 3, ShootOnRaft: true,
		Rafts: true, Creature: true,
	},
	KindTrebuchet: {
		MaxLife: 1, Strength: 5,
		MoveRange: 1, RaftMoveRange: 1,
		AttackRange: 5, RaftAttackRange: 5,
		Visibility: 5, ShootOnLand: true, ShootOnRaft: true,
		Rafts: true, Creature: true,
	},
	KindElf: {
		MaxLife: 5, Strength: 2,
		MoveRange: 3, RaftMoveRange: 2,
		AttackRange: 4, RaftAttackRange: 4,
		Visibility: 4, ShootOnLand: true, ShootOnRaft: true,
		Rafts: true, Creature: true,
	},
	KindDragon: {
		MaxLife: 9, Strength: 4,
		MoveRange: 4, RaftMoveRange: 4,
		AttackRange: 4, RaftAttackRange: 4,
		Visibility: 5, ShootOnLand: true, ShootOnRaft: true,
		Flies: true, Creature: true,
	},
}

// CapabilitiesOf returns the stat table row for k.
func CapabilitiesOf(k Kind) Capabilities {
	return capabilities[k]
}

// Entity is a unit or building. Its owner is whichever civ's population
// holds it.
type Entity struct {
	Kind      Kind        `json:"kind"`
	Tile      world.Coord `json:"tile"`
	Exhausted bool        `json:"exhausted"`
	Life      int         `json:"life"`
	Raft      bool        `json:"raft,omitempty"`  // Raft-capable kinds only
	Level     Level       `json:"level,omitempty"` // Buildings only
}

// New creates an entity of kind k at full life.
func New(k Kind) *Entity {
	return &Entity{Kind: k, Life: capabilities[k].MaxLife}
}

// NewAt creates an entity of kind k standing on tile.
func NewAt(k Kind, tile world.Coord) *Entity {
	e := New(k)
	e.Tile = tile
	return e
}

// Clone returns an independent copy.
func (e *Entity) Clone() *Entity {
	c := *e
	return &c
}

func (e *Entity) caps() *Capabilities { return &capabilities[e.Kind] }

func (e *Entity) IsCreature() bool { return e.caps().Creature }
func (e *Entity) IsBuilding() bool { return e.Kind == KindBuilding }
func (e *Entity) IsFarm() bool     { return e.Kind == KindFarm }
func (e *Entity) IsMine() bool     { return e.Kind == KindMine }
func (e *Entity) CanFly() bool     { return e.caps().Flies }
func (e *Entity) CanRaft() bool    { return e.caps().Rafts }
func (e *Entity) Strength() int    { return e.caps().Strength }
func (e *Entity) Visibility() int  { return e.caps().Visibility }

// MoveRange is the number of steps the entity may move this turn.
func (e *Entity) MoveRange() int {
	if e.Raft {
		return e.caps().RaftMoveRange
	}
	return e.caps().MoveRange
}

// AttackRange is the number of steps the attack search may cover.
func (e *Entity) AttackRange() int {
	if e.Raft {
		return e.caps().RaftAttackRange
	}
	return e.caps().AttackRange
}

// CanShoot reports whether the entity attacks at range, past blockers.
func (e *Entity) CanShoot() bool {
	if e.Raft {
		return e.caps().ShootOnRaft
	}
	return e.caps().ShootOnLand
}

// SetOnWater updates the raft flag after moving onto (or off) water.
// Kinds that cannot raft ignore it.
func (e *Entity) SetOnWater(onWater bool) {
	if e.CanRaft() {
		e.Raft = onWater
	}
}

// Strike subtracts the entity's strength from target's life.
// Life may drop to zero or below; the caller decides what that means.
func (e *Entity) Strike(target *Entity) {
	target.Life -= e.Strength()
}

// Upgrade advances a building one level and exhausts it.
func (e *Entity) Upgrade() {
	if e.Level < LevelCastle {
		e.Level++
	}
	e.Exhausted = true
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s@%v", e.Kind.Name(), e.Tile)
}
