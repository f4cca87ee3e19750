package main

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/gaia/internal/engine"
)

// actionsPerTurn caps how many actions a bot tries before ending its turn.
const actionsPerTurn = 4

// bot plays every civ by picking random legal actions.
type bot struct {
	rng      *rand.Rand
	maxEnds  int
	ends     int
	attempts int
}

func newBot(seed int64, maxEnds int) *bot {
	return &bot{rng: rand.New(rand.NewSource(seed)), maxEnds: maxEnds}
}

// act moves the session along by one decision. Returns false once the bot
// has nothing left to do.
func (b *bot) act(s *engine.Session) bool {
	if s.Phase == engine.TurnBoundary {
		s.Acknowledge()
		return true
	}
	if s.Game.Over || b.ends >= b.maxEnds {
		return false
	}

	if b.attempts < actionsPerTurn {
		b.attempts++
		if a, ok := b.choose(s); ok {
			if err := s.Submit(a); err != nil {
				slog.Warn("bot action rejected", "action", a.String(), "error", err)
			}
			return true
		}
	}

	b.attempts = 0
	b.ends++
	if err := s.Submit(engine.End()); err != nil {
		slog.Warn("bot could not end turn", "error", err)
		return false
	}
	return true
}

func (b *bot) choose(s *engine.Session) (engine.Action, bool) {
	pop := s.Game.ActiveCiv().Population
	if len(pop) == 0 {
		return engine.Action{}, false
	}
	sel := b.rng.Intn(len(pop))
	opts := s.Legal(sel)

	var choices []engine.Action
	for _, c := range opts.Attacks {
		choices = append(choices, engine.Attack(sel, c))
	}
	for _, c := range opts.Moves {
		choices = append(choices, engine.Move(sel, c))
	}
	for _, cmd := range opts.Menu {
		choices = append(choices, engine.Do(cmd, sel))
	}
	if len(choices) == 0 {
		return engine.Action{}, false
	}
	return choices[b.rng.Intn(len(choices))], true
}
