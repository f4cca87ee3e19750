package engine

import (
	"fmt"

	"github.com/talgya/gaia/internal/snapshot"
)

// Replay rebuilds the board reached by applying history to start.
func Replay(start snapshot.GameDoc, rules Rules, seed int64, history []Action) (*Game, error) {
	g, err := Restore(start, rules, seed, 0)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	for i, a := range history {
		if err := g.Apply(a); err != nil {
			return nil, fmt.Errorf("history[%d] %s: %w", i, a, err)
		}
	}
	return g, nil
}

// File packs the session for saving. Replay checkpoints are not saved.
func (s *Session) File(id string) snapshot.File {
	return snapshot.File{
		Header: snapshot.Header{
			Version: snapshot.Version,
			GameID:  id,
			Seed:    s.Game.Seed,
			Cursor:  s.Cursor,
			Rules:   s.Game.Rules.Doc(),
		},
		Start:   s.Start,
		Game:    s.Game.Doc(),
		History: s.HistoryDocs(),
	}
}

// fileRules returns the rules f was saved under, or fallback when the file
// predates recorded rules.
func fileRules(f snapshot.File, fallback Rules) (Rules, error) {
	if f.Header.Rules == nil {
		return fallback, nil
	}
	return RulesFromDoc(*f.Header.Rules)
}

// Load resumes a saved session under the rules it was saved with. rules only
// applies to files that carry none.
func Load(f snapshot.File, rules Rules, animationTicks int) (*Session, error) {
	rules, err := fileRules(f, rules)
	if err != nil {
		return nil, err
	}
	history, err := HistoryFromDocs(f.History)
	if err != nil {
		return nil, err
	}
	if f.Header.Cursor < 0 || f.Header.Cursor > len(history) {
		return nil, fmt.Errorf("%w: cursor %d outside history of %d", snapshot.ErrMalformed, f.Header.Cursor, len(history))
	}
	g, err := Restore(f.Game, rules, f.Header.Seed, f.Header.Cursor)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	s := NewSession(g, history, f.Header.Cursor, animationTicks)
	s.Start = f.Start
	return s, nil
}

// Verify replays a saved log from its start and checks it reproduces the
// saved board. Returns the replayed game. Like Load, it prefers the rules
// recorded in f.
func Verify(f snapshot.File, rules Rules) (*Game, error) {
	rules, err := fileRules(f, rules)
	if err != nil {
		return nil, err
	}
	history, err := HistoryFromDocs(f.History)
	if err != nil {
		return nil, err
	}
	if f.Header.Cursor < 0 || f.Header.Cursor > len(history) {
		return nil, fmt.Errorf("%w: cursor %d outside history of %d", snapshot.ErrMalformed, f.Header.Cursor, len(history))
	}
	g, err := Replay(f.Start, rules, f.Header.Seed, history[:f.Header.Cursor])
	if err != nil {
		return nil, err
	}
	if got, want := g.Digest(), snapshot.Digest(f.Game); got != want {
		return g, fmt.Errorf("%w: replay digest %s, saved %s", ErrDiverged, got[:12], want[:12])
	}
	return g, nil
}
