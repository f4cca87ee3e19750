package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/snapshot"
)

// Submit errors.
var (
	ErrBusy     = errors.New("session busy")
	ErrGameOver = errors.New("game over")
	ErrDiverged = errors.New("replay diverged")
)

// Phase is where a session is in its update cycle.
type Phase uint8

const (
	AwaitingInput  Phase = iota // Ready for the next action
	ActionInFlight              // An action's deferred part is pending
	TurnBoundary                // The turn changed hands; waiting for Acknowledge
)

func (p Phase) String() string {
	switch p {
	case AwaitingInput:
		return "awaiting-input"
	case ActionInFlight:
		return "action-in-flight"
	case TurnBoundary:
		return "turn-boundary"
	default:
		return "unknown"
	}
}

// Session plays a game through its history log, one action per update.
//
// When the turn passes to a human civ that left a checkpoint, the session
// rewinds the board to that checkpoint and replays the log from there, so
// the civ learns what happened only through the public actions.
type Session struct {
	Start     snapshot.GameDoc // Board before History[0]
	Game      *Game
	History   []Action
	Cursor    int // Next history index to apply
	Phase     Phase
	Observer  int
	Replaying bool

	// AnimationTicks is how many updates an action with a deferred part
	// stays in flight. Zero completes actions immediately.
	AnimationTicks int

	// OnTurn is called after each live End, before any rewind.
	OnTurn func(s *Session)

	pending func()
	ticks   int
}

// NewSession starts a session over g. history[:cursor] must already be
// applied to g.
func NewSession(g *Game, history []Action, cursor, animationTicks int) *Session {
	s := &Session{
		Game:           g,
		History:        history,
		Cursor:         cursor,
		Observer:       g.Active,
		AnimationTicks: animationTicks,
	}
	if len(g.Civs) > 1 {
		s.Phase = TurnBoundary
	}
	g.Step = cursor
	return s
}

// Submit appends a to the log. It is applied by a later Update.
func (s *Session) Submit(a Action) error {
	if s.Phase != AwaitingInput || s.Cursor < len(s.History) {
		return fmt.Errorf("%w: %s", ErrBusy, s.Phase)
	}
	if s.Game.Over {
		return ErrGameOver
	}
	if err := s.Game.Check(a); err != nil {
		return err
	}
	s.History = append(s.History, a)
	return nil
}

// Update advances the session by one tick: it progresses the action in
// flight, or applies the next logged action. Reports whether the visible
// state changed. An error means the log is corrupt.
func (s *Session) Update() (bool, error) {
	switch s.Phase {
	case TurnBoundary:
		return false, nil
	case ActionInFlight:
		s.ticks--
		if s.ticks <= 0 {
			s.finish()
		}
		return true, nil
	}

	if s.Cursor >= len(s.History) {
		s.Replaying = false
		return false, nil
	}
	a := s.History[s.Cursor]
	s.Game.Step = s.Cursor
	s.Cursor++
	if err := s.apply(a); err != nil {
		return false, fmt.Errorf("history[%d] %s: %w", s.Cursor-1, a, err)
	}
	return true, nil
}

// Cancel cuts the action in flight short. Its deferred part still runs.
func (s *Session) Cancel() {
	if s.Phase == ActionInFlight {
		s.finish()
	}
}

// Acknowledge leaves the turn boundary.
func (s *Session) Acknowledge() {
	if s.Phase == TurnBoundary {
		s.Phase = AwaitingInput
	}
}

// Drain applies every pending action without animation. Stops at a turn
// boundary.
func (s *Session) Drain() error {
	for {
		s.Cancel()
		if s.Phase == TurnBoundary {
			return nil
		}
		if s.Cursor >= len(s.History) {
			s.Replaying = false
			return nil
		}
		if _, err := s.Update(); err != nil {
			return err
		}
	}
}

// Idle reports whether the session is waiting on the player: at a turn
// boundary, or with nothing left to apply.
func (s *Session) Idle() bool {
	switch s.Phase {
	case TurnBoundary:
		return true
	case AwaitingInput:
		return s.Cursor >= len(s.History)
	}
	return false
}

// View renders the board for the current observer.
func (s *Session) View() View {
	return s.Game.View(s.Observer)
}

// Legal lists the options of entity sel of the active civ.
func (s *Session) Legal(sel int) Options {
	return s.Game.Legal(sel)
}

// HistoryDocs returns the log in persisted form.
func (s *Session) HistoryDocs() []snapshot.ActionDoc {
	return HistoryDocs(s.History)
}

func (s *Session) finish() {
	done := s.pending
	s.pending = nil
	s.ticks = 0
	s.Phase = AwaitingInput
	if done != nil {
		done()
	}
}

func (s *Session) apply(a Action) error {
	prev := s.Game.Active
	done, err := s.Game.Begin(a)
	if err != nil {
		return err
	}
	if done != nil {
		if s.AnimationTicks > 0 {
			s.pending = done
			s.ticks = s.AnimationTicks
			s.Phase = ActionInFlight
		} else {
			done()
		}
	}
	if a.Kind == entity.CmdEnd {
		return s.endTurn(prev)
	}
	return nil
}

// endTurn checkpoints the civ that just ended and switches perspective to
// the civ now acting.
func (s *Session) endTurn(prev int) error {
	g := s.Game
	if s.Replaying {
		return nil
	}
	s.Observer = g.Active

	if len(g.Civs) > 1 {
		state, err := g.Encode()
		if err != nil {
			return fmt.Errorf("checkpoint civ %d: %w", prev, err)
		}
		g.Civs[prev].SetCheckpoint(state, s.Cursor)
	}
	if s.OnTurn != nil {
		s.OnTurn(s)
	}
	if len(g.Civs) < 2 {
		return nil
	}

	s.Phase = TurnBoundary
	c := g.ActiveCiv()
	if !c.Human || !c.Checkpoint().Valid() {
		slog.Debug("no replay", "civ", g.Active, "human", c.Human)
		return nil
	}
	return s.rewind()
}

// rewind restores the active civ's checkpoint and queues the log after it
// for replay. Checkpoints of the other civs carry over.
func (s *Session) rewind() error {
	old := s.Game
	cp := old.ActiveCiv().TakeCheckpoint()
	doc, err := snapshot.DecodeGame(cp.State)
	if err != nil {
		return fmt.Errorf("rewind civ %d: %w", old.Active, err)
	}
	g, err := Restore(doc, old.Rules, old.Seed, cp.Cursor)
	if err != nil {
		return fmt.Errorf("rewind civ %d: %w", old.Active, err)
	}
	if len(g.Civs) != len(old.Civs) {
		return fmt.Errorf("rewind civ %d: %w: checkpoint has %d civs, game has %d",
			old.Active, snapshot.ErrMalformed, len(g.Civs), len(old.Civs))
	}
	for i, c := range g.Civs {
		kept := old.Civs[i].Checkpoint()
		c.SetCheckpoint(kept.State, kept.Cursor)
	}
	for _, e := range old.Events {
		if e.Step < cp.Cursor {
			g.Events = append(g.Events, e)
		}
	}

	slog.Debug("replaying", "civ", old.Active, "from", cp.Cursor, "to", len(s.History))
	s.Game = g
	s.Cursor = cp.Cursor
	s.Observer = old.Active
	s.Replaying = true
	return nil
}
