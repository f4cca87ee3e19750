package engine

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/gaia/internal/config"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/snapshot"
)

// settle runs the session until it needs a new action, acknowledging every
// turn boundary on the way.
func settle(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if err := s.Drain(); err != nil {
			t.Fatalf("Drain: %v", err)
		}
		if s.Phase != TurnBoundary {
			return
		}
		s.Acknowledge()
	}
	t.Fatal("session never settled")
}

func submit(t *testing.T, s *Session, a Action) {
	t.Helper()
	if err := s.Submit(a); err != nil {
		t.Fatalf("Submit(%s): %v", a, err)
	}
	settle(t, s)
}

func TestSession_CancelFlushesMove(t *testing.T) {
	g := testGame(testCiv(entity.NewAt(entity.KindGnome, at(4, 4))))
	s := NewSession(g, nil, 0, 5)
	if s.Phase != AwaitingInput {
		t.Fatalf("single-civ session starts in %s", s.Phase)
	}

	if err := s.Submit(Move(0, at(4, 5))); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := s.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Phase != ActionInFlight || g.Civs[0].Population[0].Tile != at(4, 4) {
		t.Fatalf("phase=%s, want move in flight from (4,4)", s.Phase)
	}
	if err := s.Submit(End()); !errors.Is(err, ErrBusy) {
		t.Fatalf("submit in flight: err = %v, want ErrBusy", err)
	}

	s.Cancel()
	if s.Phase != AwaitingInput || g.Civs[0].Population[0].Tile != at(4, 5) {
		t.Fatal("cancel should complete the move")
	}
}

func TestSession_AnimationRunsOut(t *testing.T) {
	g := testGame(testCiv(entity.NewAt(entity.KindGnome, at(4, 4))))
	s := NewSession(g, nil, 0, 3)
	if err := s.Submit(Move(0, at(4, 5))); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Update(); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if s.Phase != ActionInFlight {
			t.Fatalf("tick %d: phase = %s", i, s.Phase)
		}
	}
	if _, err := s.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Phase != AwaitingInput || g.Civs[0].Population[0].Tile != at(4, 5) {
		t.Fatal("move should land when the animation runs out")
	}
}

func TestSession_SubmitRejectsIllegal(t *testing.T) {
	g := testGame(testCiv(entity.NewAt(entity.KindGnome, at(4, 4))))
	s := NewSession(g, nil, 0, 0)
	if err := s.Submit(Move(0, at(12, 12))); !errors.Is(err, ErrIllegal) {
		t.Fatalf("far move: err = %v", err)
	}
	if err := s.Submit(Do(entity.CmdMine, 0)); !errors.Is(err, ErrIllegal) {
		t.Fatalf("gnome mine: err = %v", err)
	}
	if len(s.History) != 0 {
		t.Fatal("rejected actions must not be logged")
	}
}

func TestSession_ReplaysFromCheckpoint(t *testing.T) {
	a := testCiv(entity.NewAt(entity.KindGnome, at(2, 2)))
	b := testCiv(entity.NewAt(entity.KindGnome, at(12, 12)))
	g := testGame(a, b)
	s := NewSession(g, nil, 0, 2)
	s.Start = g.Doc()
	if s.Phase != TurnBoundary {
		t.Fatal("multi-civ session opens on a turn boundary")
	}
	s.Acknowledge()

	var live []string
	s.OnTurn = func(s *Session) { live = append(live, s.Game.Digest()) }

	submit(t, s, Move(0, at(2, 3)))
	submit(t, s, End())
	if s.Observer != 1 || s.Replaying {
		t.Fatalf("observer=%d replaying=%v, want civ 1 without replay", s.Observer, s.Replaying)
	}

	submit(t, s, Move(0, at(12, 11)))
	if err := s.Submit(End()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := s.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !s.Replaying || s.Cursor != 2 || s.Phase != TurnBoundary {
		t.Fatalf("replaying=%v cursor=%d phase=%s, want rewind to 2", s.Replaying, s.Cursor, s.Phase)
	}
	if s.Game.Civs[1].Population[0].Tile != at(12, 12) {
		t.Fatal("rewound board should not show civ 1's move yet")
	}
	if !s.Game.Civs[1].Checkpoint().Valid() {
		t.Fatal("civ 1's checkpoint should survive the rewind")
	}

	settle(t, s)
	if s.Replaying || s.Cursor != len(s.History) || s.Observer != 0 {
		t.Fatalf("replaying=%v cursor=%d observer=%d", s.Replaying, s.Cursor, s.Observer)
	}
	if got := s.Game.Digest(); got != live[len(live)-1] {
		t.Fatal("replayed board differs from the live board")
	}
	if s.Game.Civs[1].Population[0].Tile != at(12, 11) {
		t.Fatal("replay should show civ 1's move")
	}
}

// playRandom drives s with random legal actions for the given number of
// turn ends.
func playRandom(t *testing.T, s *Session, rng *rand.Rand, ends int) {
	t.Helper()
	for n := 0; n < ends && !s.Game.Over; n++ {
		for try := 0; try < 4; try++ {
			pop := s.Game.ActiveCiv().Population
			if len(pop) == 0 {
				break
			}
			sel := rng.Intn(len(pop))
			opts := s.Legal(sel)
			var choices []Action
			for _, c := range opts.Moves {
				choices = append(choices, Move(sel, c))
			}
			for _, c := range opts.Attacks {
				choices = append(choices, Attack(sel, c))
			}
			for _, cmd := range opts.Menu {
				choices = append(choices, Do(cmd, sel))
			}
			if len(choices) == 0 {
				continue
			}
			submit(t, s, choices[rng.Intn(len(choices))])
		}
		submit(t, s, End())
	}
}

func TestSession_RandomPlayIsReplayable(t *testing.T) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(7))
	g, err := NewGame(cfg, rng, 3)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s := NewSession(g, nil, 0, 1)
	s.Start = g.Doc()
	settle(t, s)
	playRandom(t, s, rng, 30)

	f := s.File("test")
	if _, err := Verify(f, RulesFrom(cfg)); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	f.Game.Civs[0].Food++
	if _, err := Verify(f, RulesFrom(cfg)); !errors.Is(err, ErrDiverged) {
		t.Fatalf("tampered save: err = %v, want ErrDiverged", err)
	}
}

func TestSession_SaveAndLoad(t *testing.T) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(11))
	g, err := NewGame(cfg, rng, 2)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s := NewSession(g, nil, 0, 0)
	s.Start = g.Doc()
	settle(t, s)
	playRandom(t, s, rng, 6)

	path := filepath.Join(t.TempDir(), "save.zst")
	if err := snapshot.WriteFile(path, s.File("g")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := snapshot.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	loaded, err := Load(f, RulesFrom(cfg), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Game.Digest() != s.Game.Digest() || loaded.Cursor != s.Cursor {
		t.Fatal("loaded session differs from the saved one")
	}
	if len(loaded.History) != len(s.History) {
		t.Fatalf("history = %d, want %d", len(loaded.History), len(s.History))
	}
}

func TestSession_SaveKeepsRules(t *testing.T) {
	cfg := config.Default()
	cfg.Costs[entity.CmdGnome] = entity.Cost{Food: 1}
	g, err := NewGame(cfg, rand.New(rand.NewSource(3)), 2)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s := NewSession(g, nil, 0, 0)
	s.Start = g.Doc()
	settle(t, s)
	food := s.Game.ActiveCiv().Food
	submit(t, s, Do(entity.CmdGnome, 0))
	if got := s.Game.ActiveCiv().Food; got != food-1 {
		t.Fatalf("food = %d, want the configured gnome cost taken", got)
	}

	path := filepath.Join(t.TempDir(), "save.zst")
	if err := snapshot.WriteFile(path, s.File("g")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := snapshot.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	// The caller's rules differ; the saved ones must win.
	if _, err := Verify(f, DefaultRules()); err != nil {
		t.Fatalf("Verify under other rules: %v", err)
	}
	loaded, err := Load(f, DefaultRules(), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c := loaded.Game.Rules.Costs[entity.CmdGnome]; c.Food != 1 {
		t.Fatalf("loaded gnome cost = %+v, want food 1", c)
	}

	// Saves without recorded rules fall back to the caller's.
	f.Header.Rules = nil
	if _, err := Verify(f, DefaultRules()); !errors.Is(err, ErrDiverged) {
		t.Fatalf("no recorded rules: err = %v, want ErrDiverged", err)
	}
	if _, err := Verify(f, RulesFrom(cfg)); err != nil {
		t.Fatalf("no recorded rules, matching fallback: %v", err)
	}
}

func TestRulesFromDoc_RejectsUnknownCommand(t *testing.T) {
	rules := DefaultRules()
	doc := rules.Doc()
	doc.Costs["teleport"] = entity.Cost{Gold: 1}
	if _, err := RulesFromDoc(*doc); !errors.Is(err, snapshot.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if _, ok := rules.Costs["teleport"]; ok {
		t.Fatal("Doc must copy the cost table")
	}
}

func TestDriver_PollsUntilCancelled(t *testing.T) {
	g := testGame(testCiv(entity.NewAt(entity.KindGnome, at(4, 4))))
	s := NewSession(g, nil, 0, 2)
	if err := s.Submit(Move(0, at(4, 5))); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d := NewDriver(s, time.Millisecond)
	d.OnIdle = func(*Session) { cancel() }
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.Tick < 3 {
		t.Fatalf("tick = %d, want the move plus its animation", d.Tick)
	}
	if g.Civs[0].Population[0].Tile != at(4, 5) {
		t.Fatal("driver should have applied the move")
	}
}
