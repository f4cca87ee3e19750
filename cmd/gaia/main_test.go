package main

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/talgya/gaia/internal/config"
	"github.com/talgya/gaia/internal/engine"
	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/world"
)

func TestGlyph(t *testing.T) {
	castle := *entity.New(entity.KindBuilding)
	castle.Level = entity.LevelCastle
	cases := []struct {
		e    entity.Entity
		own  bool
		want byte
	}{
		{*entity.New(entity.KindBuilding), true, 'H'},
		{castle, false, 'c'},
		{*entity.New(entity.KindDragon), false, 'd'},
		{*entity.New(entity.KindGnome), true, 'G'},
	}
	for _, tc := range cases {
		if got := glyph(tc.e, tc.own); got != tc.want {
			t.Fatalf("glyph(%s, %v) = %q, want %q", tc.e.Kind, tc.own, got, tc.want)
		}
	}
}

func TestPrintView(t *testing.T) {
	g, err := engine.NewGame(config.Default(), rand.New(rand.NewSource(3)), 2)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	var buf bytes.Buffer
	printView(&buf, g, g.View(0))
	out := buf.String()

	lines := strings.Split(out, "\n")
	if len(lines) < 2*world.Height {
		t.Fatalf("got %d lines, want at least %d map lines", len(lines), 2*world.Height)
	}
	if !strings.Contains(out, "H") {
		t.Fatal("the observer's own hut should be drawn")
	}
	if !strings.Contains(out, "* civ 0 (alive)") {
		t.Fatalf("missing civ summary:\n%s", out)
	}
}

func TestBot_PlaysToTheTurnLimit(t *testing.T) {
	g, err := engine.NewGame(config.Default(), rand.New(rand.NewSource(9)), 2)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	s := engine.NewSession(g, nil, 0, 0)
	s.Start = g.Doc()
	b := newBot(4, 6)

	for i := 0; i < 10000; i++ {
		if err := s.Drain(); err != nil {
			t.Fatalf("Drain: %v", err)
		}
		if s.Phase == engine.AwaitingInput && s.Cursor < len(s.History) {
			continue
		}
		if !b.act(s) {
			break
		}
	}
	if b.ends != 6 && !s.Game.Over {
		t.Fatalf("bot ended %d turns, want 6", b.ends)
	}
	if _, err := engine.Verify(s.File("bot"), engine.DefaultRules()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}
