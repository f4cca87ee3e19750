// Command gaia creates, plays, checks and inspects saved games.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/gaia/internal/config"
	"github.com/talgya/gaia/internal/engine"
	"github.com/talgya/gaia/internal/persistence"
	"github.com/talgya/gaia/internal/snapshot"
)

const usage = `usage: gaia <command> [flags]

commands:
  new     generate a game and save it
  play    let bots play a saved game for a number of turns
  verify  replay a saved game's log and check it matches the board
  show    print a saved game from one civ's point of view
  list    list saved games`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "new":
		err = runNew(args)
	case "play":
		err = runPlay(args)
	case "verify":
		err = runVerify(args)
	case "show":
		err = runShow(args)
	case "list":
		err = runList(args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

// common holds the flags every subcommand takes.
type common struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file (optional)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

// setup loads the config and installs the logger.
func (c *common) setup() error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	c.cfg = config.Default()
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
	}
	return nil
}

func (c *common) openStore() (persistence.Store, error) {
	if c.cfg.Storage.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(c.cfg.Storage.Path), 0o755); err != nil {
			return nil, err
		}
	}
	return persistence.Open(c.cfg.Storage)
}

func runNew(args []string) error {
	var c common
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	c.register(fs)
	civs := fs.Int("civs", 0, "number of civs, 1-4 (default from config)")
	seed := fs.Int64("seed", 0, "world seed (default from config, else random)")
	fs.Parse(args)
	if err := c.setup(); err != nil {
		return err
	}

	if *civs == 0 {
		*civs = c.cfg.Civs
	}
	if *seed == 0 {
		*seed = c.cfg.Seed
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	g, err := engine.NewGame(c.cfg, rand.New(rand.NewSource(*seed)), *civs)
	if err != nil {
		return err
	}
	s := engine.NewSession(g, nil, 0, 0)
	s.Start = g.Doc()

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id := persistence.NewGameID()
	if err := store.SaveGame(context.Background(), s.File(id)); err != nil {
		return err
	}
	fmt.Printf("created game %s: %d civs, seed %d, %s\n", id, *civs, *seed, g.Terrain)
	return nil
}

func runPlay(args []string) error {
	var c common
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	c.register(fs)
	id := fs.String("id", "", "game id")
	turns := fs.Int("turns", 10, "turn ends to play before stopping")
	botSeed := fs.Int64("bot-seed", 1, "seed for the bots' choices")
	fs.Parse(args)
	if err := c.setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := store.LoadGame(ctx, *id)
	if err != nil {
		return err
	}
	warnNoRules(f)
	s, err := engine.Load(f, engine.RulesFrom(c.cfg), c.cfg.AnimationTicks)
	if err != nil {
		return err
	}

	save := func(s *engine.Session) {
		if err := store.SaveGame(ctx, s.File(*id)); err != nil {
			slog.Error("autosave failed", "error", err)
		}
		if db, ok := store.(*persistence.DB); ok {
			if err := db.SaveEvents(ctx, *id, s.Game.Events); err != nil {
				slog.Error("event save failed", "error", err)
			}
		}
	}
	s.OnTurn = save

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b := newBot(*botSeed, *turns)
	d := engine.NewDriver(s, c.cfg.TickInterval)
	d.OnIdle = func(s *engine.Session) {
		if !b.act(s) {
			cancel()
		}
	}

	start := time.Now()
	if err := d.Run(ctx); err != nil {
		return err
	}
	s.Cancel()
	save(s)

	fmt.Printf("played %d turn ends in %s (%s ticks), %d actions logged, %d of %d civs alive\n",
		b.ends, time.Since(start).Round(time.Millisecond), humanize.Comma(int64(d.Tick)),
		len(s.History), s.Game.AliveCount(), len(s.Game.Civs))
	return nil
}

func runVerify(args []string) error {
	var c common
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	c.register(fs)
	id := fs.String("id", "", "game id")
	fs.Parse(args)
	if err := c.setup(); err != nil {
		return err
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := store.LoadGame(context.Background(), *id)
	if err != nil {
		return err
	}
	warnNoRules(f)
	g, err := engine.Verify(f, engine.RulesFrom(c.cfg))
	if errors.Is(err, engine.ErrDiverged) {
		fmt.Printf("game %s: MISMATCH after %s actions\n", *id, humanize.Comma(int64(f.Header.Cursor)))
		return err
	}
	if err != nil {
		return err
	}
	fmt.Printf("game %s: OK, %s actions replayed, digest %s\n",
		*id, humanize.Comma(int64(f.Header.Cursor)), g.Digest()[:16])
	return nil
}

func runShow(args []string) error {
	var c common
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	c.register(fs)
	id := fs.String("id", "", "game id")
	observer := fs.Int("civ", -1, "civ to look through (default: the active civ)")
	fs.Parse(args)
	if err := c.setup(); err != nil {
		return err
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := store.LoadGame(context.Background(), *id)
	if err != nil {
		return err
	}
	s, err := engine.Load(f, engine.RulesFrom(c.cfg), 0)
	if err != nil {
		return err
	}
	if *observer < 0 {
		*observer = s.Game.Active
	}
	if *observer >= len(s.Game.Civs) {
		return fmt.Errorf("civ %d out of range, game has %d", *observer, len(s.Game.Civs))
	}
	if db, ok := store.(*persistence.DB); ok {
		events, err := db.RecentEvents(context.Background(), *id, 10)
		if err != nil {
			return err
		}
		slices.Reverse(events)
		s.Game.Events = events
	}
	printView(os.Stdout, s.Game, s.Game.View(*observer))
	return nil
}

func runList(args []string) error {
	var c common
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	c.register(fs)
	fs.Parse(args)
	if err := c.setup(); err != nil {
		return err
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.ListGames(context.Background())
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no saved games")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %d/%d civs alive  %6s actions  %8s  %s\n",
			info.ID, info.Alive, info.Civs, humanize.Comma(int64(info.Cursor)),
			humanize.Bytes(uint64(info.Size)), humanize.Time(info.Updated))
	}
	return nil
}

// warnNoRules flags old saves that will be replayed under the current config.
func warnNoRules(f snapshot.File) {
	if f.Header.Rules == nil {
		slog.Warn("save has no recorded rules, using config", "id", f.Header.GameID)
	}
}
