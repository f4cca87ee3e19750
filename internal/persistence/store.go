// Package persistence stores saved games.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/gaia/internal/config"
	"github.com/talgya/gaia/internal/snapshot"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrBadID    = errors.New("bad game id")
)

// Store saves and loads whole games.
type Store interface {
	SaveGame(ctx context.Context, f snapshot.File) error
	LoadGame(ctx context.Context, id string) (snapshot.File, error)
	ListGames(ctx context.Context) ([]GameInfo, error)
	Close() error
}

// GameInfo summarizes a saved game.
type GameInfo struct {
	ID      string
	Cursor  int // Actions applied
	Civs    int
	Alive   int
	Size    int64 // Stored bytes
	Updated time.Time
}

// NewGameID returns a fresh game id.
func NewGameID() string {
	return uuid.NewString()
}

// Open opens the store selected by cfg.
func Open(cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "file":
		return OpenFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q: %v", ErrBadID, id, err)
	}
	return nil
}

func aliveCount(d snapshot.GameDoc) int {
	n := 0
	for _, c := range d.Civs {
		if c.Alive {
			n++
		}
	}
	return n
}
