package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/talgya/gaia/internal/snapshot"
)

const fileExt = ".gaia.zst"

// FileStore keeps one snapshot file per game in a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// OpenFileStore uses dir, creating it if needed.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open file store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// SaveGame writes f atomically.
func (s *FileStore) SaveGame(ctx context.Context, f snapshot.File) error {
	if err := checkID(f.Header.GameID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	final := s.path(f.Header.GameID)
	tmp := final + ".tmp"
	if err := snapshot.WriteFile(tmp, f); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save game %s: %w", f.Header.GameID, err)
	}
	return os.Rename(tmp, final)
}

// LoadGame reads the save of game id.
func (s *FileStore) LoadGame(ctx context.Context, id string) (snapshot.File, error) {
	if err := checkID(id); err != nil {
		return snapshot.File{}, err
	}
	if err := ctx.Err(); err != nil {
		return snapshot.File{}, err
	}
	f, err := snapshot.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return f, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return f, fmt.Errorf("load %s: %w", id, err)
	}
	return f, nil
}

// ListGames returns every saved game, most recent first. Unreadable files
// are skipped.
func (s *FileStore) ListGames(ctx context.Context) ([]GameInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var infos []GameInfo
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := strings.CutSuffix(e.Name(), fileExt)
		if !ok || e.IsDir() || checkID(id) != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		f, err := snapshot.ReadFile(s.path(id))
		if err != nil {
			continue
		}
		infos = append(infos, GameInfo{
			ID:      id,
			Cursor:  f.Header.Cursor,
			Civs:    len(f.Game.Civs),
			Alive:   aliveCount(f.Game),
			Size:    fi.Size(),
			Updated: fi.ModTime(),
		})
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Updated.After(infos[j].Updated)
	})
	return infos, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
