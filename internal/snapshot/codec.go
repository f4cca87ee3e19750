package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/gaia/internal/entity"
)

// Version is the current blob format version.
const Version = 1

// Header precedes the body in a snapshot file.
type Header struct {
	Version int    `json:"version"`
	GameID  string `json:"game_id"`
	Seed    int64  `json:"seed"`
	Cursor  int    `json:"cursor"` // History entries already applied to Game

	// Rules the history was played under. Absent in saves made before rules
	// were recorded.
	Rules *RulesDoc `json:"rules,omitempty"`
}

// RulesDoc is the balance a game was created with.
type RulesDoc struct {
	Costs             map[entity.Command]entity.Cost `json:"costs"`
	WaterCrossingWood int                            `json:"water_crossing_wood"`
	MeleeCrossesWater bool                           `json:"melee_crosses_water"`
}

// EncodeRules serializes r as JSON. A nil r encodes to no bytes.
func EncodeRules(r *RulesDoc) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// DecodeRules parses rules written by EncodeRules. Empty input yields nil.
func DecodeRules(data []byte) (*RulesDoc, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var r RulesDoc
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: rules: %v", ErrMalformed, err)
	}
	return &r, nil
}

// File is everything a save file holds. Replaying History over Start
// reproduces Game.
type File struct {
	Header  Header      `json:"header"`
	Start   GameDoc     `json:"start"`
	Game    GameDoc     `json:"game"`
	History []ActionDoc `json:"history"`
}

// EncodeGame serializes d as JSON.
func EncodeGame(d GameDoc) ([]byte, error) {
	return json.Marshal(d)
}

// DecodeGame parses and validates a game document.
func DecodeGame(data []byte) (GameDoc, error) {
	var d GameDoc
	if err := loadSchemas(); err != nil {
		return d, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate(gameSchema, generic); err != nil {
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}

// EncodeHistory serializes an action log as JSON.
func EncodeHistory(h []ActionDoc) ([]byte, error) {
	if h == nil {
		h = []ActionDoc{}
	}
	return json.Marshal(h)
}

// DecodeHistory parses and validates an action log.
func DecodeHistory(data []byte) ([]ActionDoc, error) {
	if err := loadSchemas(); err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate(historySchema, generic); err != nil {
		return nil, err
	}
	var h []ActionDoc
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h, nil
}

// Compress zstd-compresses b.
func Compress(b []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil), nil
}

// Decompress reverses Compress.
func Decompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

// WriteFile stores f at path as a zstd stream: one JSON header line followed
// by the start, game and history documents.
func WriteFile(path string, f File) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	if f.History == nil {
		f.History = []ActionDoc{}
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	for _, v := range []any{f.Header, f.Start, f.Game, f.History} {
		b, err := json.Marshal(v)
		if err != nil {
			enc.Close()
			return err
		}
		if _, err := bw.Write(b); err != nil {
			enc.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadFile loads a file written by WriteFile, validating both documents.
func ReadFile(path string) (File, error) {
	var f File
	in, err := os.Open(path)
	if err != nil {
		return f, err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return f, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	var lines [4][]byte
	for i := range lines {
		line, err := br.ReadBytes('\n')
		if err != nil {
			return f, fmt.Errorf("%w: read section %d: %v", ErrMalformed, i, err)
		}
		lines[i] = bytes.TrimSuffix(line, []byte{'\n'})
	}

	if err := json.Unmarshal(lines[0], &f.Header); err != nil {
		return f, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	if f.Header.Version != Version {
		return f, fmt.Errorf("%w: unsupported version %d", ErrMalformed, f.Header.Version)
	}
	if f.Start, err = DecodeGame(lines[1]); err != nil {
		return f, fmt.Errorf("start: %w", err)
	}
	if f.Game, err = DecodeGame(lines[2]); err != nil {
		return f, fmt.Errorf("game: %w", err)
	}
	if f.History, err = DecodeHistory(lines[3]); err != nil {
		return f, fmt.Errorf("history: %w", err)
	}
	return f, nil
}
