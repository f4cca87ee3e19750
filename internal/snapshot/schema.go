package snapshot

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const gameSchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["terr", "civs", "ac"],
  "properties": {
    "terr": {
      "type": "array", "minItems": 16, "maxItems": 16,
      "items": {
        "type": "array", "minItems": 16, "maxItems": 16,
        "items": {"type": "integer", "minimum": 0, "maximum": 5}
      }
    },
    "civs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["alive", "pop", "food", "wood", "gold"],
        "properties": {
          "alive": {"type": "boolean"},
          "human": {"type": "boolean"},
          "food": {"type": "integer"},
          "wood": {"type": "integer"},
          "gold": {"type": "integer"},
          "pop": {"type": "array", "items": {"$ref": "#/definitions/entity"}}
        }
      }
    },
    "ac": {"type": "integer", "minimum": 0}
  },
  "definitions": {
    "coord": {
      "type": "array", "minItems": 2, "maxItems": 2,
      "items": {"type": "integer", "minimum": 0, "maximum": 15}
    },
    "entity": {
      "type": "object",
      "required": ["type", "tile", "exh", "life"],
      "properties": {
        "type": {"enum": ["Building", "Farm", "Mine", "Gnome", "Dwarf", "Trebuchet", "Elf", "Dragon"]},
        "tile": {"$ref": "#/definitions/coord"},
        "exh": {"type": "boolean"},
        "life": {"type": "integer"},
        "raft": {"type": "boolean"},
        "state": {"type": "integer", "minimum": 0, "maximum": 2}
      }
    }
  }
}`

const historySchemaText = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["a"],
    "properties": {
      "a": {"enum": ["End", "move", "attack", "gnome", "dwarf", "elf", "dragon",
                     "fort", "castle", "hut", "chop", "plant", "farm", "trebuchet", "mine"]},
      "d": {"type": "integer", "minimum": 0},
      "t": {
        "type": "array", "minItems": 2, "maxItems": 2,
        "items": {"type": "integer", "minimum": 0, "maximum": 15}
      }
    }
  }
}`

var (
	schemaOnce    sync.Once
	gameSchema    *jsonschema.Schema
	historySchema *jsonschema.Schema
	schemaErr     error
)

func loadSchemas() error {
	schemaOnce.Do(func() {
		gameSchema, schemaErr = jsonschema.CompileString("game.schema.json", gameSchemaText)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile game schema: %w", schemaErr)
			return
		}
		historySchema, schemaErr = jsonschema.CompileString("history.schema.json", historySchemaText)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile history schema: %w", schemaErr)
		}
	})
	return schemaErr
}

// validate checks a generic decoded JSON value against s.
func validate(s *jsonschema.Schema, v any) error {
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
