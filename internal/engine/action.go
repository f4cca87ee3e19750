package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/gaia/internal/entity"
	"github.com/talgya/gaia/internal/snapshot"
	"github.com/talgya/gaia/internal/world"
)

// Errors returned by Apply. All of them mean the history is corrupt or was
// produced by something other than the engine; callers treat them as fatal.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadDoer       = errors.New("doer index out of range")
	ErrBadTarget     = errors.New("bad action target")
)

// NoDoer is the doer index of actions that have none.
const NoDoer = -1

// Action is one entry of the history log.
type Action struct {
	Kind   entity.Command
	Doer   int          // Index into the active civ's population, or NoDoer
	Target *world.Coord // Move and attack only
}

// End returns the end-of-turn action.
func End() Action {
	return Action{Kind: entity.CmdEnd, Doer: NoDoer}
}

// Move returns a move of doer to target.
func Move(doer int, target world.Coord) Action {
	return Action{Kind: entity.CmdMove, Doer: doer, Target: &target}
}

// Attack returns an attack by doer on target.
func Attack(doer int, target world.Coord) Action {
	return Action{Kind: entity.CmdAttack, Doer: doer, Target: &target}
}

// Do returns a menu action (spawn, upgrade or terrain change) by doer.
func Do(cmd entity.Command, doer int) Action {
	return Action{Kind: cmd, Doer: doer}
}

func (a Action) targeted() bool {
	return a.Kind == entity.CmdMove || a.Kind == entity.CmdAttack
}

func (a Action) String() string {
	switch {
	case a.Kind == entity.CmdEnd:
		return string(a.Kind)
	case a.Target != nil:
		return fmt.Sprintf("%s #%d -> %v", a.Kind, a.Doer, *a.Target)
	default:
		return fmt.Sprintf("%s #%d", a.Kind, a.Doer)
	}
}

// Doc converts a to its log form.
func (a Action) Doc() snapshot.ActionDoc {
	doc := snapshot.ActionDoc{Action: string(a.Kind)}
	if a.Kind == entity.CmdEnd {
		return doc
	}
	doer := a.Doer
	doc.Doer = &doer
	if a.targeted() && a.Target != nil {
		t := [2]int{a.Target.X, a.Target.Y}
		doc.Target = &t
	}
	return doc
}

// ActionFromDoc parses a log entry.
func ActionFromDoc(doc snapshot.ActionDoc) (Action, error) {
	a := Action{Kind: entity.Command(doc.Action), Doer: NoDoer}
	if !a.Kind.Known() {
		return a, fmt.Errorf("%w: %q", ErrUnknownAction, doc.Action)
	}
	if doc.Doer != nil {
		a.Doer = *doc.Doer
	}
	if a.targeted() {
		if doc.Target == nil {
			return a, fmt.Errorf("%w: %s without target", ErrBadTarget, a.Kind)
		}
		t := world.Coord{X: doc.Target[0], Y: doc.Target[1]}
		a.Target = &t
	}
	return a, nil
}

// HistoryDocs converts a log.
func HistoryDocs(h []Action) []snapshot.ActionDoc {
	docs := make([]snapshot.ActionDoc, len(h))
	for i, a := range h {
		docs[i] = a.Doc()
	}
	return docs
}

// HistoryFromDocs parses a log, stopping at the first bad entry.
func HistoryFromDocs(docs []snapshot.ActionDoc) ([]Action, error) {
	h := make([]Action, 0, len(docs))
	for i, d := range docs {
		a, err := ActionFromDoc(d)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		h = append(h, a)
	}
	return h, nil
}
