package session

import (
	"errors"
	"fmt"

	"github.com/matsen/ppigraph/internal/editor"
	"github.com/matsen/ppigraph/internal/graph"
)

// ErrUnknownIntent is returned for an intent type the session does not handle.
var ErrUnknownIntent = errors.New("unknown intent")

// IntentType names a user gesture.
type IntentType string

const (
	IntentSelect         IntentType = "select"
	IntentSelectLabel    IntentType = "select_label"
	IntentClearSelection IntentType = "clear_selection"
	IntentConnect        IntentType = "connect"
	IntentMove           IntentType = "move"
	IntentBeginEdit      IntentType = "begin_edit"
	IntentSetDraft       IntentType = "set_draft"
	IntentCommitEdit     IntentType = "commit_edit"
	IntentCancelEdit     IntentType = "cancel_edit"
	IntentKey            IntentType = "key"
)

// Intent is a gesture submitted by the rendering layer. Only the fields
// relevant to Type are read.
type Intent struct {
	Type   IntentType `json:"type"`
	NodeID string     `json:"node_id,omitempty"`
	Label  string     `json:"label,omitempty"`
	Source string     `json:"source,omitempty"`
	Target string     `json:"target,omitempty"`
	X      float64    `json:"x,omitempty"`
	Y      float64    `json:"y,omitempty"`
	Key    string     `json:"key,omitempty"`
}

// apply routes one intent. Caller holds s.mu.
func (s *Session) apply(in Intent) error {
	switch in.Type {
	case IntentSelect:
		return s.selection.Select(in.NodeID)

	case IntentSelectLabel:
		n, err := s.store.FindProteinByLabel(in.Label)
		if err != nil {
			return err
		}
		if err := s.selection.Select(n.ID); err != nil {
			return err
		}
		s.feed.Info("Selected protein: %s", n.Label)
		return nil

	case IntentClearSelection:
		s.selection.Clear()
		return nil

	case IntentConnect:
		e, err := s.store.AddEdge(in.Source, in.Target)
		if err != nil {
			return err
		}
		s.feed.Info("Connected %s to %s", e.Source, e.Target)
		return nil

	case IntentMove:
		return s.store.MoveNode(in.NodeID, graph.Position{X: in.X, Y: in.Y})

	case IntentBeginEdit:
		return s.editors.BeginEdit(in.NodeID)

	case IntentSetDraft:
		return s.editors.SetDraft(in.NodeID, in.Label)

	case IntentCommitEdit:
		return s.editors.Commit(in.NodeID)

	case IntentCancelEdit:
		s.editors.Cancel(in.NodeID)
		return nil

	case IntentKey:
		return s.editors.HandleKey(in.NodeID, in.Key)

	default:
		return fmt.Errorf("%q: %w", in.Type, ErrUnknownIntent)
	}
}

// ErrorKind classifies a dispatch error for clients: one of the graph
// taxonomy names, "NotEditing", "UnknownIntent", or "" for anything else.
func ErrorKind(err error) string {
	if kind := graph.ErrorKind(err); kind != "" {
		return kind
	}
	switch {
	case errors.Is(err, editor.ErrNotEditing):
		return "NotEditing"
	case errors.Is(err, ErrUnknownIntent):
		return "UnknownIntent"
	default:
		return ""
	}
}
