// Package editor implements inline label editing for protein nodes.
//
// Each node has a small state machine that starts in Viewing. BeginEdit
// copies the stored label into a draft and moves to Editing; Commit writes
// the draft back through the graph store and Cancel discards it. There is no
// terminal state.
package editor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matsen/ppigraph/internal/graph"
)

// State is the edit mode of one node.
type State int

const (
	Viewing State = iota
	Editing
)

// String returns the state name for display.
func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Keyboard signals understood by HandleKey.
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// ErrNotEditing is returned when a draft operation targets a node that is
// not in edit mode.
var ErrNotEditing = errors.New("node is not being edited")

// Renamer is the part of the graph store the editor needs.
type Renamer interface {
	GetNode(nodeID string) (graph.Node, error)
	RenameNode(nodeID, newLabel string) error
}

// LabelEditor is the edit state machine of a single node.
type LabelEditor struct {
	NodeID string
	state  State
	draft  string
}

// State returns the current state.
func (e *LabelEditor) State() State {
	return e.state
}

// Draft returns the draft buffer. It is empty while Viewing.
func (e *LabelEditor) Draft() string {
	return e.draft
}

func (e *LabelEditor) begin(label string) {
	if e.state == Editing {
		return
	}
	e.state = Editing
	e.draft = label
}

func (e *LabelEditor) reset() {
	e.state = Viewing
	e.draft = ""
}

// Editors keeps one LabelEditor per node and routes commits to the store.
type Editors struct {
	store Renamer

	mu       sync.Mutex
	machines map[string]*LabelEditor
}

// NewEditors creates a registry in which every node starts Viewing.
func NewEditors(store Renamer) *Editors {
	return &Editors{
		store:    store,
		machines: make(map[string]*LabelEditor),
	}
}

// machine returns the editor for nodeID, creating it on first use.
// Caller holds mu.
func (r *Editors) machine(nodeID string) *LabelEditor {
	m, ok := r.machines[nodeID]
	if !ok {
		m = &LabelEditor{NodeID: nodeID}
		r.machines[nodeID] = m
	}
	return m
}

// BeginEdit enters edit mode for a protein node, seeding the draft with its
// current label. A node already in edit mode keeps its draft.
func (r *Editors) BeginEdit(nodeID string) error {
	n, err := r.store.GetNode(nodeID)
	if err != nil {
		return err
	}
	if !n.IsProtein() {
		return fmt.Errorf("cannot edit %s node %s: %w", n.Kind, nodeID, graph.ErrInvalidKind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.machine(nodeID).begin(n.Label)
	return nil
}

// SetDraft replaces the draft of a node in edit mode.
func (r *Editors) SetDraft(nodeID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[nodeID]
	if !ok || m.state != Editing {
		return fmt.Errorf("%s: %w", nodeID, ErrNotEditing)
	}
	m.draft = text
	return nil
}

// Commit writes the trimmed draft to the store and returns to Viewing.
// An empty draft is rejected with graph.ErrEmptyLabel and the node stays in
// edit mode, as it does when the store refuses the rename.
func (r *Editors) Commit(nodeID string) error {
	r.mu.Lock()
	m, ok := r.machines[nodeID]
	if !ok || m.state != Editing {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", nodeID, ErrNotEditing)
	}
	label := strings.TrimSpace(m.draft)
	r.mu.Unlock()

	if label == "" {
		return fmt.Errorf("%s: %w", nodeID, graph.ErrEmptyLabel)
	}

	// The store notifies listeners synchronously; mu must not be held here.
	if err := r.store.RenameNode(nodeID, label); err != nil {
		return err
	}

	r.mu.Lock()
	m.reset()
	r.mu.Unlock()
	return nil
}

// Cancel discards the draft and returns to Viewing. The stored label is
// untouched. Cancelling a node that is not being edited does nothing.
func (r *Editors) Cancel(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[nodeID]; ok {
		m.reset()
	}
}

// HandleKey maps keyboard confirm/escape to Commit/Cancel. Other keys are
// ignored.
func (r *Editors) HandleKey(nodeID, key string) error {
	switch key {
	case KeyEnter:
		return r.Commit(nodeID)
	case KeyEscape:
		r.Cancel(nodeID)
	}
	return nil
}

// State returns the edit state of a node. Unknown nodes are Viewing.
func (r *Editors) State(nodeID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.machines[nodeID]; ok {
		return m.state
	}
	return Viewing
}

// Draft returns the draft of a node and whether it is in edit mode.
func (r *Editors) Draft(nodeID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[nodeID]
	if !ok || m.state != Editing {
		return "", false
	}
	return m.draft, true
}

// Active returns the drafts of all nodes in edit mode, keyed by node id.
func (r *Editors) Active() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string)
	for id, m := range r.machines {
		if m.state == Editing {
			out[id] = m.draft
		}
	}
	return out
}

// ActiveIDs returns the ids of nodes in edit mode, sorted.
func (r *Editors) ActiveIDs() []string {
	active := r.Active()
	ids := make([]string, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
