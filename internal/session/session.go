// Package session wires the graph store, selection, label editors, task
// runner and uploads into one viewer session driven by intents.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/kataras/golog"

	"github.com/matsen/ppigraph/internal/editor"
	"github.com/matsen/ppigraph/internal/graph"
	"github.com/matsen/ppigraph/internal/literature"
	"github.com/matsen/ppigraph/internal/notify"
	"github.com/matsen/ppigraph/internal/selection"
	"github.com/matsen/ppigraph/internal/storage"
	"github.com/matsen/ppigraph/internal/tasks"
	"github.com/matsen/ppigraph/internal/upload"
)

// Session is the state of one viewer.
type Session struct {
	store     *graph.Store
	selection *selection.Controller
	editors   *editor.Editors
	feed      *notify.Feed
	runner    *tasks.Runner
	uploads   *upload.Holder
	index     *storage.DB
	log       *golog.Logger

	// mu serializes intent dispatch.
	mu sync.Mutex

	stateMu   sync.Mutex
	lastEvent *tasks.Event
	listeners map[int]func()
	listenSeq int
}

type options struct {
	nodes             []graph.Node
	edges             []graph.Edge
	logger            *golog.Logger
	notificationLimit int
	maxUploadBytes    int64
	taskOptions       []tasks.Option
}

// Option configures a Session.
type Option func(*options)

// WithGraph replaces the built-in seed graph.
func WithGraph(nodes []graph.Node, edges []graph.Edge) Option {
	return func(o *options) {
		o.nodes = nodes
		o.edges = edges
	}
}

// WithLogger sets the logger. The default is golog.Default.
func WithLogger(l *golog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithNotificationLimit sets how many notifications are retained.
func WithNotificationLimit(n int) Option {
	return func(o *options) {
		o.notificationLimit = n
	}
}

// WithMaxUploadBytes caps the size of uploaded files.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		o.maxUploadBytes = n
	}
}

// WithTaskOptions configures the simulated request runner.
func WithTaskOptions(opts ...tasks.Option) Option {
	return func(o *options) {
		o.taskOptions = append(o.taskOptions, opts...)
	}
}

// New creates a session over the seed graph.
func New(opts ...Option) (*Session, error) {
	o := options{
		nodes:  graph.SeedNodes(),
		edges:  graph.SeedEdges(),
		logger: golog.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := graph.NewStore(o.nodes, o.edges)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}

	index, err := storage.OpenMemoryDB()
	if err != nil {
		return nil, fmt.Errorf("opening query index: %w", err)
	}

	uploads := upload.NewHolder(o.maxUploadBytes)
	taskOpts := append([]tasks.Option{tasks.WithCSVProvider(uploads)}, o.taskOptions...)

	s := &Session{
		store:     store,
		selection: selection.NewController(store),
		editors:   editor.NewEditors(store),
		feed:      notify.NewFeed(o.notificationLimit),
		runner:    tasks.NewRunner(taskOpts...),
		uploads:   uploads,
		index:     index,
		log:       o.logger,
		listeners: make(map[int]func()),
	}

	if err := s.reindex(); err != nil {
		index.Close()
		return nil, err
	}

	store.OnRename(func(ev graph.RenameEvent) {
		s.feed.Info("Protein %s renamed to %s", ev.NodeID, ev.NewLabel)
	})
	store.OnChange(func() {
		if err := s.reindex(); err != nil {
			s.log.Errorf("rebuilding query index: %v", err)
		}
	})
	s.runner.OnComplete(s.taskCompleted)
	s.runner.OnGraphDataChange(s.graphDataChanged)

	return s, nil
}

// Close cancels any running task and releases the query index.
func (s *Session) Close() error {
	if t, ok := s.runner.Current(); ok {
		s.runner.Cancel(t.ID)
	}
	return s.index.Close()
}

// Store returns the graph store.
func (s *Session) Store() *graph.Store { return s.store }

// Feed returns the notification feed.
func (s *Session) Feed() *notify.Feed { return s.feed }

// Tasks returns the simulated request runner.
func (s *Session) Tasks() *tasks.Runner { return s.runner }

// Uploads returns the upload holder.
func (s *Session) Uploads() *upload.Holder { return s.uploads }

// Dispatch applies one intent. A failed intent leaves the session
// unchanged, posts an error notification and returns the error.
func (s *Session) Dispatch(in Intent) error {
	s.mu.Lock()
	err := s.apply(in)
	s.mu.Unlock()

	if err != nil {
		s.log.Debugf("intent %s rejected: %v", in.Type, err)
		s.feed.Error("%v", err)
		return err
	}
	s.log.Debugf("intent %s applied", in.Type)
	s.changed()
	return nil
}

// Subscribe registers fn to run after every state change and returns a
// function that removes it.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	s.stateMu.Lock()
	s.listenSeq++
	id := s.listenSeq
	s.listeners[id] = fn
	s.stateMu.Unlock()

	return func() {
		s.stateMu.Lock()
		delete(s.listeners, id)
		s.stateMu.Unlock()
	}
}

func (s *Session) changed() {
	s.stateMu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.stateMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Session) reindex() error {
	nodes, edges, err := s.index.RebuildFromGraph(s.store.ListNodes(), s.store.ListEdges())
	if err != nil {
		return fmt.Errorf("rebuilding query index: %w", err)
	}
	s.log.Debugf("query index rebuilt: %d nodes, %d edges", nodes, edges)
	return nil
}

// Neighbors returns the nodes adjacent to nodeID.
func (s *Session) Neighbors(nodeID string) ([]graph.Node, error) {
	return s.index.Neighbors(nodeID)
}

// EdgesByNode returns the edges touching nodeID.
func (s *Session) EdgesByNode(nodeID string) ([]graph.Edge, error) {
	if !s.store.HasNode(nodeID) {
		return nil, fmt.Errorf("node %s: %w", nodeID, graph.ErrNotFound)
	}
	return s.index.EdgesByNode(nodeID)
}

// CountByKind returns node counts per kind from the query index.
func (s *Session) CountByKind() (map[graph.Kind]int, error) {
	return s.index.CountByKind()
}

// SubmitTask starts a simulated request.
func (s *Session) SubmitTask(ctx context.Context, req tasks.Request) (tasks.Task, error) {
	t, err := s.runner.Submit(ctx, req)
	if err != nil {
		s.feed.Error("%v", err)
		return tasks.Task{}, err
	}
	s.log.Infof("task %s started: %s", t.ID, t.Source)
	s.changed()
	return t, nil
}

// CancelTask stops a running request.
func (s *Session) CancelTask(id string) error {
	return s.runner.Cancel(id)
}

func (s *Session) taskCompleted(t tasks.Task) {
	s.log.Infof("task %s %s", t.ID, t.Status)
	if t.Status == tasks.StatusFailed {
		s.feed.Error("%s", t.Message)
	} else {
		s.feed.Info("%s", t.Message)
	}
	s.changed()
}

func (s *Session) graphDataChanged(ev tasks.Event) {
	s.stateMu.Lock()
	s.lastEvent = &ev
	s.stateMu.Unlock()
	s.log.Debugf("graph data change from %s", ev.Source)
}

// LastEvent returns the most recent graph-data-change event.
func (s *Session) LastEvent() (tasks.Event, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.lastEvent == nil {
		return tasks.Event{}, false
	}
	return *s.lastEvent, true
}

// UploadCSV stores an interactions CSV for later processing. Re-uploading
// the held file with identical content is reported and changes nothing.
func (s *Session) UploadCSV(name string, r io.Reader) (upload.File, error) {
	prev, had := s.uploads.CSV()
	f, err := s.uploads.SetCSV(name, r)
	if err != nil {
		s.feed.Error("%v", err)
		return upload.File{}, err
	}
	if had && prev.Name == f.Name && prev.SameContent(f) {
		s.feed.Info("CSV file %q is already loaded", f.Name)
		return f, nil
	}
	s.feed.Info("CSV file %q uploaded successfully", f.Name)
	s.changed()
	return f, nil
}

// UploadImage stores a reference knowledge graph image.
func (s *Session) UploadImage(name, contentType string, r io.Reader) (upload.File, error) {
	f, err := s.uploads.SetImage(name, contentType, r)
	if err != nil {
		s.feed.Error("%v", err)
		return upload.File{}, err
	}
	s.feed.Info("Knowledge graph image uploaded successfully")
	s.changed()
	return f, nil
}

// RemoveImage discards the reference image.
func (s *Session) RemoveImage() bool {
	if !s.uploads.RemoveImage() {
		return false
	}
	s.feed.Info("Knowledge graph image removed")
	s.changed()
	return true
}

// OpenPaper returns the PubMed link for a literature record.
func (s *Session) OpenPaper(pmid string) (string, error) {
	r, err := literature.ByPMID(pmid)
	if err != nil {
		s.feed.Error("%v", err)
		return "", err
	}
	s.feed.Info("Opening PubMed: %s", r.PMID)
	return r.URL(), nil
}
