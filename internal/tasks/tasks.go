// Package tasks runs the simulated protein search, protein lookup and CSV
// processing requests. At most one request is in flight at a time.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/matsen/ppigraph/internal/upload"
)

const (
	// DefaultSearchDelay is the simulated latency of a protein search.
	DefaultSearchDelay = 1500 * time.Millisecond

	// DefaultLookupDelay is the simulated latency of a protein id lookup.
	DefaultLookupDelay = 1500 * time.Millisecond

	// DefaultCSVDelay is the simulated latency of CSV processing.
	DefaultCSVDelay = 2000 * time.Millisecond

	// DefaultRateLimit is the number of simulated requests allowed per second.
	DefaultRateLimit = 2.0

	historyLimit = 20
)

// Task errors.
var (
	ErrBusy          = errors.New("another request is already processing")
	ErrEmptyInput    = errors.New("query is empty")
	ErrNoUpload      = errors.New("no CSV file uploaded")
	ErrUnknownSource = errors.New("unknown request source")
	ErrTaskNotFound  = errors.New("task not found")
	ErrNotRunning    = errors.New("task is not running")
)

// Source identifies the kind of request.
type Source string

const (
	SourceSearch Source = "search"
	SourceID     Source = "id"
	SourceCSV    Source = "csv"
)

// ParseSource converts a string to a Source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceSearch, SourceID, SourceCSV:
		return Source(s), nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownSource)
	}
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Request is a submitted simulated request.
type Request struct {
	Source    Source `json:"source"`
	Query     string `json:"query,omitempty"`
	ProteinID string `json:"protein_id,omitempty"`
}

// Event is the payload delivered to graph-data-change listeners.
// Its contents are opaque to the graph.
type Event struct {
	Source    Source `json:"source"`
	Query     string `json:"query,omitempty"`
	ProteinID string `json:"protein_id,omitempty"`
	File      string `json:"file,omitempty"`
}

// Task is the state of one request.
type Task struct {
	ID         string `json:"id"`
	Source     Source `json:"source"`
	Query      string `json:"query,omitempty"`
	ProteinID  string `json:"protein_id,omitempty"`
	File       string `json:"file,omitempty"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// Done reports whether the task has finished.
func (t Task) Done() bool {
	return t.Status != StatusRunning
}

// CSVProvider supplies the uploaded CSV file for csv requests.
type CSVProvider interface {
	CSV() (upload.File, bool)
}

// Fetcher performs the request after the simulated delay. A nil Fetcher
// always succeeds.
type Fetcher func(ctx context.Context, req Request) error

type entry struct {
	task   Task
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner executes requests one at a time.
type Runner struct {
	searchDelay time.Duration
	lookupDelay time.Duration
	csvDelay    time.Duration
	limiter     *rate.Limiter
	csv         CSVProvider
	fetch       Fetcher
	now         func() time.Time

	mu         sync.Mutex
	current    *entry
	history    []*entry
	onComplete []func(Task)
	onChange   []func(Event)
}

// Option configures a Runner.
type Option func(*Runner)

// WithDelays sets the simulated latency per source.
func WithDelays(search, lookup, csv time.Duration) Option {
	return func(r *Runner) {
		r.searchDelay = search
		r.lookupDelay = lookup
		r.csvDelay = csv
	}
}

// WithRateLimit sets requests per second. A non-positive value disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithCSVProvider sets where csv requests find their file.
func WithCSVProvider(p CSVProvider) Option {
	return func(r *Runner) {
		r.csv = p
	}
}

// WithFetcher replaces the request body run after the delay.
func WithFetcher(f Fetcher) Option {
	return func(r *Runner) {
		r.fetch = f
	}
}

// NewRunner creates a runner with default delays and pacing.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		searchDelay: DefaultSearchDelay,
		lookupDelay: DefaultLookupDelay,
		csvDelay:    DefaultCSVDelay,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnComplete registers fn to run when any task finishes.
func (r *Runner) OnComplete(fn func(Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onComplete = append(r.onComplete, fn)
}

// OnGraphDataChange registers fn to run when a task succeeds. It runs
// while the task is still current, before the OnComplete hooks.
func (r *Runner) OnGraphDataChange(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// Submit validates req and starts it in the background. The task stops
// early if ctx is cancelled.
func (r *Runner) Submit(ctx context.Context, req Request) (Task, error) {
	req.Query = strings.TrimSpace(req.Query)
	req.ProteinID = strings.TrimSpace(req.ProteinID)

	var file string
	var delay time.Duration
	switch req.Source {
	case SourceSearch:
		if req.Query == "" {
			return Task{}, ErrEmptyInput
		}
		delay = r.searchDelay
	case SourceID:
		if req.ProteinID == "" {
			return Task{}, ErrEmptyInput
		}
		delay = r.lookupDelay
	case SourceCSV:
		if r.csv == nil {
			return Task{}, ErrNoUpload
		}
		f, ok := r.csv.CSV()
		if !ok {
			return Task{}, ErrNoUpload
		}
		file = f.Name
		delay = r.csvDelay
	default:
		return Task{}, fmt.Errorf("%q: %w", req.Source, ErrUnknownSource)
	}

	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return Task{}, ErrBusy
	}
	taskCtx, cancel := context.WithCancel(ctx)
	e := &entry{
		task: Task{
			ID:        uuid.New().String(),
			Source:    req.Source,
			Query:     req.Query,
			ProteinID: req.ProteinID,
			File:      file,
			Status:    StatusRunning,
			StartedAt: r.now().UTC().Format(time.RFC3339),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.current = e
	r.history = append(r.history, e)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
	task := e.task
	r.mu.Unlock()

	go r.run(taskCtx, e, req, delay)
	return task, nil
}

func (r *Runner) run(ctx context.Context, e *entry, req Request, delay time.Duration) {
	defer e.cancel()

	err := r.limiter.Wait(ctx)
	if err == nil {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = ctx.Err()
		case <-timer.C:
		}
	}
	if err == nil && r.fetch != nil {
		err = r.fetch(ctx, req)
	}

	status := StatusSucceeded
	switch {
	case err == nil:
	case ctx.Err() != nil:
		status = StatusCancelled
	default:
		status = StatusFailed
	}

	// Change hooks run while the task still counts as current, so anyone
	// who sees it finished also sees its event.
	if status == StatusSucceeded {
		r.mu.Lock()
		changes := append([]func(Event){}, r.onChange...)
		r.mu.Unlock()

		ev := Event{Source: e.task.Source, Query: e.task.Query, ProteinID: e.task.ProteinID, File: e.task.File}
		for _, fn := range changes {
			fn(ev)
		}
	}

	r.mu.Lock()
	e.task.Status = status
	e.task.Message = message(e.task)
	e.task.FinishedAt = r.now().UTC().Format(time.RFC3339)
	if r.current == e {
		r.current = nil
	}
	task := e.task
	completes := append([]func(Task){}, r.onComplete...)
	r.mu.Unlock()
	defer close(e.done)

	for _, fn := range completes {
		fn(task)
	}
}

// Cancel stops a running task.
func (r *Runner) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.find(id)
	if e == nil {
		return fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	if e.task.Status != StatusRunning {
		return fmt.Errorf("%s: %w", id, ErrNotRunning)
	}
	e.cancel()
	return nil
}

// Wait blocks until the task finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	e := r.find(id)
	r.mu.Unlock()
	if e == nil {
		return Task{}, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}

	select {
	case <-e.done:
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
	return r.Get(id)
}

// Get returns a task by id.
func (r *Runner) Get(id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.find(id)
	if e == nil {
		return Task{}, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	return e.task, nil
}

// Current returns the task in flight, if any.
func (r *Runner) Current() (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Task{}, false
	}
	return r.current.task, true
}

// Busy reports whether a task is in flight.
func (r *Runner) Busy() bool {
	_, ok := r.Current()
	return ok
}

// find looks up a task in the history. Caller holds mu.
func (r *Runner) find(id string) *entry {
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].task.ID == id {
			return r.history[i]
		}
	}
	return nil
}

// message returns the user-facing text for a finished task.
func message(t Task) string {
	switch t.Status {
	case StatusSucceeded:
		switch t.Source {
		case SourceSearch:
			return "Search completed for: " + t.Query
		case SourceID:
			return "Protein data fetched for ID: " + t.ProteinID
		case SourceCSV:
			return "CSV data processed and graph updated!"
		}
	case StatusFailed:
		switch t.Source {
		case SourceSearch:
			return "Search failed"
		case SourceID:
			return "Failed to fetch protein data"
		case SourceCSV:
			return "Error processing CSV file"
		}
	case StatusCancelled:
		return "Request cancelled"
	}
	return ""
}
