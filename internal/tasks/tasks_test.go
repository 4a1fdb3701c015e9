package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matsen/ppigraph/internal/upload"
)

func fastRunner(opts ...Option) *Runner {
	base := []Option{
		WithDelays(time.Millisecond, time.Millisecond, time.Millisecond),
		WithRateLimit(0),
	}
	return NewRunner(append(base, opts...)...)
}

func waitFor(t *testing.T, r *Runner, id string) Task {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err := r.Wait(ctx, id)
	if err != nil {
		t.Fatalf("Wait(%s) failed: %v", id, err)
	}
	return task
}

func TestRunner_SuccessMessages(t *testing.T) {
	holder := upload.NewHolder(0)
	if _, err := holder.SetCSV("interactions.csv", strings.NewReader("tau,shp2")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{"search", Request{Source: SourceSearch, Query: "tau"}, "Search completed for: tau"},
		{"id", Request{Source: SourceID, ProteinID: "P10636"}, "Protein data fetched for ID: P10636"},
		{"csv", Request{Source: SourceCSV}, "CSV data processed and graph updated!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fastRunner(WithCSVProvider(holder))

			started, err := r.Submit(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
			if started.Status != StatusRunning || started.ID == "" {
				t.Errorf("started = %+v", started)
			}

			done := waitFor(t, r, started.ID)
			if done.Status != StatusSucceeded {
				t.Errorf("status = %s, want succeeded", done.Status)
			}
			if done.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", done.Message, tt.wantMsg)
			}
		})
	}
}

func TestRunner_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"blank query", Request{Source: SourceSearch, Query: "  "}, ErrEmptyInput},
		{"blank id", Request{Source: SourceID}, ErrEmptyInput},
		{"csv without upload", Request{Source: SourceCSV}, ErrNoUpload},
		{"unknown source", Request{Source: "ftp", Query: "x"}, ErrUnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fastRunner(WithCSVProvider(upload.NewHolder(0)))
			_, err := r.Submit(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
			if r.Busy() {
				t.Error("runner busy after rejected submit")
			}
		})
	}
}

func TestRunner_OneInFlight(t *testing.T) {
	r := NewRunner(WithDelays(time.Hour, time.Hour, time.Hour), WithRateLimit(0))

	first, err := r.Submit(context.Background(), Request{Source: SourceSearch, Query: "tau"})
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	_, err = r.Submit(context.Background(), Request{Source: SourceID, ProteinID: "P10636"})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("second Submit error = %v, want ErrBusy", err)
	}

	cur, ok := r.Current()
	if !ok || cur.ID != first.ID {
		t.Errorf("Current() = %+v, %v", cur, ok)
	}

	if err := r.Cancel(first.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	done := waitFor(t, r, first.ID)
	if done.Status != StatusCancelled || done.Message != "Request cancelled" {
		t.Errorf("cancelled task = %+v", done)
	}
	if r.Busy() {
		t.Error("runner still busy after cancellation")
	}

	if _, err := r.Submit(context.Background(), Request{Source: SourceSearch, Query: "app"}); err != nil {
		t.Errorf("Submit after cancel failed: %v", err)
	}
}

func TestRunner_ContextCancel(t *testing.T) {
	r := NewRunner(WithDelays(time.Hour, time.Hour, time.Hour), WithRateLimit(0))
	ctx, cancel := context.WithCancel(context.Background())

	task, err := r.Submit(ctx, Request{Source: SourceSearch, Query: "tau"})
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	if done := waitFor(t, r, task.ID); done.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", done.Status)
	}
}

func TestRunner_CancelErrors(t *testing.T) {
	r := fastRunner()

	if err := r.Cancel("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Cancel(missing) error = %v, want ErrTaskNotFound", err)
	}

	task, _ := r.Submit(context.Background(), Request{Source: SourceSearch, Query: "tau"})
	waitFor(t, r, task.ID)

	if err := r.Cancel(task.ID); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Cancel(finished) error = %v, want ErrNotRunning", err)
	}
}

func TestRunner_Failure(t *testing.T) {
	r := fastRunner(WithFetcher(func(ctx context.Context, req Request) error {
		return errors.New("upstream unavailable")
	}))

	var changes int
	r.OnGraphDataChange(func(Event) { changes++ })

	task, err := r.Submit(context.Background(), Request{Source: SourceID, ProteinID: "P10636"})
	if err != nil {
		t.Fatal(err)
	}
	done := waitFor(t, r, task.ID)

	if done.Status != StatusFailed || done.Message != "Failed to fetch protein data" {
		t.Errorf("failed task = %+v", done)
	}
	if changes != 0 {
		t.Errorf("graph data change fired %d times on failure", changes)
	}
}

func TestRunner_Callbacks(t *testing.T) {
	holder := upload.NewHolder(0)
	holder.SetCSV("data.csv", strings.NewReader("x"))
	r := fastRunner(WithCSVProvider(holder))

	var mu sync.Mutex
	var completed []Task
	var events []Event
	r.OnComplete(func(task Task) {
		mu.Lock()
		completed = append(completed, task)
		mu.Unlock()
	})
	r.OnGraphDataChange(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	task, err := r.Submit(context.Background(), Request{Source: SourceCSV})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, r, task.ID)

	mu.Lock()
	defer mu.Unlock()
	if len(completed) != 1 || !completed[0].Done() {
		t.Errorf("completed = %+v", completed)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Source != SourceCSV || events[0].File != "data.csv" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestRunner_ChangeHooksRunBeforeCompletion(t *testing.T) {
	r := fastRunner()

	var mu sync.Mutex
	var order []string
	var currentDuringChange bool
	r.OnComplete(func(Task) {
		mu.Lock()
		order = append(order, "complete")
		mu.Unlock()
	})
	r.OnGraphDataChange(func(Event) {
		_, busy := r.Current()
		mu.Lock()
		order = append(order, "change")
		currentDuringChange = busy
		mu.Unlock()
	})

	task, err := r.Submit(context.Background(), Request{Source: SourceID, ProteinID: "P10636"})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, r, task.ID)

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != "change,complete" {
		t.Errorf("hook order = %v, want [change complete]", order)
	}
	if !currentDuringChange {
		t.Error("task was no longer current while change hooks ran")
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range []string{"search", "id", "csv"} {
		if _, err := ParseSource(s); err != nil {
			t.Errorf("ParseSource(%q) error = %v", s, err)
		}
	}
	if _, err := ParseSource("pdf"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("ParseSource(pdf) error = %v", err)
	}
}
