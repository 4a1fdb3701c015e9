// Package server exposes a viewer session over HTTP and pushes changes to
// browsers over a websocket.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kataras/golog"

	"github.com/matsen/ppigraph/internal/notify"
	"github.com/matsen/ppigraph/internal/session"
	"github.com/matsen/ppigraph/internal/upload"
)

const shutdownTimeout = 5 * time.Second

// Server serves one session.
type Server struct {
	sess           *session.Session
	hub            *Hub
	log            *golog.Logger
	layout         string
	maxUploadBytes int64
	baseCtx        context.Context
	mux            *http.ServeMux

	unsubscribe []func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is golog.Default.
func WithLogger(l *golog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithLayout sets the graph layout used by the page.
func WithLayout(layout string) Option {
	return func(s *Server) {
		s.layout = layout
	}
}

// WithMaxUploadBytes caps request bodies on upload routes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		s.maxUploadBytes = n
	}
}

// WithBaseContext sets the parent context of submitted tasks.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// New creates a server for sess and subscribes it to session changes.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:           sess,
		log:            golog.Default,
		layout:         "preset",
		maxUploadBytes: upload.DefaultMaxBytes,
		baseCtx:        context.Background(),
		mux:            http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.log)
	s.routes()

	s.unsubscribe = append(s.unsubscribe,
		sess.Subscribe(func() {
			snap := sess.Snapshot()
			s.hub.Broadcast(Message{Type: MessageSnapshot, Snapshot: &snap})
		}),
		sess.Feed().Subscribe(func(n notify.Notification) {
			s.hub.Broadcast(Message{Type: MessageNotification, Notification: &n})
		}),
	)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /echarts", s.handleECharts)
	s.mux.HandleFunc("GET /ws", s.handleWS)

	s.mux.HandleFunc("GET /api/graph", s.handleGraph)
	s.mux.HandleFunc("GET /api/graph/elements", s.handleElements)
	s.mux.HandleFunc("GET /api/graph/kinds", s.handleKinds)
	s.mux.HandleFunc("POST /api/intents", s.handleIntent)
	s.mux.HandleFunc("GET /api/nodes/{id}/neighbors", s.handleNeighbors)
	s.mux.HandleFunc("GET /api/nodes/{id}/edges", s.handleNodeEdges)

	s.mux.HandleFunc("POST /api/tasks", s.handleSubmitTask)
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleCancelTask)

	s.mux.HandleFunc("POST /api/uploads/csv", s.handleUploadCSV)
	s.mux.HandleFunc("POST /api/uploads/image", s.handleUploadImage)
	s.mux.HandleFunc("DELETE /api/uploads/image", s.handleRemoveImage)

	s.mux.HandleFunc("GET /api/literature", s.handleLiterature)
	s.mux.HandleFunc("GET /api/literature/{pmid}", s.handlePaper)
	s.mux.HandleFunc("GET /api/literature/{pmid}/open", s.handleOpenPaper)
	s.mux.HandleFunc("GET /api/notifications", s.handleNotifications)
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close detaches the server from the session and drops websocket clients.
func (s *Server) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
	s.hub.Close()
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
