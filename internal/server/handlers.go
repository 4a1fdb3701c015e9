package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/matsen/ppigraph/internal/graph"
	"github.com/matsen/ppigraph/internal/literature"
	"github.com/matsen/ppigraph/internal/session"
	"github.com/matsen/ppigraph/internal/tasks"
	"github.com/matsen/ppigraph/internal/upload"
	"github.com/matsen/ppigraph/internal/viz"
)

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusResponse acknowledges a request with no other result.
type StatusResponse struct {
	Status string `json:"status"`
}

// OpenResponse carries a link for the browser to open.
type OpenResponse struct {
	URL string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := session.ErrorKind(err)

	switch {
	case errors.Is(err, graph.ErrNotFound),
		errors.Is(err, tasks.ErrTaskNotFound),
		errors.Is(err, literature.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tasks.ErrBusy), errors.Is(err, tasks.ErrNotRunning):
		status = http.StatusConflict
	case errors.Is(err, upload.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
	case kind != "",
		errors.Is(err, tasks.ErrEmptyInput),
		errors.Is(err, tasks.ErrNoUpload),
		errors.Is(err, tasks.ErrUnknownSource),
		errors.Is(err, upload.ErrNotCSV),
		errors.Is(err, upload.ErrNotImage),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrNoName),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

var errBadRequest = errors.New("bad request")

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := viz.BuildGraphData(s.sess.Snapshot())
	opts := viz.DefaultOptions()
	opts.Layout = s.layout
	opts.Live = true

	page, err := viz.GeneratePage(data, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Server) handleECharts(w http.ResponseWriter, r *http.Request) {
	opts := viz.DefaultEChartsOptions()
	if layout := r.URL.Query().Get("layout"); layout != "" {
		opts.Layout = layout
	}

	data := viz.BuildGraphData(s.sess.Snapshot())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := viz.RenderECharts(w, data, opts); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Snapshot()
	s.hub.ServeWS(w, r, Message{Type: MessageSnapshot, Snapshot: &snap})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	out, err := viz.BuildGraphData(s.sess.Snapshot()).ToCytoscapeJSON()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, out)
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	counts, err := s.sess.CountByKind()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var in session.Intent
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sess.Dispatch(in); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.sess.Neighbors(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleNodeEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := s.sess.EdgesByNode(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	writeJSON(w, http.StatusOK, edges)
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var req tasks.Request
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.sess.SubmitTask(s.baseCtx, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.sess.Tasks().Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.CancelTask(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "cancelling"})
}

// formFile reads the multipart "file" field within the upload limit.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (name, contentType string, data multipart.File, err error) {
	// Leave room for multipart framing; the holder enforces the exact cap.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", "", nil, upload.ErrTooLarge
		}
		return "", "", nil, fmt.Errorf("%w: reading form file: %v", errBadRequest, err)
	}
	return header.Filename, header.Header.Get("Content-Type"), file, nil
}

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	name, _, file, err := s.formFile(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer file.Close()

	f, err := s.sess.UploadCSV(name, file)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	name, contentType, file, err := s.formFile(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer file.Close()

	f, err := s.sess.UploadImage(name, contentType, file)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	if !s.sess.RemoveImage() {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no image uploaded"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "removed"})
}

func (s *Server) handleLiterature(w http.ResponseWriter, r *http.Request) {
	records := literature.All()
	if protein := r.URL.Query().Get("protein"); protein != "" {
		records = literature.MentioningProtein(protein)
	}
	if records == nil {
		records = []literature.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	rec, err := literature.ByPMID(r.PathValue("pmid"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleOpenPaper(w http.ResponseWriter, r *http.Request) {
	url, err := s.sess.OpenPaper(r.PathValue("pmid"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OpenResponse{URL: url})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Feed().Recent())
}
