// Package upload holds user-supplied files in memory. Files are
// fingerprinted but never parsed or written to disk.
package upload

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes = 10 << 20

// Upload errors.
var (
	ErrNotCSV    = errors.New("file must have a .csv extension")
	ErrNotImage  = errors.New("file must be an image")
	ErrTooLarge  = errors.New("file exceeds upload limit")
	ErrEmptyFile = errors.New("file is empty")
	ErrNoName    = errors.New("file name is required")
)

// File is an uploaded file held in memory.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Digest      string `json:"digest"` // blake2b-256, hex
	Data        []byte `json:"-"`
}

// DataURL encodes the file as a data: URL for inline display.
func (f File) DataURL() string {
	return "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// SameContent reports whether f and o hold identical bytes.
func (f File) SameContent(o File) bool {
	return f.Digest != "" && f.Digest == o.Digest
}

// Holder keeps the latest CSV file and the latest reference graph image.
type Holder struct {
	maxBytes int64

	mu    sync.RWMutex
	csv   *File
	image *File
}

// NewHolder creates a holder accepting files up to maxBytes.
// A non-positive maxBytes uses DefaultMaxBytes.
func NewHolder(maxBytes int64) *Holder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Holder{maxBytes: maxBytes}
}

// SetCSV reads and stores a CSV upload, replacing any previous one.
func (h *Holder) SetCSV(name string, r io.Reader) (File, error) {
	if name == "" {
		return File{}, ErrNoName
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return File{}, fmt.Errorf("%s: %w", name, ErrNotCSV)
	}

	f, err := h.read(name, "text/csv", r)
	if err != nil {
		return File{}, err
	}

	h.mu.Lock()
	h.csv = &f
	h.mu.Unlock()
	return f, nil
}

// CSV returns the current CSV upload.
func (h *Holder) CSV() (File, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.csv == nil {
		return File{}, false
	}
	return *h.csv, true
}

// SetImage reads and stores a reference graph image.
func (h *Holder) SetImage(name, contentType string, r io.Reader) (File, error) {
	if name == "" {
		return File{}, ErrNoName
	}
	if !strings.HasPrefix(contentType, "image/") {
		return File{}, fmt.Errorf("%s (%s): %w", name, contentType, ErrNotImage)
	}

	f, err := h.read(name, contentType, r)
	if err != nil {
		return File{}, err
	}

	h.mu.Lock()
	h.image = &f
	h.mu.Unlock()
	return f, nil
}

// Image returns the current reference image.
func (h *Holder) Image() (File, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.image == nil {
		return File{}, false
	}
	return *h.image, true
}

// RemoveImage discards the reference image. Returns false if there was none.
func (h *Holder) RemoveImage() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	had := h.image != nil
	h.image = nil
	return had
}

// read consumes r up to the size cap and fingerprints the content.
func (h *Holder) read(name, contentType string, r io.Reader) (File, error) {
	data, err := io.ReadAll(io.LimitReader(r, h.maxBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > h.maxBytes {
		return File{}, fmt.Errorf("%s: %w (%d bytes)", name, ErrTooLarge, h.maxBytes)
	}
	if len(data) == 0 {
		return File{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}

	sum := blake2b.Sum256(data)
	return File{
		Name:        filepath.Base(name),
		Size:        int64(len(data)),
		ContentType: contentType,
		Digest:      hex.EncodeToString(sum[:]),
		Data:        data,
	}, nil
}
