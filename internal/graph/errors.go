package graph

import "errors"

// Operation errors. A failed operation leaves the store unchanged.
var (
	ErrInvalidReference = errors.New("edge references a node that does not exist")
	ErrNotFound         = errors.New("node not found")
	ErrInvalidKind      = errors.New("operation not allowed for this node kind")
	ErrEmptyLabel       = errors.New("label cannot be empty")
)

// Validation errors for seeded nodes and edges.
var (
	ErrEmptyID     = errors.New("id is required")
	ErrEmptySource = errors.New("source is required")
	ErrEmptyTarget = errors.New("target is required")
	ErrDuplicateID = errors.New("id already exists")
)

// ErrorKind returns the taxonomy name of a graph operation error, or ""
// if err is not one of them.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidReference):
		return "InvalidReference"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInvalidKind):
		return "InvalidKind"
	case errors.Is(err, ErrEmptyLabel):
		return "EmptyLabel"
	default:
		return ""
	}
}
