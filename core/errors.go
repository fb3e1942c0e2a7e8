package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuestion = errors.New("missing question")
	ErrNotFound      = errors.New("not found")
	ErrEmbedMismatch = errors.New("embedding count does not match input count")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PipelineError wraps a failure in one stage of the ingestion or query
// pipeline with enough context for operator diagnosis.
type PipelineError struct {
	Op    string
	DocID string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.DocID != "" {
		return fmt.Sprintf("%s [doc=%s]: %v", e.Op, e.DocID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewPipelineError(op, docID string, err error) *PipelineError {
	return &PipelineError{Op: op, DocID: docID, Err: err}
}
