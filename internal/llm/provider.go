// Package llm defines the unified interface to text-generation providers.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrBatchUnsupported is returned from SubmitBatch by providers without
// native batch submission. Callers degrade to sequential Generate calls.
var ErrBatchUnsupported = errors.New("llm: batch submission not supported by provider")

// Request is a single generation request. Immutable once submitted.
type Request struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

// BatchItem pairs a caller-assigned id with its request. The id must be
// unique within one batch.
type BatchItem struct {
	ID      string
	Request Request
}

// BatchStatus is the lifecycle state of a provider-side batch job
type BatchStatus string

const (
	BatchSubmitted  BatchStatus = "submitted"
	BatchInProgress BatchStatus = "in_progress"
	BatchEnded      BatchStatus = "ended"
	BatchFailed     BatchStatus = "failed"
)

// Outcome is the per-request result of an ended batch
type Outcome struct {
	Text  string
	Error string
}

// Succeeded reports whether the request produced text
func (o Outcome) Succeeded() bool {
	return o.Error == ""
}

// Provider is implemented by every text-generation backend
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
	SubmitBatch(ctx context.Context, items []BatchItem) (string, error)
	PollBatch(ctx context.Context, jobID string) (BatchStatus, error)
	FetchBatchResults(ctx context.Context, jobID string) (map[string]Outcome, error)
}

// ProviderError wraps network, auth and rate-limit failures from a backend
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
