// Package batch turns many independent generation requests into one
// provider-side batch job, with sequential fallback on any failure.
package batch

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/llm"
)

const (
	// DefaultPollInterval is how often a submitted job is polled
	DefaultPollInterval = 10 * time.Second
	// DefaultMaxWait is the wall-clock budget for one batch job
	DefaultMaxWait = 600 * time.Second
	// minBatchSize is the request count below which batching is skipped
	minBatchSize = 2
)

// Coordinator submits request sets as batch jobs and demultiplexes the
// results. It is never less reliable than sequential calls: every
// failure mode falls back to per-request Generate calls.
type Coordinator struct {
	provider     llm.Provider
	pollInterval time.Duration
	maxWait      time.Duration
	log          zerolog.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithPollInterval overrides the poll interval
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxWait overrides the wall-clock wait budget
func WithMaxWait(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.maxWait = d
		}
	}
}

// New creates a Coordinator over the given provider
func New(provider llm.Provider, log zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:     provider,
		pollInterval: DefaultPollInterval,
		maxWait:      DefaultMaxWait,
		log:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes all requests and returns a result for every request id.
// Requests that could not be fulfilled even after fallback map to the
// empty string rather than an error.
func (c *Coordinator) Run(ctx context.Context, requests map[string]llm.Request) map[string]string {
	results := make(map[string]string, len(requests))
	if len(requests) == 0 {
		return results
	}

	if len(requests) < minBatchSize {
		c.runSequential(ctx, requests, results)
		return results
	}

	items := toItems(requests)

	jobID, err := c.provider.SubmitBatch(ctx, items)
	if err != nil {
		if errors.Is(err, llm.ErrBatchUnsupported) {
			c.log.Debug().Str("provider", c.provider.Name()).Msg("provider has no batch support, running sequentially")
		} else {
			c.log.Warn().Err(err).Msg("batch submission failed, running sequentially")
		}
		c.runSequential(ctx, requests, results)
		return results
	}
	c.log.Info().Str("job", jobID).Int("requests", len(items)).Msg("batch submitted")

	ended, err := c.waitForEnd(ctx, jobID)
	if err != nil {
		c.log.Warn().Err(err).Str("job", jobID).Msg("batch polling failed, running sequentially")
		c.runSequential(ctx, requests, results)
		return results
	}
	if !ended {
		// Budget exhausted. The job keeps running remotely; no
		// cancellation is issued and it is never resumed.
		c.log.Warn().Str("job", jobID).Dur("budget", c.maxWait).Msg("batch wait budget exhausted, running sequentially")
		c.runSequential(ctx, requests, results)
		return results
	}

	outcomes, err := c.provider.FetchBatchResults(ctx, jobID)
	if err != nil {
		c.log.Warn().Err(err).Str("job", jobID).Msg("fetching batch results failed, running sequentially")
		c.runSequential(ctx, requests, results)
		return results
	}

	for id, req := range requests {
		outcome, ok := outcomes[id]
		if ok && outcome.Succeeded() {
			results[id] = outcome.Text
			continue
		}
		if ok {
			c.log.Warn().Str("request", id).Str("reason", outcome.Error).Msg("batch member failed, retrying individually")
		} else {
			c.log.Warn().Str("request", id).Msg("batch member dropped by provider, retrying individually")
		}
		results[id] = c.generateOne(ctx, id, req)
	}
	return results
}

// waitForEnd polls the job until it ends or the wait budget expires.
// Returns false when the budget ran out before the job ended.
func (c *Coordinator) waitForEnd(ctx context.Context, jobID string) (bool, error) {
	deadline := time.Now().Add(c.maxWait)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.provider.PollBatch(ctx, jobID)
		if err != nil {
			return false, err
		}
		switch status {
		case llm.BatchEnded:
			return true, nil
		case llm.BatchFailed:
			return false, &llm.ProviderError{Provider: c.provider.Name(), Message: "batch job failed"}
		}

		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// runSequential issues every request through the single-request path.
// Iteration order is fixed so retries behave deterministically in tests.
func (c *Coordinator) runSequential(ctx context.Context, requests map[string]llm.Request, results map[string]string) {
	ids := make([]string, 0, len(requests))
	for id := range requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		results[id] = c.generateOne(ctx, id, requests[id])
	}
}

func (c *Coordinator) generateOne(ctx context.Context, id string, req llm.Request) string {
	text, err := c.provider.Generate(ctx, req)
	if err != nil {
		c.log.Error().Err(err).Str("request", id).Msg("generation failed")
		return ""
	}
	return text
}

func toItems(requests map[string]llm.Request) []llm.BatchItem {
	items := make([]llm.BatchItem, 0, len(requests))
	for id, req := range requests {
		items = append(items, llm.BatchItem{ID: id, Request: req})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
