// Package executor implements the fan-out engine (§4.3): running an LLM,
// embedding, or pure-compute step against every configured model in
// parallel, rate-limited per provider, with per-model failures captured
// instead of propagated.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/intelligencedev/ragas-engine/internal/modelstore"
	"github.com/intelligencedev/ragas-engine/internal/ratelimit"
	"github.com/intelligencedev/ragas-engine/internal/util"
)

// StepType classifies what kind of work a StepResults instance recorded.
type StepType string

const (
	StepLLM       StepType = "llm"
	StepEmbedding StepType = "embedding"
	StepCompute   StepType = "compute"
)

// ModelResult is the outcome of one model invocation within one step.
// Exactly one of Result or Err is non-nil for a completed result.
type ModelResult[T any] struct {
	ModelID  string
	Result   T
	Err      error
	Duration time.Duration
	Request  string
}

// IsSuccess reports whether this result completed without error.
func (m ModelResult[T]) IsSuccess() bool { return m.Err == nil }

// StepResults is one logical pipeline step's outcome across all models it
// ran against.
type StepResults struct {
	StepName   string
	StepIndex  int
	TotalSteps int
	StepType   StepType
	Request    string
	Results    []ModelResult[any]
}

// ModelExclusionEvent records that a model dropped out of an evaluation
// mid-pipeline; once excluded a model must not appear in later steps.
type ModelExclusionEvent struct {
	ModelID         string
	FailedStepName  string
	FailedStepIndex int
	Cause           error
}

// AllModelsFailedError is fatal: every model failed one step, so the metric
// cannot produce a score for that step.
type AllModelsFailedError struct {
	StepName   string
	MetricName string
}

func (e *AllModelsFailedError) Error() string {
	return fmt.Sprintf("All models failed at step %s for metric: %s", e.StepName, e.MetricName)
}

// Executor runs steps against a configured set of chat/embedding clients,
// respecting per-provider rate limits. One Executor is constructed once
// and shared by every metric evaluation (explicit-constructor-injection,
// per §9 — no ambient container).
type Executor struct {
	chatStore  *modelstore.ChatClientStore
	embedStore *modelstore.EmbeddingModelStore
	limiters   *ratelimit.ProviderRegistry
}

// New constructs an Executor.
func New(chatStore *modelstore.ChatClientStore, embedStore *modelstore.EmbeddingModelStore, limiters *ratelimit.ProviderRegistry) *Executor {
	return &Executor{chatStore: chatStore, embedStore: embedStore, limiters: limiters}
}

// ResponseFactory builds a fresh zero value of a metric's response schema
// type, so each concurrent call decodes into its own instance.
type ResponseFactory func() any

// ExecuteLLM runs prompt against every model in modelIDs in parallel,
// preserving the input order in the returned slice regardless of
// completion order. No per-model error escapes as a Go error; per-model
// failures are captured in ModelResult.Err.
func (e *Executor) ExecuteLLM(ctx context.Context, modelIDs []string, prompt string, newResponse ResponseFactory) ([]ModelResult[any], error) {
	if len(modelIDs) == 0 {
		return nil, fmt.Errorf("executor: ExecuteLLM requires at least one model id")
	}
	results := make([]ModelResult[any], len(modelIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, modelID := range modelIDs {
		i, modelID := i, modelID
		g.Go(func() error {
			results[i] = e.ExecuteLLMOnModel(gctx, modelID, prompt, newResponse)
			return nil
		})
	}
	_ = g.Wait() // per-model errors are captured, never propagated
	return results, nil
}

// ExecuteLLMOnModel runs a single model's LLM call: acquire a rate-limit
// token, prompt the client, decode into a fresh response value.
func (e *Executor) ExecuteLLMOnModel(ctx context.Context, modelID string, prompt string, newResponse ResponseFactory) ModelResult[any] {
	start := time.Now()
	if err := e.limiters.Acquire(ctx, modelID); err != nil {
		return ModelResult[any]{ModelID: modelID, Err: err, Duration: time.Since(start), Request: prompt}
	}
	client := e.chatStore.Get(modelID)
	if client == nil {
		return ModelResult[any]{ModelID: modelID, Err: fmt.Errorf("executor: no chat client for model %q", modelID), Duration: time.Since(start), Request: prompt}
	}
	log.Debug().Str("model", modelID).Int("prompt_tokens_est", util.CountTokens(prompt)).Msg("executor_prompt")
	out := newResponse()
	if err := client.Prompt(ctx, prompt, out); err != nil {
		return ModelResult[any]{ModelID: modelID, Err: fmt.Errorf("executor: prompt model %q: %w", modelID, err), Duration: time.Since(start), Request: prompt}
	}
	return ModelResult[any]{ModelID: modelID, Result: out, Duration: time.Since(start), Request: prompt}
}

// ExecuteEmbeddingOnModel embeds text against one embedding model.
func (e *Executor) ExecuteEmbeddingOnModel(ctx context.Context, modelID string, text string) ModelResult[any] {
	start := time.Now()
	if err := e.limiters.Acquire(ctx, modelID); err != nil {
		return ModelResult[any]{ModelID: modelID, Err: err, Duration: time.Since(start), Request: text}
	}
	model := e.embedStore.Get(modelID)
	if model == nil {
		return ModelResult[any]{ModelID: modelID, Err: fmt.Errorf("executor: no embedding model for model %q", modelID), Duration: time.Since(start), Request: text}
	}
	vec, err := model.Embed(ctx, text)
	if err != nil {
		return ModelResult[any]{ModelID: modelID, Err: fmt.Errorf("executor: embed model %q: %w", modelID, err), Duration: time.Since(start), Request: text}
	}
	return ModelResult[any]{ModelID: modelID, Result: vec, Duration: time.Since(start), Request: text}
}

// ComputeFunc is one model's share of a pure in-process compute step; it
// receives the model id so it can look up that model's prior-step output.
type ComputeFunc func(ctx context.Context, modelID string) (any, error)

// ExecuteCompute runs fn for every model in modelIDs with no rate limiting
// (the step performs no external call), preserving input order.
func (e *Executor) ExecuteCompute(ctx context.Context, modelIDs []string, fn ComputeFunc) ([]ModelResult[any], error) {
	if len(modelIDs) == 0 {
		return nil, fmt.Errorf("executor: ExecuteCompute requires at least one model id")
	}
	results := make([]ModelResult[any], len(modelIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, modelID := range modelIDs {
		i, modelID := i, modelID
		g.Go(func() error {
			start := time.Now()
			v, err := fn(gctx, modelID)
			if err != nil {
				results[i] = ModelResult[any]{ModelID: modelID, Err: err, Duration: time.Since(start)}
				return nil
			}
			results[i] = ModelResult[any]{ModelID: modelID, Result: v, Duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// RunAsync schedules supplier on a new goroutine and returns a future-style
// channel, so a metric's singleTurnScoreAsync never blocks the caller's
// goroutine.
func RunAsync[T any](ctx context.Context, supplier func(ctx context.Context) (T, error)) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		v, err := supplier(ctx)
		ch <- Outcome[T]{Value: v, Err: err}
		close(ch)
	}()
	return ch
}

// Outcome carries an async call's result or error.
type Outcome[T any] struct {
	Value T
	Err   error
}
