// Package metric implements the LLM-judge and NLP metric pipelines
// (§4.7): each concrete metric drives the shared MultiModelExecutor
// through an ordered sequence of steps, carries failed models forward as
// exclusions, and folds per-model scores into one aggregated score.
package metric

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/intelligencedev/ragas-engine/internal/aggregate"
	"github.com/intelligencedev/ragas-engine/internal/executor"
	"github.com/intelligencedev/ragas-engine/internal/notify"
)

// Config is the configuration every metric call accepts; concrete metrics
// embed this alongside their own fields (e.g. Faithfulness has none extra,
// FactualCorrectness adds Mode).
type Config struct {
	// ModelIDs restricts fan-out to this subset; empty means "every model
	// the engine was constructed with" (§4.1).
	ModelIDs []string
	// Aggregation overrides the Base's default strategy for this call.
	Aggregation aggregate.Strategy
	// Tolerance is only consulted when Aggregation is CONSENSUS.
	Tolerance float64
}

// Result is the outcome of one singleTurnScore call — the Go analogue of
// MetricEvaluationResult (§3).
type Result struct {
	MetricName      string
	AggregatedScore float64
	ModelScores     map[string]float64
	ExcludedModels  []string
	Steps           []executor.StepResults
	Exclusions      []executor.ModelExclusionEvent
	Duration        time.Duration
}

// MissingInputWarning marks the "required field absent" case (§7), which
// returns 0 rather than failing the evaluation.
type MissingInputWarning struct {
	MetricName string
	Field      string
}

func (w *MissingInputWarning) Error() string {
	return fmt.Sprintf("%s: required field %q is missing", w.MetricName, w.Field)
}

// Base wires a concrete metric to the shared executor, its default model
// set, the listener roster new evaluations register against, and the
// aggregation strategy (§4.6).
type Base struct {
	Name            string
	Executor        *executor.Executor
	DefaultModelIDs []string
	Listeners       []notify.Listener
	Aggregation     aggregate.Strategy
	Tolerance       float64
}

func (b *Base) effectiveModelIDs(cfg Config) []string {
	if len(cfg.ModelIDs) > 0 {
		return cfg.ModelIDs
	}
	return b.DefaultModelIDs
}

func (b *Base) aggregator(cfg Config) *aggregate.Aggregator {
	strat := cfg.Aggregation
	if strat == "" {
		strat = b.Aggregation
	}
	if strat == "" {
		strat = aggregate.Average
	}
	tol := cfg.Tolerance
	if tol == 0 {
		tol = b.Tolerance
	}
	return aggregate.New(strat, tol)
}

func (b *Base) newNotifier() *notify.Notifier {
	n := notify.New()
	for _, l := range b.Listeners {
		n.Register(l)
	}
	return n
}

// zero handles the missing-required-input case: it still emits
// begin/end lifecycle events (§7: "emit begin/end events normally") but
// produces a flat all-zero score without running any step.
func (b *Base) zero(ctx context.Context, sampleID string, modelIDs []string, warn *MissingInputWarning) Result {
	n := b.newNotifier()
	evalCtx := notify.MetricEvaluationContext{MetricName: b.Name, SampleID: sampleID, ModelIDs: modelIDs}
	n.EvaluationStart(ctx, evalCtx)
	log.Warn().Str("metric", warn.MetricName).Str("field", warn.Field).Msg("missing required input, returning 0")

	scores := make(map[string]float64, len(modelIDs))
	for _, id := range modelIDs {
		scores[id] = 0
	}
	n.EvaluationComplete(ctx, evalCtx, notify.MetricEvaluationResult{MetricName: b.Name, Scores: scores})
	return Result{MetricName: b.Name, AggregatedScore: 0, ModelScores: scores}
}

// run tracks one metric evaluation in progress: the currently active model
// set (shrinking as models fail steps), accumulated StepResults and
// ModelExclusionEvents, and the per-evaluation notifier.
type run struct {
	base       *Base
	ctx        context.Context
	notifier   *notify.Notifier
	evalCtx    notify.MetricEvaluationContext
	active     []string
	steps      []executor.StepResults
	exclusions []executor.ModelExclusionEvent
	totalSteps int
	started    time.Time
}

func (b *Base) start(ctx context.Context, sampleID string, modelIDs []string, totalSteps int) *run {
	n := b.newNotifier()
	evalCtx := notify.MetricEvaluationContext{MetricName: b.Name, SampleID: sampleID, ModelIDs: modelIDs}
	n.EvaluationStart(ctx, evalCtx)
	return &run{
		base:       b,
		ctx:        ctx,
		notifier:   n,
		evalCtx:    evalCtx,
		active:     append([]string(nil), modelIDs...),
		totalSteps: totalSteps,
		started:    time.Now(),
	}
}

// recordStep appends step to the run's history and emits it to listeners.
// When cascade is true (the normal case) it also shrinks r.active to only
// the models that succeeded, carrying failures forward into every later
// step. ContextPrecision's per-context steps pass cascade=false: a model
// failing one context's relevance judgement is recorded as excluded for
// that context only and still participates in the remaining contexts
// (§4.7 ContextPrecision). Returns AllModelsFailedError when every model
// in this step failed.
func (r *run) recordStep(stepName string, stepIndex int, stepType executor.StepType, request string, results []executor.ModelResult[any], cascade bool) error {
	step := executor.StepResults{
		StepName:   stepName,
		StepIndex:  stepIndex,
		TotalSteps: r.totalSteps,
		StepType:   stepType,
		Request:    request,
		Results:    results,
	}
	r.steps = append(r.steps, step)
	r.notifier.StepEnd(r.ctx, r.evalCtx, step)

	var next []string
	anySucceeded := false
	for _, res := range results {
		if res.IsSuccess() {
			next = append(next, res.ModelID)
			anySucceeded = true
		} else {
			event := executor.ModelExclusionEvent{
				ModelID:         res.ModelID,
				FailedStepName:  stepName,
				FailedStepIndex: stepIndex,
				Cause:           res.Err,
			}
			r.exclusions = append(r.exclusions, event)
			r.notifier.ModelExcluded(r.ctx, r.evalCtx, event)
		}
	}
	if cascade {
		r.active = next
	}
	if !anySucceeded {
		return &executor.AllModelsFailedError{StepName: stepName, MetricName: r.base.Name}
	}
	return nil
}

// llmStep runs one LLM step against every currently active model.
func (r *run) llmStep(stepName string, stepIndex int, prompt string, newResp executor.ResponseFactory) ([]executor.ModelResult[any], error) {
	if len(r.active) == 0 {
		return nil, fmt.Errorf("%s: no active models entering step %s", r.base.Name, stepName)
	}
	r.notifier.StepStart(r.ctx, r.evalCtx, stepName, stepIndex, r.totalSteps)
	results, err := r.base.Executor.ExecuteLLM(r.ctx, r.active, prompt, newResp)
	if err != nil {
		return nil, err
	}
	if err := r.recordStep(stepName, stepIndex, executor.StepLLM, prompt, results, true); err != nil {
		return results, err
	}
	return results, nil
}

// llmStepKeepActive runs one LLM step against every currently active model
// without shrinking r.active afterward (see recordStep's cascade=false).
func (r *run) llmStepKeepActive(stepName string, stepIndex int, prompt string, newResp executor.ResponseFactory) ([]executor.ModelResult[any], error) {
	if len(r.active) == 0 {
		return nil, fmt.Errorf("%s: no active models entering step %s", r.base.Name, stepName)
	}
	r.notifier.StepStart(r.ctx, r.evalCtx, stepName, stepIndex, r.totalSteps)
	results, err := r.base.Executor.ExecuteLLM(r.ctx, r.active, prompt, newResp)
	if err != nil {
		return nil, err
	}
	if err := r.recordStep(stepName, stepIndex, executor.StepLLM, prompt, results, false); err != nil {
		return results, err
	}
	return results, nil
}

// embeddingStep embeds text once per currently active model.
func (r *run) embeddingStep(stepName string, stepIndex int, text string) ([]executor.ModelResult[any], error) {
	if len(r.active) == 0 {
		return nil, fmt.Errorf("%s: no active models entering step %s", r.base.Name, stepName)
	}
	r.notifier.StepStart(r.ctx, r.evalCtx, stepName, stepIndex, r.totalSteps)
	results := make([]executor.ModelResult[any], len(r.active))
	for i, modelID := range r.active {
		results[i] = r.base.Executor.ExecuteEmbeddingOnModel(r.ctx, modelID, text)
	}
	if err := r.recordStep(stepName, stepIndex, executor.StepEmbedding, text, results, true); err != nil {
		return results, err
	}
	return results, nil
}

// embeddingStepPerModel embeds a distinct text per active model (e.g. each
// model's own hypothetical questions, from its own GenerateQuestions
// output), without shrinking r.active on a per-model embed failure —
// parallel to ContextPrecision's keep-active contexts, since one model's
// embedding miss shouldn't exclude it from subsequent question embeds.
func (r *run) embeddingStepPerModel(stepName string, stepIndex int, textByModel map[string]string) ([]executor.ModelResult[any], error) {
	if len(r.active) == 0 {
		return nil, fmt.Errorf("%s: no active models entering step %s", r.base.Name, stepName)
	}
	r.notifier.StepStart(r.ctx, r.evalCtx, stepName, stepIndex, r.totalSteps)
	results := make([]executor.ModelResult[any], len(r.active))
	for i, modelID := range r.active {
		results[i] = r.base.Executor.ExecuteEmbeddingOnModel(r.ctx, modelID, textByModel[modelID])
	}
	if err := r.recordStep(stepName, stepIndex, executor.StepEmbedding, "", results, false); err != nil {
		return results, err
	}
	return results, nil
}

// computeStep runs a pure in-process function once per currently active
// model, with no rate limiting.
func (r *run) computeStep(stepName string, stepIndex int, fn executor.ComputeFunc) ([]executor.ModelResult[any], error) {
	if len(r.active) == 0 {
		return nil, fmt.Errorf("%s: no active models entering step %s", r.base.Name, stepName)
	}
	r.notifier.StepStart(r.ctx, r.evalCtx, stepName, stepIndex, r.totalSteps)
	results, err := r.base.Executor.ExecuteCompute(r.ctx, r.active, fn)
	if err != nil {
		return nil, err
	}
	if err := r.recordStep(stepName, stepIndex, executor.StepCompute, "", results, true); err != nil {
		return results, err
	}
	return results, nil
}

// finish folds modelScores (keyed by every model still active, i.e. that
// survived every step) into an aggregated Result and emits the terminal
// lifecycle event.
func (r *run) finish(cfg Config, modelScores map[string]float64) (Result, error) {
	scores := make([]float64, 0, len(modelScores))
	for _, s := range modelScores {
		scores = append(scores, s)
	}
	aggregated, err := r.base.aggregator(cfg).Aggregate(scores)
	terminalErr := err
	if err != nil {
		aggregated = 0
	}

	excluded := make([]string, 0, len(r.exclusions))
	seen := make(map[string]bool, len(r.exclusions))
	for _, e := range r.exclusions {
		if !seen[e.ModelID] {
			seen[e.ModelID] = true
			excluded = append(excluded, e.ModelID)
		}
	}

	result := Result{
		MetricName:      r.base.Name,
		AggregatedScore: aggregated,
		ModelScores:     modelScores,
		ExcludedModels:  excluded,
		Steps:           r.steps,
		Exclusions:      r.exclusions,
		Duration:        time.Since(r.started),
	}
	r.notifier.EvaluationComplete(r.ctx, r.evalCtx, notify.MetricEvaluationResult{
		MetricName: r.base.Name,
		Scores:     modelScores,
		Err:        terminalErr,
	})
	return result, terminalErr
}

// fail terminates the run with a fatal error (e.g. AllModelsFailedError):
// it still emits afterMetricEvaluation per §5's cancellation/fatal-error
// contract, carrying whatever steps ran before the failure.
func (r *run) fail(err error) (Result, error) {
	result := Result{
		MetricName: r.base.Name,
		Steps:      r.steps,
		Exclusions: r.exclusions,
		Duration:   time.Since(r.started),
	}
	r.notifier.EvaluationComplete(r.ctx, r.evalCtx, notify.MetricEvaluationResult{
		MetricName: r.base.Name,
		Err:        err,
	})
	return result, err
}

// Handle is the cancellable future singleTurnScoreAsync returns (§5
// cancellation). Cancelling it propagates context cancellation into every
// in-flight rate-limiter wait and LLM call; the pipeline still completes
// with a terminal Result or error once its current step unwinds.
type Handle struct {
	cancel context.CancelFunc
	done   chan asyncOutcome
}

type asyncOutcome struct {
	result Result
	err    error
}

// Cancel requests cancellation; it does not block for completion.
func (h *Handle) Cancel() { h.cancel() }

// Wait blocks until the pipeline finishes, returning its Result or error.
func (h *Handle) Wait() (Result, error) {
	out := <-h.done
	return out.result, out.err
}

// runAsync schedules fn on a new goroutine and returns a Handle wrapping
// it, so singleTurnScoreAsync never blocks the caller's goroutine (§4.3).
func runAsync(ctx context.Context, fn func(ctx context.Context) (Result, error)) *Handle {
	cctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan asyncOutcome, 1)}
	go func() {
		result, err := fn(cctx)
		h.done <- asyncOutcome{result: result, err: err}
		close(h.done)
	}()
	return h
}
