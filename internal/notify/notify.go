// Package notify implements the ordered lifecycle-listener fan-out (§4.4):
// every metric evaluation notifies registered listeners of per-step,
// per-model progress, in priority order, with one listener's panic or
// error never blocking another's.
package notify

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/intelligencedev/ragas-engine/internal/executor"
)

// MetricEvaluationContext describes the evaluation a listener is being
// notified about.
type MetricEvaluationContext struct {
	MetricName string
	SampleID   string
	ModelIDs   []string
}

// MetricEvaluationResult is the terminal event delivered once a metric
// finishes, successfully or not.
type MetricEvaluationResult struct {
	MetricName string
	SampleID   string
	Scores     map[string]float64 // modelId -> score
	Err        error
}

// Listener receives evaluation lifecycle events. Every method is optional
// in spirit: a listener only interested in step events can embed
// NoopListener and override just the methods it needs. The five callbacks
// mirror beforeMetricEvaluation/beforeStep/afterStep(Llm|Compute)/
// onModelExcluded/afterMetricEvaluation, with the LLM and compute variants
// of afterStep sharing OnStepEnd: OnStepStart fires before a step's
// executor dispatch, OnStepEnd once its results are in.
type Listener interface {
	// Priority controls call order: lower values run first.
	Priority() int
	OnEvaluationStart(ctx context.Context, evalCtx MetricEvaluationContext)
	OnStepStart(ctx context.Context, evalCtx MetricEvaluationContext, stepName string, stepIndex, totalSteps int)
	OnStepEnd(ctx context.Context, evalCtx MetricEvaluationContext, step executor.StepResults)
	OnModelExcluded(ctx context.Context, evalCtx MetricEvaluationContext, event executor.ModelExclusionEvent)
	OnEvaluationComplete(ctx context.Context, evalCtx MetricEvaluationContext, result MetricEvaluationResult)
}

// NoopListener implements Listener with no-op methods so concrete
// listeners can embed it and override only what they care about.
type NoopListener struct{ Order int }

func (n NoopListener) Priority() int                                                          { return n.Order }
func (NoopListener) OnEvaluationStart(context.Context, MetricEvaluationContext)               {}
func (NoopListener) OnStepStart(context.Context, MetricEvaluationContext, string, int, int)   {}
func (NoopListener) OnStepEnd(context.Context, MetricEvaluationContext, executor.StepResults) {}
func (NoopListener) OnModelExcluded(context.Context, MetricEvaluationContext, executor.ModelExclusionEvent) {
}
func (NoopListener) OnEvaluationComplete(context.Context, MetricEvaluationContext, MetricEvaluationResult) {
}

// Notifier fans lifecycle events out to every registered Listener, in
// ascending Priority order, isolating one listener's panic from the rest.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// New constructs an empty Notifier.
func New() *Notifier { return &Notifier{} }

// Register adds a listener and re-sorts by priority. Safe for concurrent
// use, though in practice all registration happens before an evaluation
// starts.
func (n *Notifier) Register(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
	sort.SliceStable(n.listeners, func(i, j int) bool {
		return n.listeners[i].Priority() < n.listeners[j].Priority()
	})
}

func (n *Notifier) snapshot() []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Listener, len(n.listeners))
	copy(out, n.listeners)
	return out
}

// safeguard runs fn and recovers a panic so one bad listener can't break
// the fan-out for the rest, or for the metric pipeline itself.
func safeguard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("listener", name).Interface("panic", r).Msg("listener panicked, ignoring")
		}
	}()
	fn()
}

func (n *Notifier) EvaluationStart(ctx context.Context, evalCtx MetricEvaluationContext) {
	for _, l := range n.snapshot() {
		l := l
		safeguard("OnEvaluationStart", func() { l.OnEvaluationStart(ctx, evalCtx) })
	}
}

func (n *Notifier) StepStart(ctx context.Context, evalCtx MetricEvaluationContext, stepName string, stepIndex, totalSteps int) {
	for _, l := range n.snapshot() {
		l := l
		safeguard("OnStepStart", func() { l.OnStepStart(ctx, evalCtx, stepName, stepIndex, totalSteps) })
	}
}

func (n *Notifier) StepEnd(ctx context.Context, evalCtx MetricEvaluationContext, step executor.StepResults) {
	for _, l := range n.snapshot() {
		l := l
		safeguard("OnStepEnd", func() { l.OnStepEnd(ctx, evalCtx, step) })
	}
}

func (n *Notifier) ModelExcluded(ctx context.Context, evalCtx MetricEvaluationContext, event executor.ModelExclusionEvent) {
	for _, l := range n.snapshot() {
		l := l
		safeguard("OnModelExcluded", func() { l.OnModelExcluded(ctx, evalCtx, event) })
	}
}

func (n *Notifier) EvaluationComplete(ctx context.Context, evalCtx MetricEvaluationContext, result MetricEvaluationResult) {
	for _, l := range n.snapshot() {
		l := l
		safeguard("OnEvaluationComplete", func() { l.OnEvaluationComplete(ctx, evalCtx, result) })
	}
}
