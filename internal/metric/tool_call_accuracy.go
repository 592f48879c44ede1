package metric

import (
	"context"

	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// ToolCallAccuracy is a compute-only metric: no LLM judge is involved, it
// simply compares the tool calls an agent actually made (extracted from the
// AI turns of UserInputMessages) against ReferenceToolCalls, in order
// (§4.7 ToolCallAccuracy).
type ToolCallAccuracy struct{ Base }

func NewToolCallAccuracy(base Base) *ToolCallAccuracy {
	base.Name = "ToolCallAccuracy"
	return &ToolCallAccuracy{Base: base}
}

func (m *ToolCallAccuracy) SingleTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg)
	reference := s.ReferenceToolCalls()
	if len(reference) == 0 {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "referenceToolCalls"}), nil
	}

	observed := observedToolCalls(s)
	score := toolCallAccuracyScore(reference, observed)

	r := m.start(ctx, s.ID(), modelIDs, 1)
	results, err := r.computeStep("CompareToolCalls", 0, func(context.Context, string) (any, error) {
		return score, nil
	})
	if err != nil {
		return r.fail(err)
	}

	scores := make(map[string]float64, len(results))
	for _, res := range results {
		if res.IsSuccess() {
			scores[res.ModelID] = res.Result.(float64)
		}
	}
	return r.finish(cfg, scores)
}

func (m *ToolCallAccuracy) SingleTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

// MultiTurnScore is ToolCallAccuracy's agent-metric entry point: the
// observed/reference tool-call comparison already walks the whole
// conversation in s.UserInputMessages(), so it delegates directly.
func (m *ToolCallAccuracy) MultiTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	return m.SingleTurnScore(ctx, cfg, s)
}

func (m *ToolCallAccuracy) MultiTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.MultiTurnScore(cctx, cfg, s) })
}

func (m *ToolCallAccuracy) GetName() string { return m.Name }

func observedToolCalls(s sample.Sample) []sample.ToolCall {
	var calls []sample.ToolCall
	for _, msg := range s.UserInputMessages() {
		if msg.Role == sample.RoleAI {
			calls = append(calls, msg.ToolCalls...)
		}
	}
	return calls
}

// toolCallAccuracyScore is an exact ordered match: the fraction of reference
// calls whose position and content both match the observed sequence.
func toolCallAccuracyScore(reference, observed []sample.ToolCall) float64 {
	if len(reference) == 0 {
		return 0
	}
	matched := 0
	for i, ref := range reference {
		if i < len(observed) && ref.Equal(observed[i]) {
			matched++
		}
	}
	return float64(matched) / float64(len(reference))
}
