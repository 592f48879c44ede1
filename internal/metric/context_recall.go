package metric

import (
	"context"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const classifyStatementsPrompt = `Break the reference answer into sentences and, for each sentence, judge whether it can be attributed to the given context. Respond as JSON: {"classifications": [{"statement": "...", "reason": "...", "attributed": 0 or 1}]}.

Question: {user_input}
Context:
{context}
Reference: {reference}`

type contextRecallClassification struct {
	Statement  string `json:"statement"`
	Reason     string `json:"reason"`
	Attributed int    `json:"attributed"`
}

type contextRecallResponse struct {
	Classifications []contextRecallClassification `json:"classifications"`
}

// ContextRecall measures what fraction of the reference answer's sentences
// are attributable to the retrieved context (§4.7 ContextRecall).
type ContextRecall struct{ Base }

func NewContextRecall(base Base) *ContextRecall {
	base.Name = "ContextRecall"
	return &ContextRecall{Base: base}
}

func (m *ContextRecall) SingleTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg)
	if !s.HasReference() {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "reference"}), nil
	}

	r := m.start(ctx, s.ID(), modelIDs, 2)

	prompt := render.Template(classifyStatementsPrompt, map[string]string{
		"user_input": s.UserInput(),
		"context":    s.JoinedContexts(),
		"reference":  s.Reference(),
	})
	results, err := r.llmStep("ClassifyStatements", 0, prompt, func() any { return &contextRecallResponse{} })
	if err != nil {
		return r.fail(err)
	}

	computeResults, err := r.computeStep("ComputeContextRecall", 1, func(_ context.Context, modelID string) (any, error) {
		for _, res := range results {
			if res.ModelID == modelID && res.IsSuccess() {
				resp := res.Result.(*contextRecallResponse)
				return contextRecallScore(resp.Classifications), nil
			}
		}
		return 0.0, nil
	})
	if err != nil {
		return r.fail(err)
	}

	scores := make(map[string]float64, len(computeResults))
	for _, res := range computeResults {
		if res.IsSuccess() {
			scores[res.ModelID] = res.Result.(float64)
		}
	}
	return r.finish(cfg, scores)
}

func (m *ContextRecall) SingleTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *ContextRecall) GetName() string { return m.Name }

func contextRecallScore(classifications []contextRecallClassification) float64 {
	if len(classifications) == 0 {
		return 0
	}
	attributed := 0
	for _, c := range classifications {
		if c.Attributed == 1 {
			attributed++
		}
	}
	return float64(attributed) / float64(len(classifications))
}
