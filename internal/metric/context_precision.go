package metric

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// ContextPrecisionStrategy selects which field the per-context relevance
// judgement is grounded on.
type ContextPrecisionStrategy string

const (
	// ContextPrecisionAuto picks ReferenceBased when the sample has a
	// reference, else ResponseBased (§4.7 ContextPrecision).
	ContextPrecisionAuto           ContextPrecisionStrategy = ""
	ContextPrecisionReferenceBased ContextPrecisionStrategy = "reference_based"
	ContextPrecisionResponseBased  ContextPrecisionStrategy = "response_based"
)

// ContextPrecisionConfig extends Config with the caller's strategy pin.
type ContextPrecisionConfig struct {
	Config
	Strategy ContextPrecisionStrategy
}

const evaluateContextReferenceBasedPrompt = `Given a question, a reference answer, and one retrieved context, judge whether the context was useful for producing the reference answer. Respond as JSON: {"relevant": true or false, "reasoning": "..."}.

Question: {user_input}
Reference: {reference}
Context: {context}`

const evaluateContextResponseBasedPrompt = `Given a question, a response, and one retrieved context, judge whether the context was useful for producing the response. Respond as JSON: {"relevant": true or false, "reasoning": "..."}.

Question: {user_input}
Response: {response}
Context: {context}`

type contextRelevanceResponse struct {
	Relevant  bool   `json:"relevant"`
	Reasoning string `json:"reasoning"`
}

// ContextPrecision measures how well the retrieved contexts are ranked by
// relevance, via Average Precision over a per-rank relevance vote (§4.7
// ContextPrecision).
type ContextPrecision struct{ Base }

func NewContextPrecision(base Base) *ContextPrecision {
	base.Name = "ContextPrecision"
	return &ContextPrecision{Base: base}
}

func (m *ContextPrecision) effectiveStrategy(cfg ContextPrecisionConfig, s sample.Sample) ContextPrecisionStrategy {
	switch cfg.Strategy {
	case ContextPrecisionReferenceBased:
		if s.HasReference() {
			return ContextPrecisionReferenceBased
		}
		log.Warn().Str("metric", m.Name).Msg("reference_based strategy requested but reference is blank, falling back to response_based")
		return ContextPrecisionResponseBased
	case ContextPrecisionResponseBased:
		return ContextPrecisionResponseBased
	default:
		if s.HasReference() {
			return ContextPrecisionReferenceBased
		}
		return ContextPrecisionResponseBased
	}
}

func (m *ContextPrecision) SingleTurnScore(ctx context.Context, cfg ContextPrecisionConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	contexts := s.RetrievedContexts()
	if len(contexts) == 0 {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "retrievedContexts"}), nil
	}
	strategy := m.effectiveStrategy(cfg, s)
	if strategy == ContextPrecisionResponseBased && s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}

	r := m.start(ctx, s.ID(), modelIDs, len(contexts)+1)

	// votes[modelId][rank] = relevance vote, 1-indexed ranks via append order
	votes := make(map[string][]int, len(modelIDs))
	for i, c := range contexts {
		vars := map[string]string{"user_input": s.UserInput(), "context": c}
		var tmpl string
		if strategy == ContextPrecisionReferenceBased {
			tmpl = evaluateContextReferenceBasedPrompt
			vars["reference"] = s.Reference()
		} else {
			tmpl = evaluateContextResponseBasedPrompt
			vars["response"] = s.Response()
		}
		prompt := render.Template(tmpl, vars)
		results, err := r.llmStepKeepActive(fmt.Sprintf("EvaluateContext_%d", i+1), i, prompt, func() any { return &contextRelevanceResponse{} })
		if err != nil {
			return r.fail(err)
		}
		for _, modelID := range modelIDs {
			vote := 0
			for _, res := range results {
				if res.ModelID == modelID && res.IsSuccess() && res.Result.(*contextRelevanceResponse).Relevant {
					vote = 1
				}
			}
			votes[modelID] = append(votes[modelID], vote)
		}
	}

	computeResults, err := r.computeStep("ComputePrecision", len(contexts), func(_ context.Context, modelID string) (any, error) {
		return averagePrecision(votes[modelID]), nil
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
	return r.finish(cfg.Config, scores)
}

func (m *ContextPrecision) SingleTurnScoreAsync(ctx context.Context, cfg ContextPrecisionConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *ContextPrecision) GetName() string { return m.Name }

// averagePrecision computes AP over a 1-indexed relevance vector: AP =
// sum(precision@k for relevant k) / count(relevant), 0 if none relevant
// (§8 invariant #8).
func averagePrecision(relevance []int) float64 {
	relevantCount := 0
	for _, r := range relevance {
		if r == 1 {
			relevantCount++
		}
	}
	if relevantCount == 0 {
		return 0
	}
	sumPrecision := 0.0
	relevantSoFar := 0
	for k, rk := range relevance {
		if rk == 1 {
			relevantSoFar++
			precisionAtK := float64(relevantSoFar) / float64(k+1)
			sumPrecision += precisionAtK
		}
	}
	return sumPrecision / float64(relevantCount)
}
