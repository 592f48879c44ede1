package metric

import (
	"context"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const simpleCriteriaPrompt = `Score the response against the criteria below on an integer scale from {min_score} to {max_score}.

Criteria: {criteria}

Question: {user_input}
Response: {response}
Reference: {reference}

Respond as JSON: {"score": <integer>, "reason": "..."}.`

type criteriaScoreResponse struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// SimpleCriteriaScoreConfig extends Config with the free-text criteria and
// the score's valid range.
type SimpleCriteriaScoreConfig struct {
	Config
	Criteria string
	MinScore float64
	MaxScore float64
}

// SimpleCriteriaScore asks a judge model to rate the response on a
// continuous scale against caller-supplied criteria (§4.7
// SimpleCriteriaScore), clamping to [MinScore, MaxScore].
type SimpleCriteriaScore struct{ Base }

func NewSimpleCriteriaScore(base Base) *SimpleCriteriaScore {
	base.Name = "SimpleCriteriaScore"
	return &SimpleCriteriaScore{Base: base}
}

func (m *SimpleCriteriaScore) SingleTurnScore(ctx context.Context, cfg SimpleCriteriaScoreConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}

	minScore, maxScore := cfg.MinScore, cfg.MaxScore
	if minScore == 0 && maxScore == 0 {
		maxScore = 5
	}

	prompt := render.Template(simpleCriteriaPrompt, map[string]string{
		"criteria":   cfg.Criteria,
		"min_score":  formatFloat(minScore),
		"max_score":  formatFloat(maxScore),
		"user_input": s.UserInput(),
		"response":   s.Response(),
		"reference":  s.Reference(),
	})

	r := m.start(ctx, s.ID(), modelIDs, 1)
	results, err := r.llmStep("JudgeCriteria", 0, prompt, func() any { return &criteriaScoreResponse{} })
	if err != nil {
		return r.fail(err)
	}

	scores := make(map[string]float64, len(results))
	for _, res := range results {
		if res.IsSuccess() {
			v := res.Result.(*criteriaScoreResponse).Score
			if v < minScore {
				v = minScore
			}
			if v > maxScore {
				v = maxScore
			}
			scores[res.ModelID] = v
		}
	}
	return r.finish(cfg.Config, scores)
}

func (m *SimpleCriteriaScore) SingleTurnScoreAsync(ctx context.Context, cfg SimpleCriteriaScoreConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *SimpleCriteriaScore) GetName() string { return m.Name }

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return itoa(int(v))
	}
	// Fall back to a fixed-precision rendering for non-integer bounds.
	scaled := int64(v * 100)
	whole := scaled / 100
	frac := scaled % 100
	if frac < 0 {
		frac = -frac
	}
	return itoa(int(whole)) + "." + itoa(int(frac))
}
