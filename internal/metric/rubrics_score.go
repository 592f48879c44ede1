package metric

import (
	"context"
	"sort"
	"strings"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const rubricsScorePrompt = `Score the response by selecting the single rubric level that best describes it.

Rubric levels:
{rubric_levels}

Question: {user_input}
Response: {response}
Reference: {reference}

Respond as JSON: {"score": <one of the listed levels>, "reason": "..."}.`

type rubricVerdict struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// RubricsScoreConfig extends Config with the rubric level descriptions,
// keyed by the integer score each level represents (e.g. 1 for the lowest level).
type RubricsScoreConfig struct {
	Config
	Rubrics map[int]string
}

// RubricsScore asks a judge model to classify the response into one of a
// fixed set of caller-supplied rubric levels (§4.7 RubricsScore).
type RubricsScore struct{ Base }

func NewRubricsScore(base Base) *RubricsScore {
	base.Name = "RubricsScore"
	return &RubricsScore{Base: base}
}

func (m *RubricsScore) SingleTurnScore(ctx context.Context, cfg RubricsScoreConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}
	if len(cfg.Rubrics) == 0 {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "rubrics"}), nil
	}

	prompt := render.Template(rubricsScorePrompt, map[string]string{
		"rubric_levels": formatRubricLevels(cfg.Rubrics),
		"user_input":    s.UserInput(),
		"response":      s.Response(),
		"reference":     s.Reference(),
	})

	r := m.start(ctx, s.ID(), modelIDs, 1)
	results, err := r.llmStep("JudgeRubric", 0, prompt, func() any { return &rubricVerdict{} })
	if err != nil {
		return r.fail(err)
	}

	levels := rubricLevelKeys(cfg.Rubrics)
	minLevel, maxLevel := levels[0], levels[len(levels)-1]

	scores := make(map[string]float64, len(results))
	for _, res := range results {
		if res.IsSuccess() {
			v := res.Result.(*rubricVerdict).Score
			if v < minLevel {
				v = minLevel
			}
			if v > maxLevel {
				v = maxLevel
			}
			scores[res.ModelID] = float64(v)
		}
	}
	return r.finish(cfg.Config, scores)
}

func (m *RubricsScore) SingleTurnScoreAsync(ctx context.Context, cfg RubricsScoreConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *RubricsScore) GetName() string { return m.Name }

func rubricLevelKeys(rubrics map[int]string) []int {
	keys := make([]int, 0, len(rubrics))
	for k := range rubrics {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func formatRubricLevels(rubrics map[int]string) string {
	keys := rubricLevelKeys(rubrics)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(itoa(k))
		b.WriteString(": ")
		b.WriteString(rubrics[k])
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
