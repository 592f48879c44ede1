package metric

import (
	"context"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const aspectCriticPrompt = `Judge whether the following response satisfies this aspect: {aspect_definition}

Question: {user_input}
Response: {response}

Respond as JSON: {"verdict": 0 or 1, "reason": "..."}.`

type binaryVerdictResponse struct {
	Verdict int    `json:"verdict"`
	Reason  string `json:"reason"`
}

// AspectCriticConfig extends Config with the binary aspect being judged.
type AspectCriticConfig struct {
	Config
	AspectDefinition string
	// Strictness independently samples the judgement this many times per
	// model and majority-votes the binary result; 1 (no repeat sampling)
	// if unset.
	Strictness int
}

// AspectCritic renders a single binary verdict for a caller-defined aspect
// (§4.7 AspectCritic), optionally majority-voted across Strictness
// independent samples per model.
type AspectCritic struct{ Base }

func NewAspectCritic(base Base) *AspectCritic {
	base.Name = "AspectCritic"
	return &AspectCritic{Base: base}
}

func (m *AspectCritic) SingleTurnScore(ctx context.Context, cfg AspectCriticConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}
	strictness := cfg.Strictness
	if strictness <= 0 {
		strictness = 1
	}

	prompt := render.Template(aspectCriticPrompt, map[string]string{
		"aspect_definition": cfg.AspectDefinition,
		"user_input":        s.UserInput(),
		"response":          s.Response(),
	})

	r := m.start(ctx, s.ID(), modelIDs, strictness)
	votes := make(map[string][]int, len(modelIDs))
	for sampleIdx := 0; sampleIdx < strictness; sampleIdx++ {
		stepName := "JudgeAspect"
		if strictness > 1 {
			stepName = stepNameWithSample("JudgeAspect", sampleIdx+1)
		}
		results, err := r.llmStepKeepActive(stepName, sampleIdx, prompt, func() any { return &binaryVerdictResponse{} })
		if err != nil {
			return r.fail(err)
		}
		for _, res := range results {
			if res.IsSuccess() {
				votes[res.ModelID] = append(votes[res.ModelID], res.Result.(*binaryVerdictResponse).Verdict)
			}
		}
	}

	scores := make(map[string]float64, len(modelIDs))
	for _, modelID := range modelIDs {
		vs := votes[modelID]
		if len(vs) == 0 {
			continue
		}
		ones := 0
		for _, v := range vs {
			if v == 1 {
				ones++
			}
		}
		if ones*2 > len(vs) {
			scores[modelID] = 1
		} else {
			scores[modelID] = 0
		}
	}
	return r.finish(cfg.Config, scores)
}

func (m *AspectCritic) SingleTurnScoreAsync(ctx context.Context, cfg AspectCriticConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *AspectCritic) GetName() string { return m.Name }

func stepNameWithSample(name string, n int) string {
	return name + "_" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
