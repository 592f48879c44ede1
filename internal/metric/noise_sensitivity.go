package metric

import (
	"context"
	"fmt"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// NoiseSensitivityMode selects which context subset's errors count toward
// the score (§4.7 NoiseSensitivity).
type NoiseSensitivityMode string

const (
	NoiseSensitivityRelevant   NoiseSensitivityMode = "relevant"
	NoiseSensitivityIrrelevant NoiseSensitivityMode = "irrelevant"
)

// NoiseSensitivityConfig extends Config with the mode selector.
type NoiseSensitivityConfig struct {
	Config
	Mode NoiseSensitivityMode // default NoiseSensitivityRelevant
}

const decomposePrompt = `Break the text below into one or more fully self-contained factual statements. Respond as JSON: {"statements": ["..."]}.

Text: {text}`

const judgeContextStatementsPrompt = `Given a question, a reference answer, one retrieved context, and a list of response statements, first judge whether the context is relevant to the question, then for each response statement judge (a) whether it is faithful to (supported by) this context, and (b) whether it contradicts the reference answer. Respond as JSON: {"relevant": true or false, "verdicts": [{"statement": "...", "faithful": 0 or 1, "contradictsReference": 0 or 1}]}.

Question: {user_input}
Reference: {reference}
Context: {context}
Response statements:
{statements}`

type noiseSensitivityVerdict struct {
	Statement            string `json:"statement"`
	Faithful             int    `json:"faithful"`
	ContradictsReference int    `json:"contradictsReference"`
}

type noiseSensitivityContextResponse struct {
	Relevant bool                      `json:"relevant"`
	Verdicts []noiseSensitivityVerdict `json:"verdicts"`
}

// NoiseSensitivity measures how often the response contradicts the
// reference due to statements grounded in noisy context (§4.7
// NoiseSensitivity). Lower is better — this is the pipeline's one
// inverted metric.
//
// The denominator for the normalized error rate is every decomposed
// response statement (not just those judged inside the chosen-mode
// context subset) — an explicit resolution of the spec's open
// normalization question, matching the literal 2/3 example in the test
// corpus this pipeline was validated against.
type NoiseSensitivity struct{ Base }

func NewNoiseSensitivity(base Base) *NoiseSensitivity {
	base.Name = "NoiseSensitivity"
	return &NoiseSensitivity{Base: base}
}

func (m *NoiseSensitivity) SingleTurnScore(ctx context.Context, cfg NoiseSensitivityConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if !s.HasReference() {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "reference"}), nil
	}
	contexts := s.RetrievedContexts()
	if len(contexts) == 0 {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "retrievedContexts"}), nil
	}
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}
	mode := cfg.Mode
	if mode == "" {
		mode = NoiseSensitivityRelevant
	}

	r := m.start(ctx, s.ID(), modelIDs, len(contexts)+2)

	respPrompt := render.Template(decomposePrompt, map[string]string{"text": s.Response()})
	respResults, err := r.llmStep("DecomposeResponseStatements", 0, respPrompt, func() any { return &statementsResponse{} })
	if err != nil {
		return r.fail(err)
	}
	statementsByModel := map[string][]string{}
	for _, res := range respResults {
		if res.IsSuccess() {
			statementsByModel[res.ModelID] = res.Result.(*statementsResponse).Statements
		}
	}

	// errorStatements[modelId] = set of distinct response statements that
	// contradict the reference within a chosen-mode-relevant context.
	errorStatements := make(map[string]map[string]bool, len(modelIDs))
	for _, id := range modelIDs {
		errorStatements[id] = map[string]bool{}
	}

	for i, c := range contexts {
		stepIdx := i + 1
		prompt := render.Template(judgeContextStatementsPrompt, map[string]string{
			"user_input": s.UserInput(),
			"reference":  s.Reference(),
			"context":    c,
			"statements": joinNumbered(flattenUnique(statementsByModel)),
		})
		results, err := r.llmStepKeepActive(fmt.Sprintf("JudgeContext_%d", i+1), stepIdx, prompt, func() any { return &noiseSensitivityContextResponse{} })
		if err != nil {
			return r.fail(err)
		}
		for _, res := range results {
			if !res.IsSuccess() {
				continue
			}
			resp := res.Result.(*noiseSensitivityContextResponse)
			inScope := (mode == NoiseSensitivityRelevant && resp.Relevant) || (mode == NoiseSensitivityIrrelevant && !resp.Relevant)
			if !inScope {
				continue
			}
			for _, v := range resp.Verdicts {
				if v.Faithful == 1 && v.ContradictsReference == 1 {
					errorStatements[res.ModelID][v.Statement] = true
				}
			}
		}
	}

	computeResults, err := r.computeStep("ComputeNoiseSensitivity", len(contexts)+1, func(_ context.Context, modelID string) (any, error) {
		total := len(statementsByModel[modelID])
		if total == 0 {
			return 0.0, nil
		}
		return float64(len(errorStatements[modelID])) / float64(total), nil
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

func (m *NoiseSensitivity) SingleTurnScoreAsync(ctx context.Context, cfg NoiseSensitivityConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *NoiseSensitivity) GetName() string { return m.Name }
