package metric

import (
	"context"
	"strconv"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const generateStatementsPrompt = `Given a question and its answer, break the answer into one or more fully self-contained factual statements. Respond as JSON: {"statements": ["..."]}.

Question: {user_input}
Answer: {response}`

const evaluateFaithfulnessPrompt = `Given a context and a list of statements, judge whether each statement can be directly inferred from the context. Respond as JSON: {"verdicts": [{"statement": "...", "reason": "...", "verdict": 0 or 1}]}.

Context:
{context}

Statements:
{statements}`

type statementsResponse struct {
	Statements []string `json:"statements"`
}

type faithfulnessVerdict struct {
	Statement string `json:"statement"`
	Reason    string `json:"reason"`
	Verdict   int    `json:"verdict"`
}

type faithfulnessResponse struct {
	Verdicts []faithfulnessVerdict `json:"verdicts"`
}

// Faithfulness measures how well response is grounded in retrievedContexts
// (§4.7 Faithfulness): every atomic claim extracted from the response must
// be verifiable against the joined context.
type Faithfulness struct{ Base }

func NewFaithfulness(base Base) *Faithfulness {
	base.Name = "Faithfulness"
	return &Faithfulness{Base: base}
}

func (m *Faithfulness) SingleTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}

	r := m.start(ctx, s.ID(), modelIDs, 3)

	genPrompt := render.Template(generateStatementsPrompt, map[string]string{
		"user_input": s.UserInput(),
		"response":   s.Response(),
	})
	genResults, err := r.llmStep("GenerateStatements", 0, genPrompt, func() any { return &statementsResponse{} })
	if err != nil {
		return r.fail(err)
	}

	statementsByModel := map[string][]string{}
	for _, res := range genResults {
		if !res.IsSuccess() {
			continue
		}
		resp := res.Result.(*statementsResponse)
		statementsByModel[res.ModelID] = resp.Statements
	}

	evalPrompt := render.Template(evaluateFaithfulnessPrompt, map[string]string{
		"context":    s.JoinedContexts(),
		"statements": joinNumbered(flattenUnique(statementsByModel)),
	})
	evalResults, err := r.llmStep("EvaluateFaithfulness", 1, evalPrompt, func() any { return &faithfulnessResponse{} })
	if err != nil {
		return r.fail(err)
	}

	computeResults, err := r.computeStep("ComputeFaithfulness", 2, func(_ context.Context, modelID string) (any, error) {
		for _, res := range evalResults {
			if res.ModelID == modelID && res.IsSuccess() {
				resp := res.Result.(*faithfulnessResponse)
				return faithfulnessScore(resp.Verdicts), nil
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

// SingleTurnScoreAsync runs SingleTurnScore on its own goroutine and
// returns a cancellable Handle (§4.3 runAsync).
func (m *Faithfulness) SingleTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

// GetName returns the metric's name.
func (m *Faithfulness) GetName() string { return m.Name }

func faithfulnessScore(verdicts []faithfulnessVerdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	supported := 0
	for _, v := range verdicts {
		if v.Verdict == 1 {
			supported++
		}
	}
	return float64(supported) / float64(len(verdicts))
}

func flattenUnique(byModel map[string][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, stmts := range byModel {
		for _, s := range stmts {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func joinNumbered(items []string) string {
	var b []byte
	for i, it := range items {
		b = append(b, []byte(strconv.Itoa(i+1)+". "+it+"\n")...)
	}
	return string(b)
}
