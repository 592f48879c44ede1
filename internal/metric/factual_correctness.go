package metric

import (
	"context"

	"github.com/intelligencedev/ragas-engine/internal/executor"
	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// FactualCorrectnessMode selects which of precision/recall/F1 the metric
// reports.
type FactualCorrectnessMode string

const (
	FactualCorrectnessF1        FactualCorrectnessMode = "f1"
	FactualCorrectnessPrecision FactualCorrectnessMode = "precision"
	FactualCorrectnessRecall    FactualCorrectnessMode = "recall"
)

// FactualCorrectnessConfig extends Config with the scoring mode.
type FactualCorrectnessConfig struct {
	Config
	Mode FactualCorrectnessMode // default FactualCorrectnessF1
}

const decomposeClaimsPrompt = `Break the text below into one or more atomic factual claims. Respond as JSON: {"claims": ["..."]}.

Text: {text}`

const verifyClaimsNLIPrompt = `For each claim below, judge its relationship to the given premise: SUPPORTED if the premise entails it, CONTRADICTED if the premise contradicts it, NEUTRAL otherwise. Respond as JSON: {"verdicts": [{"claim": "...", "label": "SUPPORTED"|"CONTRADICTED"|"NEUTRAL"}]}.

Premise: {premise}
Claims:
{claims}`

type claimsResponse struct {
	Claims []string `json:"claims"`
}

type nliVerdict struct {
	Claim string `json:"claim"`
	Label string `json:"label"`
}

type nliResponse struct {
	Verdicts []nliVerdict `json:"verdicts"`
}

// FactualCorrectness measures claim-level agreement between response and
// reference via bidirectional NLI verification (§4.7 FactualCorrectness).
type FactualCorrectness struct{ Base }

func NewFactualCorrectness(base Base) *FactualCorrectness {
	base.Name = "FactualCorrectness"
	return &FactualCorrectness{Base: base}
}

func (m *FactualCorrectness) SingleTurnScore(ctx context.Context, cfg FactualCorrectnessConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}
	if !s.HasReference() {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "reference"}), nil
	}
	mode := cfg.Mode
	if mode == "" {
		mode = FactualCorrectnessF1
	}

	r := m.start(ctx, s.ID(), modelIDs, 5)

	respClaims, err := r.llmStep("DecomposeResponseClaims", 0, render.Template(decomposeClaimsPrompt, map[string]string{"text": s.Response()}), func() any { return &claimsResponse{} })
	if err != nil {
		return r.fail(err)
	}
	responseClaimsByModel := claimsByModel(respClaims)

	refClaims, err := r.llmStep("DecomposeReferenceClaims", 1, render.Template(decomposeClaimsPrompt, map[string]string{"text": s.Reference()}), func() any { return &claimsResponse{} })
	if err != nil {
		return r.fail(err)
	}
	referenceClaimsByModel := claimsByModel(refClaims)

	precisionPrompt := render.Template(verifyClaimsNLIPrompt, map[string]string{
		"premise": s.Reference(),
		"claims":  joinNumbered(flattenUnique(responseClaimsByModel)),
	})
	precisionResults, err := r.llmStep("VerifyPrecisionNLI", 2, precisionPrompt, func() any { return &nliResponse{} })
	if err != nil {
		return r.fail(err)
	}
	precisionByModel := map[string]float64{}
	for _, res := range precisionResults {
		if res.IsSuccess() {
			precisionByModel[res.ModelID] = nliSupportedRatio(res.Result.(*nliResponse).Verdicts)
		}
	}

	recallPrompt := render.Template(verifyClaimsNLIPrompt, map[string]string{
		"premise": s.Response(),
		"claims":  joinNumbered(flattenUnique(referenceClaimsByModel)),
	})
	recallResults, err := r.llmStep("VerifyRecallNLI", 3, recallPrompt, func() any { return &nliResponse{} })
	if err != nil {
		return r.fail(err)
	}
	recallByModel := map[string]float64{}
	for _, res := range recallResults {
		if res.IsSuccess() {
			recallByModel[res.ModelID] = nliSupportedRatio(res.Result.(*nliResponse).Verdicts)
		}
	}

	computeResults, err := r.computeStep("ComputeFactualCorrectness", 4, func(_ context.Context, modelID string) (any, error) {
		p, rec := precisionByModel[modelID], recallByModel[modelID]
		switch mode {
		case FactualCorrectnessPrecision:
			return p, nil
		case FactualCorrectnessRecall:
			return rec, nil
		default:
			if p+rec == 0 {
				return 0.0, nil
			}
			return 2 * p * rec / (p + rec), nil
		}
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

func (m *FactualCorrectness) SingleTurnScoreAsync(ctx context.Context, cfg FactualCorrectnessConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *FactualCorrectness) GetName() string { return m.Name }

func claimsByModel(results []executor.ModelResult[any]) map[string][]string {
	out := map[string][]string{}
	for _, res := range results {
		if res.IsSuccess() {
			out[res.ModelID] = res.Result.(*claimsResponse).Claims
		}
	}
	return out
}

func nliSupportedRatio(verdicts []nliVerdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	supported := 0
	for _, v := range verdicts {
		if v.Label == "SUPPORTED" {
			supported++
		}
	}
	return float64(supported) / float64(len(verdicts))
}
