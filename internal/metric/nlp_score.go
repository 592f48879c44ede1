package metric

import (
	"context"

	"github.com/intelligencedev/ragas-engine/internal/nlp"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// NLPScoreMethod selects which pure computational metric NLPScore reports.
type NLPScoreMethod string

const (
	NLPScoreBLEU             NLPScoreMethod = "bleu"
	NLPScoreRouge1           NLPScoreMethod = "rouge1"
	NLPScoreRouge2           NLPScoreMethod = "rouge2"
	NLPScoreRougeL           NLPScoreMethod = "rougeL"
	NLPScoreChrF             NLPScoreMethod = "chrf"
	NLPScoreStringSimilarity NLPScoreMethod = "string_similarity"
)

// NLPScoreConfig extends Config with the chosen method and its tunables.
type NLPScoreConfig struct {
	Config
	Method           NLPScoreMethod
	BLEU             nlp.BLEUConfig
	ChrFMaxNgram     int
	ChrFBeta         float64
	SimilarityMethod nlp.SimilarityMethod
}

// NLPScore wraps the pure (response, reference) -> [0,1] computational
// metrics (BLEU, ROUGE, chrF, string similarity) in the same Base/run
// plumbing the LLM-judge metrics use, so callers get identical lifecycle
// events and multi-model fan-out even though no model call is actually
// needed — every "model" just recomputes the same deterministic function,
// which is still useful when comparing against per-model aggregation
// configuration (§ NLP metrics).
type NLPScore struct{ Base }

func NewNLPScore(base Base) *NLPScore {
	base.Name = "NLPScore"
	return &NLPScore{Base: base}
}

func (m *NLPScore) SingleTurnScore(ctx context.Context, cfg NLPScoreConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}
	if !s.HasReference() {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "reference"}), nil
	}

	score := m.compute(cfg, s)

	r := m.start(ctx, s.ID(), modelIDs, 1)
	results, err := r.computeStep("ComputeNLPScore", 0, func(context.Context, string) (any, error) {
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
	return r.finish(cfg.Config, scores)
}

func (m *NLPScore) compute(cfg NLPScoreConfig, s sample.Sample) float64 {
	switch cfg.Method {
	case NLPScoreRouge1:
		return nlp.RougeN(s.Response(), s.Reference(), 1)
	case NLPScoreRouge2:
		return nlp.RougeN(s.Response(), s.Reference(), 2)
	case NLPScoreRougeL:
		return nlp.RougeL(s.Response(), s.Reference())
	case NLPScoreChrF:
		return nlp.ChrF(s.Response(), s.Reference(), cfg.ChrFMaxNgram, cfg.ChrFBeta)
	case NLPScoreStringSimilarity:
		return nlp.StringSimilarity(s.Response(), s.Reference(), cfg.SimilarityMethod)
	case NLPScoreBLEU, "":
		return nlp.BLEU(s.Response(), s.Reference(), cfg.BLEU)
	default:
		return nlp.BLEU(s.Response(), s.Reference(), cfg.BLEU)
	}
}

func (m *NLPScore) SingleTurnScoreAsync(ctx context.Context, cfg NLPScoreConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *NLPScore) GetName() string { return m.Name }
