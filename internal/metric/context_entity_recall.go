package metric

import (
	"context"
	"strings"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const extractEntitiesPrompt = `Extract every named entity (people, places, organizations, dates, products) mentioned in the text below. Respond as JSON: {"entities": ["..."]}.

Text:
{text}`

type entitiesResponse struct {
	Entities []string `json:"entities"`
}

// ContextEntityRecall measures what fraction of the named entities present
// in the reference also appear in the retrieved context (§4.7
// ContextEntityRecall).
type ContextEntityRecall struct{ Base }

func NewContextEntityRecall(base Base) *ContextEntityRecall {
	base.Name = "ContextEntityRecall"
	return &ContextEntityRecall{Base: base}
}

func (m *ContextEntityRecall) SingleTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg)
	if !s.HasReference() {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "reference"}), nil
	}

	r := m.start(ctx, s.ID(), modelIDs, 3)

	refPrompt := render.Template(extractEntitiesPrompt, map[string]string{"text": s.Reference()})
	refResults, err := r.llmStep("ExtractReferenceEntities", 0, refPrompt, func() any { return &entitiesResponse{} })
	if err != nil {
		return r.fail(err)
	}
	refEntitiesByModel := map[string][]string{}
	for _, res := range refResults {
		if res.IsSuccess() {
			refEntitiesByModel[res.ModelID] = res.Result.(*entitiesResponse).Entities
		}
	}

	ctxPrompt := render.Template(extractEntitiesPrompt, map[string]string{"text": s.JoinedContexts()})
	ctxResults, err := r.llmStep("ExtractContextEntities", 1, ctxPrompt, func() any { return &entitiesResponse{} })
	if err != nil {
		return r.fail(err)
	}
	ctxEntitiesByModel := map[string][]string{}
	for _, res := range ctxResults {
		if res.IsSuccess() {
			ctxEntitiesByModel[res.ModelID] = res.Result.(*entitiesResponse).Entities
		}
	}

	computeResults, err := r.computeStep("ComputeEntityRecall", 2, func(_ context.Context, modelID string) (any, error) {
		return entityRecallScore(refEntitiesByModel[modelID], ctxEntitiesByModel[modelID]), nil
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

func (m *ContextEntityRecall) SingleTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *ContextEntityRecall) GetName() string { return m.Name }

func entityRecallScore(refEntities, ctxEntities []string) float64 {
	ref := normalizeEntitySet(refEntities)
	if len(ref) == 0 {
		return 0
	}
	ctxSet := normalizeEntitySet(ctxEntities)
	intersection := 0
	for e := range ref {
		if ctxSet[e] {
			intersection++
		}
	}
	return float64(intersection) / float64(len(ref))
}

func normalizeEntitySet(entities []string) map[string]bool {
	set := make(map[string]bool, len(entities))
	for _, e := range entities {
		set[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return set
}
