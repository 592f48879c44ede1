package metric

import (
	"fmt"
	"math"

	"context"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// ResponseRelevancyConfig extends Config with the number of hypothetical
// questions to generate per model.
type ResponseRelevancyConfig struct {
	Config
	NumQuestions int // default 3
}

const generateQuestionsPrompt = `Given an answer, generate {num_questions} questions that the answer could plausibly be responding to. For each, flag whether the answer is noncommittal (evasive, e.g. "I don't know"). Respond as JSON: {"questions": [{"question": "...", "noncommittal": 0 or 1}]}.

Answer: {response}`

type relevancyQuestion struct {
	Question     string `json:"question"`
	Noncommittal int    `json:"noncommittal"`
}

type questionsResponse struct {
	Questions []relevancyQuestion `json:"questions"`
}

// ResponseRelevancy measures how well response addresses userInput, via
// generated hypothetical questions embedded and compared against the
// original question (§4.7 ResponseRelevancy).
//
// Known caveat (§9 Open Questions): a single noncommittal-flagged question
// zeros that model's entire score. This is sensitive to LLM sampling
// variance; callers running this metric across repeated trials should
// expect more variance here than in the other LLM-judge metrics.
type ResponseRelevancy struct{ Base }

func NewResponseRelevancy(base Base) *ResponseRelevancy {
	base.Name = "ResponseRelevancy"
	return &ResponseRelevancy{Base: base}
}

func (m *ResponseRelevancy) SingleTurnScore(ctx context.Context, cfg ResponseRelevancyConfig, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg.Config)
	if s.Response() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "response"}), nil
	}
	if s.UserInput() == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "userInput"}), nil
	}
	numQuestions := cfg.NumQuestions
	if numQuestions <= 0 {
		numQuestions = 3
	}

	prompt := render.Template(generateQuestionsPrompt, map[string]string{
		"num_questions": fmt.Sprintf("%d", numQuestions),
		"response":      s.Response(),
	})

	r := m.start(ctx, s.ID(), modelIDs, 2)

	genResults, err := r.llmStep("GenerateQuestions", 0, prompt, func() any { return &questionsResponse{} })
	if err != nil {
		return r.fail(err)
	}
	questionsByModel := map[string][]relevancyQuestion{}
	noncommittalByModel := map[string]bool{}
	maxQ := 0
	for _, res := range genResults {
		if !res.IsSuccess() {
			continue
		}
		qs := res.Result.(*questionsResponse).Questions
		questionsByModel[res.ModelID] = qs
		if len(qs) > maxQ {
			maxQ = len(qs)
		}
		for _, q := range qs {
			if q.Noncommittal == 1 {
				noncommittalByModel[res.ModelID] = true
			}
		}
	}

	r.totalSteps = 2 + maxQ

	userInputResults, err := r.embeddingStep("EmbedUserInput", 1, s.UserInput())
	if err != nil {
		return r.fail(err)
	}
	userInputEmbedding := map[string][]float32{}
	for _, res := range userInputResults {
		if res.IsSuccess() {
			userInputEmbedding[res.ModelID] = res.Result.([]float32)
		}
	}

	questionSimilarities := make(map[string][]float64, len(modelIDs))
	for i := 0; i < maxQ; i++ {
		textByModel := make(map[string]string, len(r.active))
		for _, modelID := range r.active {
			qs := questionsByModel[modelID]
			if i < len(qs) {
				textByModel[modelID] = qs[i].Question
			}
		}
		results, err := r.embeddingStepPerModel(fmt.Sprintf("EmbedQuestion_%d", i+1), 2+i, textByModel)
		if err != nil {
			return r.fail(err)
		}
		for _, res := range results {
			if res.IsSuccess() && textByModel[res.ModelID] != "" {
				sim := cosineSimilarity(userInputEmbedding[res.ModelID], res.Result.([]float32))
				questionSimilarities[res.ModelID] = append(questionSimilarities[res.ModelID], sim)
			}
		}
	}

	scores := make(map[string]float64, len(r.active))
	for _, modelID := range modelIDs {
		if noncommittalByModel[modelID] {
			scores[modelID] = 0
			continue
		}
		sims := questionSimilarities[modelID]
		if len(sims) == 0 {
			continue
		}
		scores[modelID] = average(sims)
	}
	return r.finish(cfg.Config, scores)
}

func (m *ResponseRelevancy) SingleTurnScoreAsync(ctx context.Context, cfg ResponseRelevancyConfig, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

func (m *ResponseRelevancy) GetName() string { return m.Name }

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
