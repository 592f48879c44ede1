package metric

import (
	"context"
	"strings"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const topicAdherencePrompt = `The allowed topics for this conversation are:
{topics}

Judge whether the AI turn below stays within those topics.

AI turn: {turn}

Respond as JSON: {"verdict": 0 or 1, "reason": "..."}.`

// TopicAdherence classifies every AI turn in a conversation against a fixed
// set of ReferenceTopics and scores the fraction that stay on-topic (§4.7
// TopicAdherence). Each turn is judged independently, so a model failing one
// turn's judgement is not excluded from judging the rest.
type TopicAdherence struct{ Base }

func NewTopicAdherence(base Base) *TopicAdherence {
	base.Name = "TopicAdherence"
	return &TopicAdherence{Base: base}
}

func (m *TopicAdherence) SingleTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg)
	topics := s.ReferenceTopics()
	if len(topics) == 0 {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "referenceTopics"}), nil
	}
	aiTurns := aiTurnContents(s)
	if len(aiTurns) == 0 {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "userInputMessages"}), nil
	}

	topicsBlock := strings.Join(topics, ", ")

	r := m.start(ctx, s.ID(), modelIDs, len(aiTurns))
	onTopicCount := make(map[string]int, len(modelIDs))
	judgedCount := make(map[string]int, len(modelIDs))
	for i, turn := range aiTurns {
		prompt := render.Template(topicAdherencePrompt, map[string]string{
			"topics": topicsBlock,
			"turn":   turn,
		})
		results, err := r.llmStepKeepActive(stepNameWithSample("JudgeTurn", i+1), i, prompt, func() any { return &binaryVerdictResponse{} })
		if err != nil {
			return r.fail(err)
		}
		for _, res := range results {
			if res.IsSuccess() {
				judgedCount[res.ModelID]++
				if res.Result.(*binaryVerdictResponse).Verdict == 1 {
					onTopicCount[res.ModelID]++
				}
			}
		}
	}

	scores := make(map[string]float64, len(modelIDs))
	for _, modelID := range modelIDs {
		if judgedCount[modelID] == 0 {
			continue
		}
		scores[modelID] = float64(onTopicCount[modelID]) / float64(judgedCount[modelID])
	}
	return r.finish(cfg, scores)
}

func (m *TopicAdherence) SingleTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

// MultiTurnScore is TopicAdherence's agent-metric entry point: the
// per-AI-turn topic judgement already walks the whole conversation in
// s.UserInputMessages(), so it delegates directly.
func (m *TopicAdherence) MultiTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	return m.SingleTurnScore(ctx, cfg, s)
}

func (m *TopicAdherence) MultiTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.MultiTurnScore(cctx, cfg, s) })
}

func (m *TopicAdherence) GetName() string { return m.Name }

func aiTurnContents(s sample.Sample) []string {
	var turns []string
	for _, msg := range s.UserInputMessages() {
		if msg.Role == sample.RoleAI && msg.Content != "" {
			turns = append(turns, msg.Content)
		}
	}
	return turns
}
