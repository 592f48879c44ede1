package metric

import (
	"context"
	"strings"

	"github.com/intelligencedev/ragas-engine/internal/render"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

const agentGoalWithReferencePrompt = `An AI agent had the conversation below while pursuing the user's goal. Judge whether the agent's final outcome matches the reference outcome.

Conversation:
{conversation}

Reference outcome: {reference}

Respond as JSON: {"verdict": 0 or 1, "reason": "..."}.`

const agentGoalWithoutReferencePrompt = `An AI agent had the conversation below. Infer the user's goal from the conversation and judge whether the agent's final outcome satisfies that goal.

Conversation:
{conversation}

Respond as JSON: {"verdict": 0 or 1, "reason": "..."}.`

// AgentGoalAccuracy judges whether a multi-turn agent conversation achieved
// the user's goal, either against a supplied reference outcome or, absent
// one, by inferring the goal from the conversation itself (§4.7
// AgentGoalAccuracy).
type AgentGoalAccuracy struct{ Base }

func NewAgentGoalAccuracy(base Base) *AgentGoalAccuracy {
	base.Name = "AgentGoalAccuracy"
	return &AgentGoalAccuracy{Base: base}
}

func (m *AgentGoalAccuracy) SingleTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	modelIDs := m.effectiveModelIDs(cfg)
	conversation := renderConversation(s)
	if conversation == "" {
		return m.zero(ctx, s.ID(), modelIDs, &MissingInputWarning{MetricName: m.Name, Field: "userInputMessages"}), nil
	}

	var prompt string
	if s.HasReference() {
		prompt = render.Template(agentGoalWithReferencePrompt, map[string]string{
			"conversation": conversation,
			"reference":    s.Reference(),
		})
	} else {
		prompt = render.Template(agentGoalWithoutReferencePrompt, map[string]string{
			"conversation": conversation,
		})
	}

	r := m.start(ctx, s.ID(), modelIDs, 1)
	results, err := r.llmStep("JudgeGoalAccuracy", 0, prompt, func() any { return &binaryVerdictResponse{} })
	if err != nil {
		return r.fail(err)
	}

	scores := make(map[string]float64, len(results))
	for _, res := range results {
		if res.IsSuccess() {
			scores[res.ModelID] = float64(res.Result.(*binaryVerdictResponse).Verdict)
		}
	}
	return r.finish(cfg, scores)
}

func (m *AgentGoalAccuracy) SingleTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.SingleTurnScore(cctx, cfg, s) })
}

// MultiTurnScore is AgentGoalAccuracy's agent-metric entry point: it judges
// the whole conversation in s.UserInputMessages(), which SingleTurnScore
// already does via renderConversation, so it delegates directly.
func (m *AgentGoalAccuracy) MultiTurnScore(ctx context.Context, cfg Config, s sample.Sample) (Result, error) {
	return m.SingleTurnScore(ctx, cfg, s)
}

func (m *AgentGoalAccuracy) MultiTurnScoreAsync(ctx context.Context, cfg Config, s sample.Sample) *Handle {
	return runAsync(ctx, func(cctx context.Context) (Result, error) { return m.MultiTurnScore(cctx, cfg, s) })
}

func (m *AgentGoalAccuracy) GetName() string { return m.Name }

// renderConversation flattens a Sample's conversation turns, falling back to
// the plain UserInput/Response pair for single-turn samples.
func renderConversation(s sample.Sample) string {
	msgs := s.UserInputMessages()
	if len(msgs) == 0 {
		if s.UserInput() == "" && s.Response() == "" {
			return ""
		}
		var b strings.Builder
		b.WriteString("human: ")
		b.WriteString(s.UserInput())
		b.WriteString("\nai: ")
		b.WriteString(s.Response())
		return b.String()
	}
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}
