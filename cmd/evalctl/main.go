// Command evalctl runs a single metric against a single sample and prints
// the resulting score as JSON. It exists to exercise the engine end to end
// from the command line, the same role embedctl plays for raw embedding
// calls: load config, wire clients, run one request, print the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/intelligencedev/ragas-engine/internal/aggregate"
	"github.com/intelligencedev/ragas-engine/internal/config"
	"github.com/intelligencedev/ragas-engine/internal/executor"
	"github.com/intelligencedev/ragas-engine/internal/llm"
	"github.com/intelligencedev/ragas-engine/internal/llm/anthropicclient"
	"github.com/intelligencedev/ragas-engine/internal/llm/openaiclient"
	"github.com/intelligencedev/ragas-engine/internal/metric"
	"github.com/intelligencedev/ragas-engine/internal/modelstore"
	"github.com/intelligencedev/ragas-engine/internal/observability"
	"github.com/intelligencedev/ragas-engine/internal/ratelimit"
	"github.com/intelligencedev/ragas-engine/internal/sample"
)

// sampleFile is the on-disk shape of the -sample JSON document; each field
// feeds the sample.Builder setter of the same name, so the CLI has no logic
// of its own for interpreting a sample's fields. It has no fields for the
// sample ID, conversation messages or reference tool calls, so samples read
// from a file carry none of those.
type sampleFile struct {
	UserInput         string   `json:"user_input"`
	Response          string   `json:"response"`
	Reference         string   `json:"reference"`
	RetrievedContexts []string `json:"retrieved_contexts"`
	ReferenceTopics   []string `json:"reference_topics"`
}

func main() {
	log.SetFlags(0)
	var (
		metricName = flag.String("metric", "faithfulness", "metric to run: faithfulness|context_recall|context_entity_recall|tool_call_accuracy|topic_adherence|agent_goal_accuracy")
		samplePath = flag.String("sample", "", "path to a JSON sample document (see sampleFile)")
		aggStrat   = flag.String("aggregation", "", "override aggregation strategy: average|min|max|median|consensus")
		configPath = flag.String("config", "", "path to a YAML config file; defaults to environment variables")
		multiTurn  = flag.Bool("multiturn", false, "call MultiTurnScore instead of SingleTurnScore (tool_call_accuracy|topic_adherence|agent_goal_accuracy only)")
	)
	flag.Parse()

	if *samplePath == "" {
		log.Fatal("evalctl: -sample is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("evalctl: load config: %v", err)
	}
	observability.InitLogger("", cfg.LogLevel)

	s, err := loadSample(*samplePath)
	if err != nil {
		log.Fatalf("evalctl: load sample: %v", err)
	}

	exec, chatModelIDs := buildExecutor(cfg)
	base := metric.Base{
		Name:            titleCase(*metricName),
		Executor:        exec,
		DefaultModelIDs: chatModelIDs,
	}
	if *aggStrat != "" {
		base.Aggregation = aggregate.Strategy(*aggStrat)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mcfg := metric.Config{}
	result, err := runMetric(ctx, *metricName, base, mcfg, s, *multiTurn)
	if err != nil {
		log.Fatalf("evalctl: %s: %v", *metricName, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("evalctl: encode result: %v", err)
	}
}

// titleCase renders a snake_case metric name as a display name, e.g.
// "context_recall" -> "Context Recall".
func titleCase(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func loadSample(path string) (sample.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sample.Sample{}, fmt.Errorf("read %s: %w", path, err)
	}
	var sf sampleFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return sample.Sample{}, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return sample.NewBuilder().
		UserInput(sf.UserInput).
		Response(sf.Response).
		Reference(sf.Reference).
		RetrievedContexts(sf.RetrievedContexts...).
		ReferenceTopics(sf.ReferenceTopics...).
		Build(), nil
}

// buildExecutor wires one Executor from config: one ChatClient per
// configured chat model (routed to the openai or anthropic SDK adapter by
// ModelConfig.Backend), one ProviderRegistry bucket per configured rate
// limit, and the provider-of-model map both consult.
func buildExecutor(cfg config.Config) (*executor.Executor, []string) {
	clients := make(map[string]llm.ChatClient, len(cfg.ChatModels))
	providerOf := make(map[string]string, len(cfg.ChatModels))
	chatModelIDs := make([]string, 0, len(cfg.ChatModels))
	for _, mc := range cfg.ChatModels {
		clients[mc.ID] = newChatClient(mc)
		providerOf[mc.ID] = mc.Provider
		chatModelIDs = append(chatModelIDs, mc.ID)
	}

	embeds := make(map[string]llm.EmbeddingModel, len(cfg.EmbeddingModels))
	for _, mc := range cfg.EmbeddingModels {
		embeds[mc.ID] = newEmbeddingModel(mc)
		providerOf[mc.ID] = mc.Provider
	}

	rlConfigs := make(map[string]ratelimit.ProviderConfig, len(cfg.RateLimits))
	for _, rl := range cfg.RateLimits {
		rlConfigs[rl.Provider] = ratelimit.ProviderConfig{
			RPS:      rl.RPS,
			Strategy: ratelimit.Strategy(rl.Strategy),
			Timeout:  time.Duration(rl.TimeoutS) * time.Second,
		}
	}

	chatStore := modelstore.NewChatClientStore(clients, nil, providerOf)
	embedStore := modelstore.NewEmbeddingModelStore(embeds, nil, providerOf)
	limiters := ratelimit.NewProviderRegistry(rlConfigs, providerOf)
	return executor.New(chatStore, embedStore, limiters), chatModelIDs
}

func newChatClient(mc config.ModelConfig) llm.ChatClient {
	switch mc.Backend {
	case "anthropic":
		return anthropicclient.New(anthropicclient.Config{APIKey: mc.APIKey, BaseURL: mc.BaseURL, Model: mc.Model}, http.DefaultClient)
	default:
		return openaiclient.New(openaiclient.Config{APIKey: mc.APIKey, BaseURL: mc.BaseURL, Model: mc.Model}, http.DefaultClient)
	}
}

func newEmbeddingModel(mc config.ModelConfig) llm.EmbeddingModel {
	return openaiclient.New(openaiclient.Config{APIKey: mc.APIKey, BaseURL: mc.BaseURL, EmbeddingModel: mc.Model}, http.DefaultClient)
}

// runMetric dispatches by name to the metrics whose SingleTurnScore accepts
// a plain metric.Config; metrics with their own config type (AspectCritic,
// SimpleCriteriaScore, RubricsScore, FactualCorrectness, NoiseSensitivity,
// ResponseRelevancy, NLPScore) are intended for direct Go callers, not this
// generic CLI entry point. multiTurn routes the three agent metrics through
// MultiTurnScore instead; it is rejected for the others since they have no
// such method.
func runMetric(ctx context.Context, name string, base metric.Base, cfg metric.Config, s sample.Sample, multiTurn bool) (metric.Result, error) {
	switch name {
	case "faithfulness":
		if multiTurn {
			return metric.Result{}, fmt.Errorf("metric %q has no MultiTurnScore", name)
		}
		return metric.NewFaithfulness(base).SingleTurnScore(ctx, cfg, s)
	case "context_recall":
		if multiTurn {
			return metric.Result{}, fmt.Errorf("metric %q has no MultiTurnScore", name)
		}
		return metric.NewContextRecall(base).SingleTurnScore(ctx, cfg, s)
	case "context_entity_recall":
		if multiTurn {
			return metric.Result{}, fmt.Errorf("metric %q has no MultiTurnScore", name)
		}
		return metric.NewContextEntityRecall(base).SingleTurnScore(ctx, cfg, s)
	case "tool_call_accuracy":
		m := metric.NewToolCallAccuracy(base)
		if multiTurn {
			return m.MultiTurnScore(ctx, cfg, s)
		}
		return m.SingleTurnScore(ctx, cfg, s)
	case "topic_adherence":
		m := metric.NewTopicAdherence(base)
		if multiTurn {
			return m.MultiTurnScore(ctx, cfg, s)
		}
		return m.SingleTurnScore(ctx, cfg, s)
	case "agent_goal_accuracy":
		m := metric.NewAgentGoalAccuracy(base)
		if multiTurn {
			return m.MultiTurnScore(ctx, cfg, s)
		}
		return m.SingleTurnScore(ctx, cfg, s)
	default:
		return metric.Result{}, fmt.Errorf("unknown metric %q", name)
	}
}
