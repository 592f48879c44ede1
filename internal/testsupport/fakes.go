// Package testsupport provides deterministic fake ChatClient and
// EmbeddingModel implementations metric and executor tests script against,
// standing in for the real SDK-backed adapters (§8 invariant #3: result
// determinism given a stub SDK).
package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ScriptedChatClient returns one pre-baked JSON response per call, in
// order, decoding it into the caller's out value exactly as a real
// ChatClient would. Calling it more times than it has responses is a
// test-authoring error and returns an error, matching a real client
// exhausting some external resource.
type ScriptedChatClient struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

// NewScriptedChatClient builds a client that replies with responses, in
// order, one JSON document per call.
func NewScriptedChatClient(responses ...string) *ScriptedChatClient {
	return &ScriptedChatClient{responses: append([]string(nil), responses...)}
}

func (c *ScriptedChatClient) Prompt(_ context.Context, text string, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, text)
	if len(c.responses) == 0 {
		return fmt.Errorf("testsupport: scripted chat client has no more responses")
	}
	next := c.responses[0]
	c.responses = c.responses[1:]
	return json.Unmarshal([]byte(next), out)
}

// Prompts returns every prompt this client has received so far, in order.
func (c *ScriptedChatClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// FailingChatClient always fails, simulating a model that is down or
// rejecting every request.
type FailingChatClient struct{ Err error }

func (c FailingChatClient) Prompt(context.Context, string, any) error {
	if c.Err != nil {
		return c.Err
	}
	return fmt.Errorf("testsupport: failing chat client")
}

// ScriptedEmbeddingModel returns one pre-baked vector per call, in order.
type ScriptedEmbeddingModel struct {
	mu      sync.Mutex
	vectors [][]float32
	texts   []string
}

func NewScriptedEmbeddingModel(vectors ...[]float32) *ScriptedEmbeddingModel {
	return &ScriptedEmbeddingModel{vectors: append([][]float32(nil), vectors...)}
}

func (m *ScriptedEmbeddingModel) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	if len(m.vectors) == 0 {
		return nil, fmt.Errorf("testsupport: scripted embedding model has no more vectors")
	}
	next := m.vectors[0]
	m.vectors = m.vectors[1:]
	return next, nil
}

func (m *ScriptedEmbeddingModel) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}
