// Package modelstore holds the engine's read-only registries mapping a
// model id to the client that serves it, plus the model-id -> provider-name
// mapping the rate limiter keys off of. Both stores are immutable after
// construction (§4.1: "constructed once, held by reference").
package modelstore

import "github.com/intelligencedev/ragas-engine/internal/llm"

// ChatClientStore maps modelId -> ChatClient, falling back to a default
// client for unregistered ids.
type ChatClientStore struct {
	clients  map[string]llm.ChatClient
	def      llm.ChatClient
	provider map[string]string
}

// NewChatClientStore builds a store. providerOf maps modelId -> providerName
// and is consulted by the rate limiter; a model absent from providerOf is
// unrate-limited.
func NewChatClientStore(clients map[string]llm.ChatClient, def llm.ChatClient, providerOf map[string]string) *ChatClientStore {
	cp := make(map[string]llm.ChatClient, len(clients))
	for k, v := range clients {
		cp[k] = v
	}
	po := make(map[string]string, len(providerOf))
	for k, v := range providerOf {
		po[k] = v
	}
	return &ChatClientStore{clients: cp, def: def, provider: po}
}

// Get returns the client registered for modelId, or the store's default
// client when modelId is unknown.
func (s *ChatClientStore) Get(modelID string) llm.ChatClient {
	if c, ok := s.clients[modelID]; ok {
		return c
	}
	return s.def
}

// ModelIDs returns every explicitly registered model id (not including the
// default fallback).
func (s *ChatClientStore) ModelIDs() []string {
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}

// ProviderOf returns the provider name registered for modelId and whether
// one was registered at all.
func (s *ChatClientStore) ProviderOf(modelID string) (string, bool) {
	p, ok := s.provider[modelID]
	return p, ok
}

// EmbeddingModelStore maps modelId -> EmbeddingModel, with the same
// default-fallback shape as ChatClientStore.
type EmbeddingModelStore struct {
	models   map[string]llm.EmbeddingModel
	def      llm.EmbeddingModel
	provider map[string]string
}

func NewEmbeddingModelStore(models map[string]llm.EmbeddingModel, def llm.EmbeddingModel, providerOf map[string]string) *EmbeddingModelStore {
	cp := make(map[string]llm.EmbeddingModel, len(models))
	for k, v := range models {
		cp[k] = v
	}
	po := make(map[string]string, len(providerOf))
	for k, v := range providerOf {
		po[k] = v
	}
	return &EmbeddingModelStore{models: cp, def: def, provider: po}
}

func (s *EmbeddingModelStore) Get(modelID string) llm.EmbeddingModel {
	if m, ok := s.models[modelID]; ok {
		return m
	}
	return s.def
}

func (s *EmbeddingModelStore) ModelIDs() []string {
	ids := make([]string, 0, len(s.models))
	for id := range s.models {
		ids = append(ids, id)
	}
	return ids
}

func (s *EmbeddingModelStore) ProviderOf(modelID string) (string, bool) {
	p, ok := s.provider[modelID]
	return p, ok
}
