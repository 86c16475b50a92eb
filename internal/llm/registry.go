package llm

import (
	"fmt"
	"sync"
)

// Registry maps model identifiers to judge clients so each chair's ModelID
// can name a distinct backing judge.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]JudgeClient
}

// NewRegistry creates an empty judge registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]JudgeClient),
	}
}

// Register adds or replaces the client for a model identifier.
func (r *Registry) Register(modelID string, client JudgeClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[modelID] = client
}

// Get returns the client registered for the model identifier.
func (r *Registry) Get(modelID string) (JudgeClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[modelID]
	if !ok {
		return nil, fmt.Errorf("judge client not found: %s", modelID)
	}
	return client, nil
}

// List returns the registered model identifiers.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}
