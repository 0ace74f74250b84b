package llm

import "sync"

// Registry is a process-wide client cache keyed by provider:model:baseURL.
// Clients are stateless apart from their http.Client, so sharing across
// concurrent requests is safe.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// GetOrCreate resolves the configuration and returns the cached client for
// it, creating one on first use.
func (r *Registry) GetOrCreate(provider, model, baseURL, apiKey string) (*Client, error) {
	cfg, err := Resolve(provider, model, baseURL, apiKey)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := cfg.CacheKey()
	if c, ok := r.clients[key]; ok {
		return c, nil
	}
	c := NewClient(cfg)
	r.clients[key] = c
	return c, nil
}

// Snapshot lists the cache keys currently held.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.clients))
	for k := range r.clients {
		keys = append(keys, k)
	}
	return keys
}

// Flush drops every cached client and returns how many were evicted.
func (r *Registry) Flush() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.clients)
	r.clients = make(map[string]*Client)
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
