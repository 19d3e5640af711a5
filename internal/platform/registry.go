// internal/platform/registry.go
package platform

import (
	"time"

	"github.com/ranksight/ranksight-backend/internal/models"
)

// Registry holds the configured adapters in the stable platform order used
// for fan-out and result sorting.
type Registry struct {
	adapters map[models.PlatformType]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[models.PlatformType]Adapter)}
}

// NewRegistryFromCredentials wires one adapter per backend that has an API
// key configured.
func NewRegistryFromCredentials(creds map[models.PlatformType]Credentials, timeout time.Duration) *Registry {
	r := NewRegistry()
	for name, c := range creds {
		if c.APIKey == "" {
			continue
		}
		switch name {
		case models.PlatformAnthropic:
			r.Register(NewAnthropicAdapter(c, timeout))
		case models.PlatformOpenAI, models.PlatformGemini, models.PlatformPerplexity:
			r.Register(NewOpenAIAdapter(name, c, timeout))
		}
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

func (r *Registry) Get(name models.PlatformType) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Ordered returns enabled adapters in the stable configured order, capped at
// limit when limit > 0.
func (r *Registry) Ordered(limit int) []Adapter {
	var out []Adapter
	for _, name := range models.AllPlatforms {
		if a, ok := r.adapters[name]; ok {
			out = append(out, a)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}
