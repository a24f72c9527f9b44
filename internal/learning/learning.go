// Package learning remembers which record key users accepted for a field label so that
// later scans on the same site score that key higher.
package learning

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/appycrew-ocr/internal/textnorm"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

// DefaultCapacity is how many observations a MemoryStore keeps.
const DefaultCapacity = 100

// Observation is one accepted (label, key) pairing.
type Observation struct {
	ID        uuid.UUID `json:"id"`
	Site      string    `json:"site"`
	Label     string    `json:"label"`
	Key       types.Key `json:"key"`
	Value     string    `json:"value,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewObservation stamps an observation with an id and time.
func NewObservation(site, label string, key types.Key, value string) Observation {
	return Observation{
		ID:        uuid.New(),
		Site:      site,
		Label:     label,
		Key:       key,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists observations.
type Store interface {
	Record(ctx context.Context, obs Observation) error
	Recent(ctx context.Context, site string, limit int) ([]Observation, error)
}

// Hints maps normalized labels to keys, most frequently accepted first.
type Hints map[string][]types.Key

// KeysFor implements mapping.HintSource.
func (h Hints) KeysFor(label string) []types.Key {
	return h[textnorm.NormalizeLabel(label)]
}

// BuildHints aggregates observations into Hints.
func BuildHints(obs []Observation) Hints {
	counts := map[string]map[types.Key]int{}
	for _, o := range obs {
		label := textnorm.NormalizeLabel(o.Label)
		if label == "" || o.Key == "" {
			continue
		}
		if counts[label] == nil {
			counts[label] = map[types.Key]int{}
		}
		counts[label][o.Key]++
	}

	hints := make(Hints, len(counts))
	for label, byKey := range counts {
		keys := make([]types.Key, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if byKey[keys[i]] != byKey[keys[j]] {
				return byKey[keys[i]] > byKey[keys[j]]
			}
			return keys[i] < keys[j]
		})
		hints[label] = keys
	}
	return hints
}

// LoadHints reads a site's recent observations and aggregates them.
func LoadHints(ctx context.Context, s Store, site string) (Hints, error) {
	obs, err := s.Recent(ctx, site, DefaultCapacity)
	if err != nil {
		return nil, err
	}
	return BuildHints(obs), nil
}

// MemoryStore keeps the most recent observations in memory.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    []Observation
}

// NewMemoryStore creates a store bounded to capacity entries (DefaultCapacity if <= 0).
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Record implements Store. The oldest entry is evicted once the store is full.
func (m *MemoryStore) Record(_ context.Context, obs Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, obs)
	if over := len(m.items) - m.capacity; over > 0 {
		m.items = append([]Observation(nil), m.items[over:]...)
	}
	return nil
}

// Recent implements Store. Newest first; an empty site matches every site.
func (m *MemoryStore) Recent(_ context.Context, site string, limit int) ([]Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Observation
	for i := len(m.items) - 1; i >= 0; i-- {
		o := m.items[i]
		if site != "" && !strings.EqualFold(o.Site, site) {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored observations.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
