package referral

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SlugStats summarizes clicks for one slug.
type SlugStats struct {
	Slug        string    `json:"slug"`
	Clicks      int64     `json:"clicks"`
	LastClickAt time.Time `json:"last_click_at"`
}

// MemoryRecorder keeps per-slug click counts for the life of the process.
type MemoryRecorder struct {
	mu    sync.RWMutex
	stats map[string]*SlugStats
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{stats: make(map[string]*SlugStats)}
}

func (m *MemoryRecorder) Record(_ context.Context, click Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[click.Slug]
	if !ok {
		s = &SlugStats{Slug: click.Slug}
		m.stats[click.Slug] = s
	}
	s.Clicks++
	if click.At.After(s.LastClickAt) {
		s.LastClickAt = click.At
	}
	return nil
}

// Stats returns a snapshot ordered by click count, then slug.
func (m *MemoryRecorder) Stats() []SlugStats {
	m.mu.RLock()
	out := make([]SlugStats, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
