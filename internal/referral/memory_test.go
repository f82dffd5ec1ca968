package referral

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder_Stats(t *testing.T) {
	m := NewMemoryRecorder()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, m.Record(ctx, Click{Slug: "beta", At: base}))
	require.NoError(t, m.Record(ctx, Click{Slug: "alpha", At: base.Add(time.Minute)}))
	require.NoError(t, m.Record(ctx, Click{Slug: "gamma", At: base}))
	require.NoError(t, m.Record(ctx, Click{Slug: "gamma", At: base.Add(2 * time.Minute)}))
	// Out-of-order click must not move LastClickAt backwards.
	require.NoError(t, m.Record(ctx, Click{Slug: "gamma", At: base.Add(-time.Hour)}))

	stats := m.Stats()
	require.Len(t, stats, 3)

	assert.Equal(t, SlugStats{Slug: "gamma", Clicks: 3, LastClickAt: base.Add(2 * time.Minute)}, stats[0])
	assert.Equal(t, "alpha", stats[1].Slug)
	assert.Equal(t, "beta", stats[2].Slug)
}

func TestMemoryRecorder_Empty(t *testing.T) {
	assert.Empty(t, NewMemoryRecorder().Stats())
}

func TestMemoryRecorder_Concurrent(t *testing.T) {
	m := NewMemoryRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Record(context.Background(), Click{Slug: "hot", At: time.Now()})
		}()
	}
	wg.Wait()

	stats := m.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(50), stats[0].Clicks)
}
