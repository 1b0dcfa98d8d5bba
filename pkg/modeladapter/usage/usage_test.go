package usage_test

import (
	"sync"
	"testing"

	"github.com/quarryhq/stratum/pkg/modeladapter/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCountTotal(t *testing.T) {
	tc := usage.TokenCount{InputTokens: 120, OutputTokens: 30}
	assert.Equal(t, 150, tc.Total())
}

func TestTrackerEmpty(t *testing.T) {
	var tr usage.Tracker

	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Count())
	assert.Equal(t, usage.TokenCount{}, tr.Total())
}

func TestTrackerAddAndTotal(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{InputTokens: 10, OutputTokens: 5})
	tr.Add(usage.TokenCount{InputTokens: 20, OutputTokens: 15})

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 20, last.InputTokens)

	total := tr.Total()
	assert.Equal(t, 30, total.InputTokens)
	assert.Equal(t, 20, total.OutputTokens)
	assert.Equal(t, 2, tr.Count())
}

func TestTrackerReset(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{InputTokens: 1})
	tr.Reset()

	assert.Equal(t, 0, tr.Count())
}

func TestTrackerConcurrentAdd(t *testing.T) {
	var tr usage.Tracker
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(usage.TokenCount{InputTokens: 1, OutputTokens: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Count())
	assert.Equal(t, 100, tr.Total().Total())
}
