package dedup_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gighunt-engine/internal/dedup"
)

func TestFingerprint_Stable(t *testing.T) {
	a := dedup.Fingerprint("Need n8n webhook", "https://example.com/jobs/1")
	b := dedup.Fingerprint("Need n8n webhook", "https://example.com/jobs/1")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	// sha256("ab") is fixed forever; guards against accidental algorithm changes.
	assert.Equal(t, "fb8e20fc2e4c3f248c60c39bd652f3c1347298bb977b8b4d5903b85055620603", dedup.Fingerprint("a", "b"))
}

func TestFingerprint_DifferentLinksDoNotCollide(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		fp := dedup.Fingerprint("Same title", fmt.Sprintf("https://example.com/jobs/%d", i))
		require.False(t, seen[fp], "collision at %d", i)
		seen[fp] = true
	}
}

func TestSeenSet_BoundedFIFO(t *testing.T) {
	const k = 1000
	s := dedup.NewSeenSet(k)
	n := 2500
	for i := 0; i < n; i++ {
		s.Add(fmt.Sprintf("fp-%d", i))
	}

	require.Equal(t, k, s.Len())
	entries := s.Entries()
	require.Len(t, entries, k)
	for i, fp := range entries {
		assert.Equal(t, fmt.Sprintf("fp-%d", n-k+i), fp)
	}
	assert.False(t, s.Has(fmt.Sprintf("fp-%d", n-k-1)))
	assert.True(t, s.Has(fmt.Sprintf("fp-%d", n-k)))
}

func TestSeenSet_UnderCapacityKeepsAll(t *testing.T) {
	s := dedup.NewSeenSet(10)
	for i := 0; i < 4; i++ {
		s.Add(fmt.Sprintf("fp-%d", i))
	}
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []string{"fp-0", "fp-1", "fp-2", "fp-3"}, s.Entries())
}

func TestSeenSet_ReAddDoesNotRefresh(t *testing.T) {
	s := dedup.NewSeenSet(2)
	s.Add("a")
	s.Add("b")
	s.Add("a") // no-op
	s.Add("c") // evicts a, the oldest insertion
	assert.False(t, s.Has("a"))
	assert.Equal(t, []string{"b", "c"}, s.Entries())
}

func TestNewSeenSetFrom_KeepsMostRecent(t *testing.T) {
	s := dedup.NewSeenSetFrom(3, []string{"a", "b", "c", "d", "e"})
	assert.Equal(t, []string{"c", "d", "e"}, s.Entries())
}
