package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/rank"
)

func scored(title string, easy bool, rec, diff int) domain.ScoredPosting {
	return domain.ScoredPosting{
		Posting:        domain.Posting{Title: title, Link: "https://example.com/" + title},
		Classification: domain.ClassificationResult{IsEasy: easy},
		Score:          domain.ScoreResult{Recommendation: rec, Difficulty: diff},
	}
}

func titles(in []domain.ScoredPosting) []string {
	out := make([]string, 0, len(in))
	for _, sp := range in {
		out = append(out, sp.Posting.Title)
	}
	return out
}

func TestSelect_RecommendationWeighsDouble(t *testing.T) {
	a := scored("A", true, 5, 5) // 5*2-5 = 5
	b := scored("B", true, 4, 1) // 4*2-1 = 7

	got := rank.Select([]domain.ScoredPosting{a, b}, 5, rank.Floors{})
	assert.Equal(t, []string{"B", "A"}, titles(got))
}

func TestSelect_DropsNotEasy(t *testing.T) {
	got := rank.Select([]domain.ScoredPosting{
		scored("hard-but-lucrative", false, 5, 1),
		scored("easy", true, 2, 3),
	}, 5, rank.Floors{})
	assert.Equal(t, []string{"easy"}, titles(got))
}

func TestSelect_StableOnEqualKeys(t *testing.T) {
	in := []domain.ScoredPosting{
		scored("first", true, 3, 1),  // 5
		scored("second", true, 4, 3), // 5
		scored("top", true, 5, 1),    // 9
		scored("third", true, 3, 1),  // 5
	}
	got := rank.Select(in, 10, rank.Floors{})
	assert.Equal(t, []string{"top", "first", "second", "third"}, titles(got))
}

func TestSelect_TruncatesToBudget(t *testing.T) {
	var in []domain.ScoredPosting
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		in = append(in, scored(n, true, 3, 2))
	}
	got := rank.Select(in, 5, rank.Floors{})
	require.Len(t, got, 5)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, titles(got))

	assert.Empty(t, rank.Select(in, 0, rank.Floors{}))
}

func TestSelect_Floors(t *testing.T) {
	in := []domain.ScoredPosting{
		scored("low-rec", true, 2, 1),
		scored("too-hard", true, 5, 5),
		scored("ok", true, 3, 4),
	}
	got := rank.Select(in, 10, rank.Floors{MinRecommendation: 3, MaxDifficulty: 4})
	assert.Equal(t, []string{"ok"}, titles(got))
}

func TestSelect_DoesNotReorderInput(t *testing.T) {
	in := []domain.ScoredPosting{scored("a", true, 1, 5), scored("b", true, 5, 1)}
	_ = rank.Select(in, 5, rank.Floors{})
	assert.Equal(t, []string{"a", "b"}, titles(in))
}
