package rank

import (
	"sort"

	"gighunt-engine/internal/domain"
)

// Floors are optional extra cut-offs applied after the easy filter;
// zero disables each.
type Floors struct {
	MinRecommendation int
	MaxDifficulty     int
}

// Select keeps easy postings, orders them by RankKey (recommendation*2 -
// difficulty) descending with arrival order preserved on ties, and keeps
// at most budget of them.
func Select(scored []domain.ScoredPosting, budget int, floors Floors) []domain.ScoredPosting {
	if budget <= 0 {
		return nil
	}

	out := make([]domain.ScoredPosting, 0, len(scored))
	for _, sp := range scored {
		if !sp.Classification.IsEasy {
			continue
		}
		if floors.MinRecommendation > 0 && sp.Score.Recommendation < floors.MinRecommendation {
			continue
		}
		if floors.MaxDifficulty > 0 && sp.Score.Difficulty > floors.MaxDifficulty {
			continue
		}
		out = append(out, sp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.RankKey() > out[j].Score.RankKey()
	})

	if len(out) > budget {
		out = out[:budget]
	}
	return out
}
