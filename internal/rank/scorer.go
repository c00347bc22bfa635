package rank

import "gighunt-engine/internal/domain"

type Scorer interface {
	Score(p domain.Posting, c domain.ClassificationResult) domain.ScoreResult
}
