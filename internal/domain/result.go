package domain

type Origin string

const (
	OriginRules Origin = "rules"
	OriginLLM   Origin = "llm"
)

// Rejection reasons carried on a ClassificationResult when IsEasy is false.
const (
	ReasonNoTemplate         = "no_template_and_not_easy"
	ReasonHardKeyword        = "hard_keyword"
	ReasonTemplateTooHard    = "template_too_hard"
	ReasonLowConfidence      = "low_confidence"
	ReasonAdapterUnavailable = "adapter_unavailable"
	ReasonAdapterNotEasy     = "adapter_not_easy"
)

type ClassificationResult struct {
	Template        *Template // nil when no template matched
	Confidence      float64   // 0..1
	IsEasy          bool
	RejectionReason string
	Origin          Origin
}

type ScoreResult struct {
	Difficulty     int // 1..5
	Recommendation int // 1..5
}

// RankKey weighs recommendation twice as heavily as difficulty.
func (s ScoreResult) RankKey() int {
	return s.Recommendation*2 - s.Difficulty
}

// ScoredPosting is what leaves the pipeline for the notifier.
type ScoredPosting struct {
	Posting        Posting
	Fingerprint    string
	Classification ClassificationResult
	Score          ScoreResult
}
