// internal/workers/matching/rank-matches/models.go
package rankmatches

import (
	"petfinder/internal/models"
	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
)

// RankedMatch pairs a candidate with its 1-based display rank.
type RankedMatch struct {
	Rank       int                               `json:"rank"`
	Match      models.CandidateMatch             `json:"match"`
	Confidence classifyconfidence.Classification `json:"confidence"`
}

// Summary aggregates a ranked list for the results banner.
type Summary struct {
	Total  int                             `json:"total"`
	Top    *RankedMatch                    `json:"top,omitempty"`
	ByTier map[classifyconfidence.Tier]int `json:"byTier"`
}

type Input struct {
	Result *models.ComparisonResult `json:"result"`
}

type Output struct {
	Ranked  []RankedMatch                     `json:"ranked"`
	Summary Summary                           `json:"summary"`
	Overall classifyconfidence.Classification `json:"overall"`
}
