// internal/workers/matching/rank-matches/handler.go
package rankmatches

import (
	"context"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/logger"
	"petfinder/internal/models"
	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
)

const (
	TaskType = "rank-matches"
)

// Rank assigns 1-based ranks by input position. The service's order is
// authoritative and is never re-sorted. Empty input yields an empty,
// non-nil slice.
func Rank(candidates []models.CandidateMatch) []RankedMatch {
	return rankWith(candidates, classifyconfidence.Classify)
}

func rankWith(candidates []models.CandidateMatch, classify func(float64) classifyconfidence.Classification) []RankedMatch {
	ranked := make([]RankedMatch, 0, len(candidates))
	for i, c := range candidates {
		ranked = append(ranked, RankedMatch{
			Rank:       i + 1,
			Match:      c,
			Confidence: classify(c.Similarity),
		})
	}
	return ranked
}

// Summarize counts candidates per tier and picks the first as top.
func Summarize(ranked []RankedMatch) Summary {
	s := Summary{
		Total: len(ranked),
		ByTier: map[classifyconfidence.Tier]int{
			classifyconfidence.TierHigh:   0,
			classifyconfidence.TierMedium: 0,
			classifyconfidence.TierLow:    0,
		},
	}
	for _, r := range ranked {
		s.ByTier[r.Confidence.Tier]++
	}
	if len(ranked) > 0 {
		top := ranked[0]
		s.Top = &top
	}
	return s
}

type Handler struct {
	config     *Config
	classifier *classifyconfidence.Handler
	logger     logger.Logger
}

func NewHandler(config *Config, classifier *classifyconfidence.Handler, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if classifier == nil {
		classifier = classifyconfidence.NewHandler(nil, log)
	}
	return &Handler{
		config:     config,
		classifier: classifier,
		logger:     logger.ForComponent(log, TaskType),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Result == nil {
		return nil, apperrors.NewInvalidInputError("comparison result is required")
	}

	candidates := input.Result.Candidates
	if h.config.MaxDisplayed > 0 && len(candidates) > h.config.MaxDisplayed {
		candidates = candidates[:h.config.MaxDisplayed]
	}

	ranked := rankWith(candidates, h.classifier.Classify)
	summary := Summarize(ranked)
	summary.Total = len(input.Result.Candidates)

	h.logger.Debug("ranked candidates", map[string]interface{}{
		"total":     summary.Total,
		"displayed": len(ranked),
		"high":      summary.ByTier[classifyconfidence.TierHigh],
	})

	return &Output{
		Ranked:  ranked,
		Summary: summary,
		Overall: h.classifier.ClassifyWith(input.Result.Confidence, classifyconfidence.AlertPalette),
	}, nil
}
