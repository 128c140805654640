// internal/workers/matching/classify-confidence/handler.go
package classifyconfidence

import (
	"context"
	"fmt"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/logger"
	"petfinder/internal/models"
)

const (
	TaskType = "classify-confidence"
)

var defaultHandler = &Handler{config: LoadConfig(), logger: logger.NewNoOpLogger()}

// Classify buckets score with the default boundaries and palette.
func Classify(score float64) Classification {
	return defaultHandler.ClassifyWith(score, DefaultPalette)
}

// ClassifyWith buckets score with the default boundaries and the given palette.
func ClassifyWith(score float64, palette Palette) Classification {
	return defaultHandler.ClassifyWith(score, palette)
}

// Clamp forces untrusted scores into [0,1]. NaN becomes 0.
func Clamp(score float64) float64 {
	return models.ClampScore(score)
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: logger.ForComponent(log, TaskType),
	}
}

func (h *Handler) Classify(score float64) Classification {
	return h.ClassifyWith(score, DefaultPalette)
}

// ClassifyWith is total over float64: out-of-range input is clamped first.
func (h *Handler) ClassifyWith(score float64, palette Palette) Classification {
	clamped := Clamp(score)
	if clamped != score {
		h.logger.Debug("score clamped", map[string]interface{}{
			"raw":     fmt.Sprint(score),
			"clamped": clamped,
		})
	}

	tier := TierLow
	switch {
	case clamped >= h.config.HighThreshold:
		tier = TierHigh
	case clamped >= h.config.MediumThreshold:
		tier = TierMedium
	}

	return Classification{
		Score: clamped,
		Tier:  tier,
		Color: palette.colorFor(tier),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input is required")
	}
	palette, ok := PaletteByName(input.Palette)
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown palette %q", input.Palette))
	}

	c := h.ClassifyWith(input.Score, palette)
	return &Output{
		Classification: c,
		Label:          fmt.Sprintf("%s match (%s)", c.Tier, c.Percent()),
	}, nil
}
