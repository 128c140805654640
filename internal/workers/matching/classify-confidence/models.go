// internal/workers/matching/classify-confidence/models.go
package classifyconfidence

import (
	"fmt"
	"math"
)

type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Color is a display token, resolved to a concrete color by the UI layer.
type Color string

const (
	ColorGreen  Color = "green"
	ColorAmber  Color = "amber"
	ColorOrange Color = "orange"
	ColorPurple Color = "purple"
)

// Palette maps tiers to colors. The low tier differs between the results
// list and the alert banner.
type Palette struct {
	Name   string
	High   Color
	Medium Color
	Low    Color
}

var (
	DefaultPalette = Palette{Name: "default", High: ColorGreen, Medium: ColorAmber, Low: ColorOrange}
	AlertPalette   = Palette{Name: "alert", High: ColorGreen, Medium: ColorAmber, Low: ColorPurple}
)

func (p Palette) colorFor(t Tier) Color {
	switch t {
	case TierHigh:
		return p.High
	case TierMedium:
		return p.Medium
	default:
		return p.Low
	}
}

// PaletteByName resolves "default" or "alert". Empty means default.
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "", DefaultPalette.Name:
		return DefaultPalette, true
	case AlertPalette.Name:
		return AlertPalette, true
	}
	return Palette{}, false
}

type Classification struct {
	Score float64 `json:"score"`
	Tier  Tier    `json:"tier"`
	Color Color   `json:"color"`
}

// Percent renders the clamped score as a whole percentage.
func (c Classification) Percent() string {
	return Percent(c.Score)
}

// Percent renders score as a whole percentage, truncated so the label
// never rounds up across a tier boundary ("79%" for 0.7999).
func Percent(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Floor(Clamp(score)*100+1e-9)))
}

type Input struct {
	Score   float64 `json:"score"`
	Palette string  `json:"palette,omitempty"` // "default" or "alert"
}

type Output struct {
	Classification
	Label string `json:"label"`
}
