// internal/models/match.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Placeholders rendered for optional candidate fields the service left empty.
const (
	PlaceholderName     = "Unnamed pet"
	PlaceholderSpecies  = "Unknown species"
	PlaceholderBreed    = "Breed unknown"
	PlaceholderOwner    = "Owner not listed"
	PlaceholderLocation = "Location not listed"
)

// ClampScore forces a similarity or confidence score into [0,1]. NaN becomes 0.
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// MatchID is the service's opaque candidate identifier. The service sends
// it either as a JSON string or a JSON number.
type MatchID string

func (id *MatchID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MatchID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("match id: expected string or number, got %s", string(data))
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = MatchID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = MatchID(n.String())
	return nil
}

// CandidateMatch is one possible identity match. Values are built once per
// comparison response and never mutated.
type CandidateMatch struct {
	ID                MatchID `json:"id"`
	Name              string  `json:"name,omitempty"`
	Species           string  `json:"species,omitempty"`
	Breed             string  `json:"breed,omitempty"`
	Owner             string  `json:"owner,omitempty"`
	LastKnownLocation string  `json:"location,omitempty"`
	PhotoURL          string  `json:"photoUrl,omitempty"`
	Similarity        float64 `json:"similarity"`
}

// NewCandidateMatch returns c with its similarity clamped into [0,1].
func NewCandidateMatch(c CandidateMatch) CandidateMatch {
	c.Similarity = ClampScore(c.Similarity)
	return c
}

func (c CandidateMatch) DisplayName() string     { return orPlaceholder(c.Name, PlaceholderName) }
func (c CandidateMatch) DisplaySpecies() string  { return orPlaceholder(c.Species, PlaceholderSpecies) }
func (c CandidateMatch) DisplayBreed() string    { return orPlaceholder(c.Breed, PlaceholderBreed) }
func (c CandidateMatch) DisplayOwner() string    { return orPlaceholder(c.Owner, PlaceholderOwner) }
func (c CandidateMatch) DisplayLocation() string { return orPlaceholder(c.LastKnownLocation, PlaceholderLocation) }

// HasPhoto reports whether a photo reference is available.
func (c CandidateMatch) HasPhoto() bool { return c.PhotoURL != "" }

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

// ComparisonResult is the outcome of one successful submission.
//
// Confidence is the service's aggregate and ReportedSimilarity its own
// overall figure. Neither is assumed equal to BestSimilarity.
type ComparisonResult struct {
	RequestID          string           `json:"requestId,omitempty"`
	Candidates         []CandidateMatch `json:"matches"`
	ReportedSimilarity float64          `json:"overallSimilarity"`
	Confidence         float64          `json:"confidence"`
	ReceivedAt         time.Time        `json:"receivedAt"`
}

// HasMatches reports whether the service returned any candidate.
func (r *ComparisonResult) HasMatches() bool {
	return r != nil && len(r.Candidates) > 0
}

// BestSimilarity is the first candidate's similarity, 0 when there are none.
func (r *ComparisonResult) BestSimilarity() float64 {
	if !r.HasMatches() {
		return 0
	}
	return r.Candidates[0].Similarity
}

// Image is a captured or picked photo ready for submission.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsEmpty reports whether there is nothing to submit.
func (i Image) IsEmpty() bool {
	return len(i.Data) == 0
}
