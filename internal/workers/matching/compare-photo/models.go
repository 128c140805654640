// internal/workers/matching/compare-photo/models.go
package comparephoto

import "petfinder/internal/models"

// matchResponse is the wire shape of POST /v1/pets/match.
type matchResponse struct {
	Matches           []models.CandidateMatch `json:"matches"`
	OverallSimilarity float64                 `json:"overallSimilarity"`
	Confidence        float64                 `json:"confidence"`
}

const matchResponseSchema = `{
  "type": "object",
  "required": ["matches"],
  "properties": {
    "matches": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "similarity"],
        "properties": {
          "id": {"type": ["string", "number"]},
          "name": {"type": ["string", "null"]},
          "species": {"type": ["string", "null"]},
          "breed": {"type": ["string", "null"]},
          "owner": {"type": ["string", "null"]},
          "location": {"type": ["string", "null"]},
          "photoUrl": {"type": ["string", "null"]},
          "similarity": {"type": "number"}
        }
      }
    },
    "overallSimilarity": {"type": "number"},
    "confidence": {"type": "number"}
  }
}`

type Input struct {
	Image models.Image
}

type Output struct {
	Result *models.ComparisonResult `json:"result"`
}
