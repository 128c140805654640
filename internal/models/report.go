// internal/models/report.go
package models

// LostPetReport is the record posted once a "last seen" location is chosen.
type LostPetReport struct {
	ID          string      `json:"id"`
	PetID       string      `json:"petId"`
	ReporterID  string      `json:"reporterId"`
	Description string      `json:"description,omitempty"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Address     string      `json:"address"`
	Source      SourceStage `json:"locationSource"`
	LastSeenAt  string      `json:"lastSeenAt"` // ISO 8601
	Status      string      `json:"status"`     // "open", "resolved"
	CreatedAt   string      `json:"createdAt"`
}

const (
	ReportStatusOpen     = "open"
	ReportStatusResolved = "resolved"
)
