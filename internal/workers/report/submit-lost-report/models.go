// internal/workers/report/submit-lost-report/models.go
package submitlostreport

import (
	"context"
	"time"

	"petfinder/internal/models"
)

// RecordStore creates backend records.
type RecordStore interface {
	Create(ctx context.Context, collection string, record, out interface{}) error
}

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

type Input struct {
	PetID       string              `json:"petId"`
	Description string              `json:"description,omitempty"`
	Fix         *models.LocationFix `json:"fix"`
	// LastSeenAt defaults to the fix time when zero.
	LastSeenAt time.Time `json:"lastSeenAt,omitempty"`
}

type Output struct {
	Report    models.LostPetReport `json:"report"`
	CreatedAt string               `json:"createdAt"` // ISO 8601
}

// reportSchema guards the record before it leaves the client.
const reportSchema = `{
  "type": "object",
  "required": ["id", "petId", "reporterId", "latitude", "longitude", "address", "locationSource", "lastSeenAt", "status"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "petId": {"type": "string", "minLength": 1},
    "reporterId": {"type": "string", "minLength": 1},
    "description": {"type": "string", "maxLength": 2000},
    "latitude": {"type": "number", "minimum": -90, "maximum": 90},
    "longitude": {"type": "number", "minimum": -180, "maximum": 180},
    "address": {"type": "string", "minLength": 1},
    "locationSource": {"enum": ["CACHED", "FRESH_GPS", "MAP_TAP"]},
    "lastSeenAt": {"type": "string", "minLength": 1},
    "status": {"enum": ["open", "resolved"]}
  }
}`
