// internal/workers/location/last-seen-location/models.go
package lastseenlocation

import (
	"context"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/models"
)

// Locator is satisfied by *acquirelocation.Acquirer.
type Locator interface {
	Acquire(ctx context.Context) (models.LocationFix, error)
	AcquireAt(ctx context.Context, coord models.Coordinate) models.LocationFix
}

type Camera struct {
	Center models.Coordinate `json:"center"`
	Zoom   float64           `json:"zoom"`
}

// Snapshot is what the "last seen" screen renders. Marker, Camera and
// AddressText always move together when a fix is applied. AddressText
// diverges from Fix.Address only after a manual edit.
type Snapshot struct {
	Fix         *models.LocationFix `json:"fix,omitempty"`
	AddressText string              `json:"addressText"`
	Marker      *models.Coordinate  `json:"marker,omitempty"`
	Camera      *Camera             `json:"camera,omitempty"`
	Edited      bool                `json:"edited"`
	Loading     bool                `json:"loading"`
	Message     string              `json:"message,omitempty"`
	ErrorCode   apperrors.ErrorCode `json:"errorCode,omitempty"`
}
