// internal/workers/location/acquire-location/models.go
package acquirelocation

import (
	"context"
	"time"

	"petfinder/internal/common/observability"
	"petfinder/internal/models"
)

type Priority string

const (
	PriorityHighAccuracy Priority = "HIGH_ACCURACY"
	PriorityBalanced     Priority = "BALANCED"
)

// PermissionGate is satisfied by *permissiongate.Gate.
type PermissionGate interface {
	Ensure(ctx context.Context, c models.Capability) (models.PermissionState, error)
}

// ServiceStatus reports whether the device location service is on at all,
// independent of app permission.
type ServiceStatus interface {
	LocationServicesEnabled(ctx context.Context) (bool, error)
}

// PositionProvider is the platform fused-location API. A nil coordinate
// with a nil error means "no fix".
type PositionProvider interface {
	LastKnown(ctx context.Context) (*models.Coordinate, error)
	Current(ctx context.Context, priority Priority) (*models.Coordinate, error)
}

// Geocoder is satisfied by *reversegeocode.Geocoder. An empty address with
// a nil error means no result.
type Geocoder interface {
	Supported() bool
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)
}

type Dependencies struct {
	Gate     PermissionGate
	Status   ServiceStatus
	Provider PositionProvider
	Geocoder Geocoder
	Recorder observability.Recorder
	Clock    func() time.Time
}
