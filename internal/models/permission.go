// internal/models/permission.go
package models

// Capability names a platform capability guarded by user consent.
type Capability string

const (
	CapabilityLocation Capability = "location"
	CapabilityCamera   Capability = "camera"
	CapabilityPhotos   Capability = "photos"
)

// PermissionState is re-read from the platform at every entry point and
// never cached beyond one interaction.
type PermissionState string

const (
	PermissionUnknown PermissionState = "UNKNOWN"
	PermissionGranted PermissionState = "GRANTED"
	PermissionDenied  PermissionState = "DENIED"
)

func (s PermissionState) Granted() bool { return s == PermissionGranted }
