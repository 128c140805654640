// internal/workers/location/permission-gate/models.go
package permissiongate

import (
	"context"

	"petfinder/internal/models"
)

// Platform is the native capability API, adapted per platform.
type Platform interface {
	IsGranted(c models.Capability) bool
	// RequestPermission shows the consent UI once and reports the decision.
	RequestPermission(ctx context.Context, c models.Capability) (bool, error)
}

// DenialReporter is implemented by platforms that can tell a permanent
// denial ("don't ask again") apart from a capability never requested.
type DenialReporter interface {
	PermanentlyDenied(c models.Capability) bool
}
