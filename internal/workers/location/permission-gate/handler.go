// internal/workers/location/permission-gate/handler.go
package permissiongate

import (
	"context"
	"errors"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/logger"
	"petfinder/internal/models"
)

const (
	TaskType = "permission-gate"
)

// Gate answers "is this capability authorized" against the platform. It
// keeps no state: every call asks the platform again.
type Gate struct {
	config   *Config
	platform Platform
	logger   logger.Logger
}

func NewGate(config *Config, platform Platform, log logger.Logger) *Gate {
	if config == nil {
		config = LoadConfig()
	}
	return &Gate{
		config:   config,
		platform: platform,
		logger:   logger.ForComponent(log, TaskType),
	}
}

// Check queries the platform without prompting. Without a DenialReporter
// an ungranted capability is UNKNOWN.
func (g *Gate) Check(c models.Capability) models.PermissionState {
	if g.platform == nil {
		return models.PermissionDenied
	}
	if g.platform.IsGranted(c) {
		return models.PermissionGranted
	}
	if reporter, ok := g.platform.(DenialReporter); ok && reporter.PermanentlyDenied(c) {
		return models.PermissionDenied
	}
	return models.PermissionUnknown
}

// Request shows the consent UI exactly once. It never prompts when the
// capability is already granted.
func (g *Gate) Request(ctx context.Context, c models.Capability) (models.PermissionState, error) {
	if g.platform == nil {
		return models.PermissionDenied, apperrors.NewPermissionDeniedError(string(c))
	}
	if g.platform.IsGranted(c) {
		return models.PermissionGranted, nil
	}

	granted, err := g.platform.RequestPermission(ctx, c)
	if err != nil {
		g.logger.Warn("permission request failed", map[string]interface{}{
			"capability": string(c),
			"error":      err.Error(),
		})
		return models.PermissionUnknown, apperrors.NewUnknownError(err)
	}

	state := models.PermissionDenied
	if granted {
		state = models.PermissionGranted
	}
	g.logger.Info("permission decided", map[string]interface{}{
		"capability": string(c),
		"state":      string(state),
	})
	return state, nil
}

// Ensure checks and, when the capability is still grantable, requests it.
// DENIED is terminal for the interaction: the caller shows guidance
// instead of asking again.
func (g *Gate) Ensure(ctx context.Context, c models.Capability) (models.PermissionState, error) {
	switch g.Check(c) {
	case models.PermissionGranted:
		return models.PermissionGranted, nil
	case models.PermissionDenied:
		return models.PermissionDenied, apperrors.NewPermissionDeniedError(string(c))
	}

	if !g.config.AllowPrompt {
		return models.PermissionUnknown, apperrors.NewPermissionDeniedError(string(c))
	}

	state, err := g.Request(ctx, c)
	if err != nil {
		return state, err
	}
	if !state.Granted() {
		return state, apperrors.NewPermissionDeniedError(string(c))
	}
	return state, nil
}

// IsDenied reports whether err came from a refused capability.
func IsDenied(err error) bool {
	var stdErr *apperrors.StandardError
	return errors.As(err, &stdErr) && stdErr.Code == apperrors.ErrCodePermissionDenied
}
