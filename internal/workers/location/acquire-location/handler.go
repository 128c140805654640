// internal/workers/location/acquire-location/handler.go
package acquirelocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/metrics"
	"petfinder/internal/common/observability"
	"petfinder/internal/models"
)

const (
	TaskType = "acquire-location"

	operationAcquireAt = "acquire-location-at"
)

// Geocode fallback reasons, used as metric labels.
const (
	fallbackUnsupported = "unsupported"
	fallbackError       = "error"
	fallbackEmpty       = "empty"
)

// Acquirer runs the location fallback chain: permission, service check,
// cached fix, fresh fix, reverse geocode. Stages run strictly one after
// another.
type Acquirer struct {
	config   *Config
	gate     PermissionGate
	status   ServiceStatus
	provider PositionProvider
	geocoder Geocoder
	recorder observability.Recorder
	logger   logger.Logger
	errs     *apperrors.ErrorHandler
	now      func() time.Time
}

func NewAcquirer(config *Config, deps Dependencies, log logger.Logger) *Acquirer {
	if config == nil {
		config = LoadConfig()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	componentLog := logger.ForComponent(log, TaskType)
	return &Acquirer{
		config:   config,
		gate:     deps.Gate,
		status:   deps.Status,
		provider: deps.Provider,
		geocoder: deps.Geocoder,
		recorder: observability.OrNop(deps.Recorder),
		logger:   componentLog,
		errs:     apperrors.NewErrorHandler(componentLog),
		now:      now,
	}
}

// Acquire produces a fix tagged CACHED or FRESH_GPS. Failures are always a
// *errors.StandardError with one of PERMISSION_DENIED, SERVICE_DISABLED,
// LOCATION_UNAVAILABLE, NETWORK_ERROR or UNKNOWN. A failed geocode is not
// a failure: the address falls back to the formatted coordinate.
func (a *Acquirer) Acquire(ctx context.Context) (fix models.LocationFix, err error) {
	start := a.now()
	ctx, span := a.recorder.StartSpan(ctx, "location.acquire")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewUnknownError(fmt.Errorf("location acquisition panicked: %v", r))
		}
		a.observe(ctx, fix, err, a.now().Sub(start))
	}()

	coord, source, err := a.position(ctx)
	if err != nil {
		return models.LocationFix{}, err
	}

	address := a.addressFor(ctx, coord)
	return models.NewLocationFix(coord, address, source, a.now().UTC()), nil
}

// AcquireAt resolves a map-tapped coordinate. It skips permission and
// provider stages and always succeeds.
func (a *Acquirer) AcquireAt(ctx context.Context, coord models.Coordinate) models.LocationFix {
	start := a.now()
	ctx, span := a.recorder.StartSpan(ctx, "location.acquire_at")
	defer span.End()

	address := a.addressFor(ctx, coord)
	fix := models.NewLocationFix(coord, address, models.SourceMapTap, a.now().UTC())

	metrics.LocationAcquisitions.WithLabelValues(string(models.SourceMapTap), "success").Inc()
	a.recorder.RecordOperation(ctx, operationAcquireAt, "success", a.now().Sub(start))
	return fix
}

func (a *Acquirer) position(ctx context.Context) (models.Coordinate, models.SourceStage, error) {
	if a.gate == nil {
		return models.Coordinate{}, "", apperrors.NewPermissionDeniedError(string(models.CapabilityLocation))
	}
	state, err := a.gate.Ensure(ctx, models.CapabilityLocation)
	if err != nil || !state.Granted() {
		return models.Coordinate{}, "", permissionFailure(err)
	}

	if a.status != nil {
		enabled, err := a.status.LocationServicesEnabled(ctx)
		if err != nil {
			return models.Coordinate{}, "", apperrors.NewUnknownError(err)
		}
		if !enabled {
			return models.Coordinate{}, "", apperrors.NewServiceDisabledError()
		}
	}

	if a.provider == nil {
		return models.Coordinate{}, "", apperrors.NewLocationUnavailableError(errors.New("no position provider"))
	}

	// A cached fix is accepted however old it is.
	cached, err := a.provider.LastKnown(ctx)
	switch {
	case err != nil:
		a.logger.Debug("last known position lookup failed", map[string]interface{}{"error": err.Error()})
	case cached != nil && cached.Valid():
		return *cached, models.SourceCached, nil
	}

	fresh, err := a.provider.Current(ctx, a.config.FreshPriority)
	if err != nil {
		return models.Coordinate{}, "", providerFailure(err)
	}
	if fresh == nil || !fresh.Valid() {
		return models.Coordinate{}, "", apperrors.NewLocationUnavailableError(nil)
	}
	return *fresh, models.SourceFreshGPS, nil
}

// addressFor never fails: any geocoding problem yields the coordinate string.
func (a *Acquirer) addressFor(ctx context.Context, coord models.Coordinate) string {
	if a.geocoder == nil || !a.geocoder.Supported() {
		metrics.GeocodeFallbacks.WithLabelValues(fallbackUnsupported).Inc()
		return coord.Format()
	}

	address, err := a.safeGeocode(ctx, coord)
	switch {
	case err != nil:
		metrics.GeocodeFallbacks.WithLabelValues(fallbackError).Inc()
		a.logger.Info("geocode failed, using coordinates", map[string]interface{}{
			"code":  string(apperrors.CodeOf(err)),
			"error": err.Error(),
		})
		return coord.Format()
	case address == "":
		metrics.GeocodeFallbacks.WithLabelValues(fallbackEmpty).Inc()
		return coord.Format()
	}
	return address
}

func (a *Acquirer) safeGeocode(ctx context.Context, coord models.Coordinate) (address string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geocoder panicked: %v", r)
		}
	}()
	return a.geocoder.ReverseGeocode(ctx, coord)
}

func (a *Acquirer) observe(ctx context.Context, fix models.LocationFix, err error, elapsed time.Duration) {
	stage, outcome := string(fix.Source), "success"
	if err != nil {
		stage, outcome = "none", string(a.errs.Resolve(TaskType, err).Code)
	} else {
		a.logger.Info("location acquired", map[string]interface{}{
			"source":   stage,
			"geocoded": fix.Geocoded(),
		})
	}
	metrics.LocationAcquisitions.WithLabelValues(stage, outcome).Inc()
	a.recorder.RecordOperation(ctx, TaskType, outcome, elapsed)
}

// permissionFailure keeps a platform error distinguishable from a refusal.
func permissionFailure(err error) error {
	if err == nil || apperrors.HasCode(err, apperrors.ErrCodePermissionDenied) {
		return apperrors.NewPermissionDeniedError(string(models.CapabilityLocation))
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return apperrors.NewUnknownError(err)
}

// providerFailure maps a fresh-fix error: transport problems surface as
// NETWORK_ERROR, typed errors pass through, anything else means no fix.
func providerFailure(err error) error {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	if apperrors.IsNetworkError(err) {
		return apperrors.NewNetworkError("position provider", err)
	}
	return apperrors.NewLocationUnavailableError(err)
}
