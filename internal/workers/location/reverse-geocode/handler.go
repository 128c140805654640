// internal/workers/location/reverse-geocode/handler.go
package reversegeocode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "petfinder/internal/common/errors"
	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/observability"
	"petfinder/internal/models"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	TaskType    = "reverse-geocode"
	serviceName = "geocoding"
)

// Geocoder resolves coordinates to a one-line address against a
// Nominatim-compatible /reverse endpoint. Results are memoized in memory
// for the life of the process only.
type Geocoder struct {
	config   *Config
	client   *commonhttp.Client
	limiter  *rate.Limiter
	memo     *cache.Cache
	recorder observability.Recorder
	logger   logger.Logger
}

func NewGeocoder(config *Config, client *commonhttp.Client, recorder observability.Recorder, log logger.Logger) *Geocoder {
	if config == nil {
		config = LoadConfig()
	}
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	g := &Geocoder{
		config:   config,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		recorder: observability.OrNop(recorder),
		logger:   logger.ForComponent(log, TaskType),
	}
	if config.CacheTTL > 0 {
		g.memo = cache.New(config.CacheTTL, config.CacheTTL*2)
	}
	return g
}

// Supported reports whether a geocoder is available at all. Callers fall
// back to formatted coordinates when it is not.
func (g *Geocoder) Supported() bool {
	return g != nil && g.config.Enabled && g.config.BaseURL != ""
}

// ReverseGeocode returns the address line for coord. An empty string with
// a nil error means the service had no result.
func (g *Geocoder) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	if !g.Supported() {
		return "", nil
	}
	if !coord.Valid() {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("coordinate out of range: %s", coord.Format()))
	}

	key := g.memoKey(coord)
	if g.memo != nil {
		if cached, found := g.memo.Get(key); found {
			if address, ok := cached.(string); ok {
				g.logger.Debug("geocode cache hit", map[string]interface{}{"key": key})
				return address, nil
			}
		}
	}

	ctx, span := g.recorder.StartSpan(ctx, "geocoding.reverse",
		attribute.Float64("lat", coord.Latitude),
		attribute.Float64("lng", coord.Longitude),
	)
	defer span.End()

	start := time.Now()
	address, err := g.lookup(ctx, coord)
	status := "success"
	switch {
	case err != nil:
		status = string(apperrors.CodeOf(err))
		span.RecordError(err)
	case address == "":
		status = "no_result"
	}
	g.recorder.RecordOperation(ctx, TaskType, status, time.Since(start))

	if err != nil {
		g.logger.Warn("reverse geocode failed", map[string]interface{}{
			"code":  status,
			"error": err.Error(),
		})
		return "", err
	}

	if g.memo != nil {
		g.memo.Set(key, address, cache.DefaultExpiration)
	}
	return address, nil
}

func (g *Geocoder) lookup(ctx context.Context, coord models.Coordinate) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", apperrors.NewNetworkError(serviceName, err)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', 6, 64))
	q.Set("zoom", strconv.Itoa(g.config.Zoom))
	q.Set("addressdetails", "1")

	endpoint := strings.TrimRight(g.config.BaseURL, "/") + "/reverse?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", apperrors.NewUnknownError(err)
	}
	req.Header.Set("Accept", "application/json")
	if g.config.UserAgent != "" {
		req.Header.Set("User-Agent", g.config.UserAgent)
	}
	if g.config.Language != "" {
		req.Header.Set("Accept-Language", g.config.Language)
	}

	var resp reverseResponse
	if err := g.client.DoJSON(ctx, serviceName, req, &resp); err != nil {
		var statusErr *commonhttp.StatusError
		if errors.As(err, &statusErr) {
			return "", apperrors.NewInvalidResponseError(serviceName, statusErr)
		}
		return "", err
	}

	if resp.Error != "" {
		return "", nil
	}
	if line := resp.Address.line(); line != "" {
		return line, nil
	}
	return strings.TrimSpace(resp.DisplayName), nil
}

// memoKey rounds to five decimals, roughly one metre.
func (g *Geocoder) memoKey(coord models.Coordinate) string {
	return fmt.Sprintf("%s:%.5f,%.5f", g.config.Language, coord.Latitude, coord.Longitude)
}
