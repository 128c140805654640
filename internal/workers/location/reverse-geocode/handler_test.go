package reversegeocode

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"petfinder/internal/common/config"
	apperrors "petfinder/internal/common/errors"
	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/logger"
	"petfinder/internal/models"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reverseURL = "https://geo.test/reverse"

var bengaluru = models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}

func newMockedGeocoder(t *testing.T, cfg *Config) (*Geocoder, *httpmock.MockTransport) {
	t.Helper()
	if cfg == nil {
		cfg = LoadConfig()
		cfg.BaseURL = "https://geo.test"
		cfg.RequestsPerSecond = 0
	}
	transport := httpmock.NewMockTransport()
	client := commonhttp.NewClient(time.Second)
	client.HTTPClient().Transport = transport
	return NewGeocoder(cfg, client, nil, logger.NewTestLogger(t)), transport
}

func TestReverseGeocode_ComposesShortAddress(t *testing.T) {
	g, transport := newMockedGeocoder(t, nil)
	transport.RegisterResponder(http.MethodGet, reverseURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "jsonv2", req.URL.Query().Get("format"))
		assert.Equal(t, "12.971600", req.URL.Query().Get("lat"))
		assert.Equal(t, "77.594600", req.URL.Query().Get("lon"))
		assert.Equal(t, "petfinder/1.0", req.Header.Get("User-Agent"))
		return httpmock.NewStringResponse(http.StatusOK, `{
			"display_name": "Mahatma Gandhi Road, Shivajinagar, Bengaluru, Karnataka, 560001, India",
			"address": {"road": "Mahatma Gandhi Road", "suburb": "Shivajinagar", "city": "Bengaluru", "country": "India"}
		}`), nil
	})

	address, err := g.ReverseGeocode(context.Background(), bengaluru)
	require.NoError(t, err)
	assert.Equal(t, "Mahatma Gandhi Road, Shivajinagar, Bengaluru", address)
}

func TestReverseGeocode_UserAgentStaysOnItsOwnRequests(t *testing.T) {
	cfg := LoadConfig()
	cfg.BaseURL = "https://geo.test"
	cfg.RequestsPerSecond = 0

	transport := httpmock.NewMockTransport()
	shared := commonhttp.NewClient(time.Second).WithUserAgent("petfinder-records/2")
	shared.HTTPClient().Transport = transport

	var agents []string
	record := func(req *http.Request) (*http.Response, error) {
		agents = append(agents, req.Header.Get("User-Agent"))
		return httpmock.NewStringResponse(http.StatusOK, `{"display_name": "Cubbon Park"}`), nil
	}
	transport.RegisterResponder(http.MethodGet, reverseURL, record)
	transport.RegisterResponder(http.MethodGet, "https://records.test/health", record)

	g := NewGeocoder(cfg, shared, nil, logger.NewTestLogger(t))
	_, err := g.ReverseGeocode(context.Background(), bengaluru)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://records.test/health", nil)
	require.NoError(t, err)
	resp, err := shared.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{cfg.UserAgent, "petfinder-records/2"}, agents)
}

func TestReverseGeocode_DisplayNameFallback(t *testing.T) {
	g, transport := newMockedGeocoder(t, nil)
	transport.RegisterResponder(http.MethodGet, reverseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"display_name": "Cubbon Park, Bengaluru"}`))

	address, err := g.ReverseGeocode(context.Background(), bengaluru)
	require.NoError(t, err)
	assert.Equal(t, "Cubbon Park, Bengaluru", address)
}

func TestReverseGeocode_NoResult(t *testing.T) {
	g, transport := newMockedGeocoder(t, nil)
	transport.RegisterResponder(http.MethodGet, reverseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"error": "Unable to geocode"}`))

	address, err := g.ReverseGeocode(context.Background(), models.Coordinate{Latitude: 0, Longitude: -30})
	require.NoError(t, err)
	assert.Empty(t, address)
}

func TestReverseGeocode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		want      apperrors.ErrorCode
	}{
		{"transport", httpmock.NewErrorResponder(errors.New("no route to host")), apperrors.ErrCodeNetwork},
		{"server", httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"), apperrors.ErrCodeServer},
		{"throttled", httpmock.NewStringResponder(http.StatusTooManyRequests, "slow down"), apperrors.ErrCodeInvalidResponse},
		{"garbage", httpmock.NewStringResponder(http.StatusOK, "<html>"), apperrors.ErrCodeInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, transport := newMockedGeocoder(t, nil)
			transport.RegisterResponder(http.MethodGet, reverseURL, tt.responder)

			address, err := g.ReverseGeocode(context.Background(), bengaluru)
			require.Error(t, err)
			assert.Empty(t, address)
			assert.Equal(t, tt.want, apperrors.CodeOf(err))
		})
	}
}

func TestReverseGeocode_MemoizesResults(t *testing.T) {
	g, transport := newMockedGeocoder(t, nil)
	transport.RegisterResponder(http.MethodGet, reverseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"display_name": "Cubbon Park"}`))

	for i := 0; i < 3; i++ {
		address, err := g.ReverseGeocode(context.Background(), bengaluru)
		require.NoError(t, err)
		assert.Equal(t, "Cubbon Park", address)
	}
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestReverseGeocode_ErrorsAreNotMemoized(t *testing.T) {
	g, transport := newMockedGeocoder(t, nil)
	transport.RegisterResponder(http.MethodGet, reverseURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))

	_, err := g.ReverseGeocode(context.Background(), bengaluru)
	require.Error(t, err)

	transport.RegisterResponder(http.MethodGet, reverseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"display_name": "Cubbon Park"}`))
	address, err := g.ReverseGeocode(context.Background(), bengaluru)
	require.NoError(t, err)
	assert.Equal(t, "Cubbon Park", address)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestReverseGeocode_RateLimitHonoursContext(t *testing.T) {
	cfg := LoadConfig()
	cfg.BaseURL = "https://geo.test"
	cfg.RequestsPerSecond = 0.001
	cfg.CacheTTL = 0
	g, transport := newMockedGeocoder(t, cfg)
	transport.RegisterResponder(http.MethodGet, reverseURL,
		httpmock.NewStringResponder(http.StatusOK, `{"display_name": "Cubbon Park"}`))

	_, err := g.ReverseGeocode(context.Background(), bengaluru)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.ReverseGeocode(ctx, bengaluru)
	assert.Equal(t, apperrors.ErrCodeNetwork, apperrors.CodeOf(err))
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestSupported(t *testing.T) {
	var nilGeocoder *Geocoder
	assert.False(t, nilGeocoder.Supported())

	cfg := ConfigFrom(config.GeocodingConfig{Enabled: false, BaseURL: "https://geo.test"})
	g := NewGeocoder(cfg, nil, nil, logger.NewNoOpLogger())
	assert.False(t, g.Supported())

	address, err := g.ReverseGeocode(context.Background(), bengaluru)
	assert.NoError(t, err)
	assert.Empty(t, address)
}

func TestReverseGeocode_InvalidCoordinate(t *testing.T) {
	g, _ := newMockedGeocoder(t, nil)
	_, err := g.ReverseGeocode(context.Background(), models.Coordinate{Latitude: 120})
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
}
