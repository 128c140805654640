// internal/common/records/repository.go
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petfinder/internal/common/config"
	apperrors "petfinder/internal/common/errors"
	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/logger"
)

const serviceName = "records"

// Collections used by this module.
const (
	CollectionLostReports   = "lost_reports"
	CollectionNotifications = "notifications"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func ConfigFrom(c config.RecordsConfig) *Config {
	cfg := &Config{
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
		Timeout: 15 * time.Second,
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	return cfg
}

// Repository is the generic record store of the backend: create, read and
// update entities over HTTP.
type Repository struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewRepository(cfg *Config, client *commonhttp.Client, log logger.Logger) *Repository {
	if cfg == nil {
		cfg = &Config{Timeout: 15 * time.Second}
	}
	if client == nil {
		client = commonhttp.NewClient(cfg.Timeout)
	}
	return &Repository{
		config: cfg,
		client: client,
		logger: logger.ForComponent(log, "records"),
	}
}

// Create posts record to collection. out, when non-nil, receives the
// stored record as returned by the backend.
func (r *Repository) Create(ctx context.Context, collection string, record, out interface{}) error {
	req, err := r.newRequest(ctx, http.MethodPost, r.endpoint(collection), record)
	if err != nil {
		return apperrors.NewRecordCreateFailedError(collection, err)
	}
	if err := r.client.DoJSON(ctx, serviceName, req, out); err != nil {
		r.logger.Warn("record create failed", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		return apperrors.NewRecordCreateFailedError(collection, err)
	}
	r.logger.Debug("record created", map[string]interface{}{"collection": collection})
	return nil
}

// Get reads one record by id into out.
func (r *Repository) Get(ctx context.Context, collection, id string, out interface{}) error {
	req, err := r.newRequest(ctx, http.MethodGet, r.endpoint(collection, id), nil)
	if err != nil {
		return apperrors.NewUnknownError(err)
	}
	return r.client.DoJSON(ctx, serviceName, req, out)
}

// Update patches the record with fields and decodes the result into out.
func (r *Repository) Update(ctx context.Context, collection, id string, fields, out interface{}) error {
	req, err := r.newRequest(ctx, http.MethodPatch, r.endpoint(collection, id), fields)
	if err != nil {
		return apperrors.NewUnknownError(err)
	}
	return r.client.DoJSON(ctx, serviceName, req, out)
}

func (r *Repository) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.TrimRight(r.config.BaseURL, "/") + "/records/" + strings.Join(escaped, "/")
}

func (r *Repository) newRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.config.APIKey)
	}
	return req, nil
}
