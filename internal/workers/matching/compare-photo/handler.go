// internal/workers/matching/compare-photo/handler.go
package comparephoto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	apperrors "petfinder/internal/common/errors"
	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/observability"
	"petfinder/internal/common/validation"
	"petfinder/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TaskType    = "compare-photo"
	serviceName = "comparison"
	matchPath   = "/v1/pets/match"
)

var responseSchema = validation.MustCompile(matchResponseSchema)

// Handler is the HTTP client for the remote pet-photo comparison service.
type Handler struct {
	config   *Config
	client   *commonhttp.Client
	recorder observability.Recorder
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *Config, client *commonhttp.Client, recorder observability.Recorder, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}
	return &Handler{
		config:   config,
		client:   client,
		recorder: observability.OrNop(recorder),
		logger:   logger.ForComponent(log, TaskType),
		now:      time.Now,
	}
}

// Submit sends one image for comparison. It makes exactly one HTTP call.
func (h *Handler) Submit(ctx context.Context, img models.Image) (*models.ComparisonResult, error) {
	out, err := h.execute(ctx, &Input{Image: img})
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Image.IsEmpty() {
		return nil, apperrors.NewInvalidInputError("image is required")
	}
	if h.config.MaxImageBytes > 0 && int64(len(input.Image.Data)) > h.config.MaxImageBytes {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("image exceeds %d bytes", h.config.MaxImageBytes))
	}

	requestID := uuid.New().String()
	ctx, span := h.recorder.StartSpan(ctx, "comparison.submit",
		attribute.String("request.id", requestID),
		attribute.Int("image.bytes", len(input.Image.Data)),
	)
	defer span.End()

	start := h.now()
	result, err := h.submit(ctx, requestID, input.Image)
	status := "success"
	if err != nil {
		status = string(apperrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	h.recorder.RecordOperation(ctx, TaskType, status, h.now().Sub(start))

	log := h.logger.WithFields(map[string]interface{}{"requestId": requestID})
	if err != nil {
		log.Warn("comparison failed", map[string]interface{}{"code": status, "error": err.Error()})
		return nil, err
	}
	log.Info("comparison completed", map[string]interface{}{
		"matches":    len(result.Candidates),
		"confidence": result.Confidence,
	})
	return &Output{Result: result}, nil
}

func (h *Handler) submit(ctx context.Context, requestID string, img models.Image) (*models.ComparisonResult, error) {
	body, contentType, err := encodeImage(img)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	url := strings.TrimRight(h.config.BaseURL, "/") + matchPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, apperrors.NewUnknownError(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if h.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
	}

	raw, err := h.client.DoRaw(ctx, serviceName, req)
	if err != nil {
		var statusErr *commonhttp.StatusError
		if errors.As(err, &statusErr) {
			return nil, apperrors.NewComparisonRejectedError(statusErr.StatusCode, statusErr.Body)
		}
		return nil, err
	}

	return h.decode(requestID, raw)
}

func (h *Handler) decode(requestID string, raw []byte) (*models.ComparisonResult, error) {
	check, err := responseSchema.ValidateBytes(raw)
	if err != nil {
		return nil, apperrors.NewInvalidResponseError(serviceName, err)
	}
	if !check.Valid {
		return nil, apperrors.NewInvalidResponseError(serviceName, errors.New(check.Error()))
	}

	var resp matchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperrors.NewInvalidResponseError(serviceName, err)
	}

	candidates := make([]models.CandidateMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		candidates = append(candidates, models.NewCandidateMatch(m))
	}

	return &models.ComparisonResult{
		RequestID:          requestID,
		Candidates:         candidates,
		ReportedSimilarity: models.ClampScore(resp.OverallSimilarity),
		Confidence:         models.ClampScore(resp.Confidence),
		ReceivedAt:         h.now().UTC(),
	}, nil
}

func encodeImage(img models.Image) (*bytes.Buffer, string, error) {
	name := img.Name
	if name == "" {
		name = "photo.jpg"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
