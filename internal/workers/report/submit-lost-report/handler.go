// internal/workers/report/submit-lost-report/handler.go
package submitlostreport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/observability"
	"petfinder/internal/common/records"
	"petfinder/internal/common/validation"
	"petfinder/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "submit-lost-report"
)

var compiledReportSchema = validation.MustCompile(reportSchema)

// Handler turns a chosen "last seen" fix into a lost-pet report record.
type Handler struct {
	config   *Config
	store    RecordStore
	notifier Notifier
	recorder observability.Recorder
	logger   logger.Logger
	now      func() time.Time

	pending sync.WaitGroup
}

func NewHandler(config *Config, store RecordStore, notifier Notifier, recorder observability.Recorder, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config:   config,
		store:    store,
		notifier: notifier,
		recorder: observability.OrNop(recorder),
		logger:   logger.ForComponent(log, TaskType),
		now:      time.Now,
	}
}

// Execute validates and stores the report. The confirmation notification
// is detached: its failure is logged and never returned.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := h.now()
	ctx, span := h.recorder.StartSpan(ctx, "report.submit")
	defer span.End()

	out, err := h.execute(ctx, input)

	status := "success"
	if err != nil {
		status = string(apperrors.CodeOf(err))
		h.logger.Error("lost report not created", map[string]interface{}{
			"code":  status,
			"error": err.Error(),
		})
	}
	h.recorder.RecordOperation(ctx, TaskType, status, h.now().Sub(start))
	return out, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	report, err := h.buildReport(input)
	if err != nil {
		return nil, err
	}

	result, err := compiledReportSchema.ValidateValue(report)
	if err != nil {
		return nil, apperrors.NewUnknownError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}

	if h.store == nil {
		return nil, apperrors.NewRecordCreateFailedError(records.CollectionLostReports, errors.New("no record store"))
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	stored := report
	if err := h.store.Create(ctx, records.CollectionLostReports, report, &stored); err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeRecordCreateFailed) {
			return nil, err
		}
		return nil, apperrors.NewRecordCreateFailedError(records.CollectionLostReports, err)
	}
	// some backends answer 201 with an empty body
	if stored.ID == "" {
		stored = report
	}

	h.logger.Info("lost report created", map[string]interface{}{
		"reportId": stored.ID,
		"petId":    stored.PetID,
		"source":   string(stored.Source),
	})

	h.confirm(stored)

	return &Output{Report: stored, CreatedAt: stored.CreatedAt}, nil
}

func (h *Handler) buildReport(input *Input) (models.LostPetReport, error) {
	if input == nil {
		return models.LostPetReport{}, apperrors.NewInvalidInputError("input is required")
	}
	var missing []string
	if strings.TrimSpace(input.PetID) == "" {
		missing = append(missing, "petId")
	}
	if h.config.ReporterID == "" {
		missing = append(missing, "reporterId")
	}
	if input.Fix == nil {
		missing = append(missing, "fix")
	}
	if len(missing) > 0 {
		return models.LostPetReport{}, apperrors.NewInvalidInputError("missing " + strings.Join(missing, ", "))
	}

	fix := *input.Fix
	lastSeen := input.LastSeenAt
	if lastSeen.IsZero() {
		lastSeen = fix.AcquiredAt
	}
	if lastSeen.IsZero() {
		lastSeen = h.now()
	}

	address := fix.Address
	if address == "" {
		address = fix.Coordinate.Format()
	}

	return models.LostPetReport{
		ID:          uuid.New().String(),
		PetID:       strings.TrimSpace(input.PetID),
		ReporterID:  h.config.ReporterID,
		Description: strings.TrimSpace(input.Description),
		Latitude:    fix.Coordinate.Latitude,
		Longitude:   fix.Coordinate.Longitude,
		Address:     address,
		Source:      fix.Source,
		LastSeenAt:  lastSeen.UTC().Format(time.RFC3339),
		Status:      models.ReportStatusOpen,
		CreatedAt:   h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) confirm(report models.LostPetReport) {
	if !h.config.NotifyReporter || h.notifier == nil {
		return
	}

	n := models.Notification{
		ID:          uuid.New().String(),
		RecipientID: report.ReporterID,
		Type:        models.NotificationLostReportCreated,
		Title:       "Lost pet report posted",
		Body:        fmt.Sprintf("Last seen near %s.", report.Address),
		Payload: map[string]interface{}{
			"reportId": report.ID,
			"petId":    report.PetID,
		},
		CreatedAt: report.CreatedAt,
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.config.NotifyTimeout)
		defer cancel()
		if err := h.notifier.Notify(ctx, n); err != nil {
			h.logger.Warn("report confirmation not delivered", map[string]interface{}{
				"reportId": report.ID,
				"code":     string(apperrors.CodeOf(err)),
				"error":    err.Error(),
			})
		}
	}()
}

// Wait blocks until detached notifications have finished.
func (h *Handler) Wait() {
	h.pending.Wait()
}
