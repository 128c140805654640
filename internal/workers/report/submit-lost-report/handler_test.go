package submitlostreport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"petfinder/internal/common/config"
	apperrors "petfinder/internal/common/errors"
	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/records"
	"petfinder/internal/models"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Doubles
// ==========================

type memoryStore struct {
	mu      sync.Mutex
	created []models.LostPetReport
	err     error
}

func (s *memoryStore) Create(_ context.Context, collection string, record, _ interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, record.(models.LostPetReport))
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

var fixedNow = time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

func tappedFix() *models.LocationFix {
	fix := models.NewLocationFix(models.Coordinate{Latitude: 12.9716, Longitude: 77.5946},
		"Cubbon Park, Bengaluru", models.SourceMapTap, fixedNow.Add(-time.Hour))
	return &fix
}

func newTestHandler(t *testing.T, store RecordStore, notifier Notifier) *Handler {
	t.Helper()
	cfg := LoadConfig()
	cfg.ReporterID = "user-7"
	h := NewHandler(cfg, store, notifier, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	t.Cleanup(h.Wait)
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute_CreatesReportAndConfirms(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{}
	h := newTestHandler(t, store, notifier)

	out, err := h.Execute(context.Background(), &Input{
		PetID:       " pet-42 ",
		Description: "Brown beagle, red collar",
		Fix:         tappedFix(),
	})
	require.NoError(t, err)
	h.Wait()

	require.Len(t, store.created, 1)
	report := store.created[0]
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "pet-42", report.PetID)
	assert.Equal(t, "user-7", report.ReporterID)
	assert.Equal(t, "Cubbon Park, Bengaluru", report.Address)
	assert.Equal(t, models.SourceMapTap, report.Source)
	assert.Equal(t, "2024-03-09T17:30:00Z", report.LastSeenAt)
	assert.Equal(t, models.ReportStatusOpen, report.Status)
	assert.Equal(t, report.ID, out.Report.ID)
	assert.Equal(t, "2024-03-09T18:30:00Z", out.CreatedAt)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.NotificationLostReportCreated, notifier.sent[0].Type)
	assert.Equal(t, "user-7", notifier.sent[0].RecipientID)
	assert.Equal(t, report.ID, notifier.sent[0].Payload["reportId"])
}

func TestExecute_ExplicitLastSeenAt(t *testing.T) {
	store := &memoryStore{}
	h := newTestHandler(t, store, nil)

	seen := time.Date(2024, 3, 8, 7, 0, 0, 0, time.FixedZone("IST", 19800))
	_, err := h.Execute(context.Background(), &Input{PetID: "p", Fix: tappedFix(), LastSeenAt: seen})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08T01:30:00Z", store.created[0].LastSeenAt)
}

func TestExecute_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		reporter string
		input    *Input
	}{
		{"nil input", "user-7", nil},
		{"no pet", "user-7", &Input{Fix: tappedFix()}},
		{"no fix", "user-7", &Input{PetID: "p"}},
		{"no caller", "", &Input{PetID: "p", Fix: tappedFix()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			h := newTestHandler(t, store, nil)
			h.config.ReporterID = tt.reporter

			_, err := h.Execute(context.Background(), tt.input)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
			assert.Empty(t, store.created)
		})
	}
}

func TestExecute_RejectsOutOfRangeFix(t *testing.T) {
	store := &memoryStore{}
	h := newTestHandler(t, store, nil)

	fix := models.NewLocationFix(models.Coordinate{Latitude: 95, Longitude: 10}, "", models.SourceMapTap, fixedNow)
	_, err := h.Execute(context.Background(), &Input{PetID: "p", Fix: &fix})

	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	assert.Empty(t, store.created)
}

func TestExecute_StoreFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestHandler(t, &memoryStore{err: errors.New("disk full")}, notifier)

	_, err := h.Execute(context.Background(), &Input{PetID: "p", Fix: tappedFix()})
	h.Wait()

	assert.Equal(t, apperrors.ErrCodeRecordCreateFailed, apperrors.CodeOf(err))
	assert.Empty(t, notifier.sent)
}

func TestExecute_NotificationFailureIsNotAnError(t *testing.T) {
	notifier := &recordingNotifier{err: apperrors.NewNotificationSendFailedError(models.NotificationLostReportCreated, nil)}
	h := newTestHandler(t, &memoryStore{}, notifier)

	_, err := h.Execute(context.Background(), &Input{PetID: "p", Fix: tappedFix()})
	h.Wait()

	require.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
}

// ==========================
// Against the HTTP record repository
// ==========================

func TestExecute_ThroughRecordRepository(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := commonhttp.NewClient(time.Second)
	client.HTTPClient().Transport = transport
	repo := records.NewRepository(records.ConfigFrom(config.RecordsConfig{BaseURL: "https://api.test"}), client, logger.NewNoOpLogger())

	transport.RegisterResponder(http.MethodPost, "https://api.test/records/lost_reports",
		func(req *http.Request) (*http.Response, error) {
			var body map[string]interface{}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			body["id"] = "server-1"
			return httpmock.NewJsonResponse(http.StatusCreated, body)
		})
	transport.RegisterResponder(http.MethodPost, "https://api.test/records/notifications",
		httpmock.NewStringResponder(http.StatusCreated, `{}`))

	h := newTestHandler(t, repo, records.NewNotifier(repo))
	out, err := h.Execute(context.Background(), &Input{PetID: "pet-42", Fix: tappedFix()})
	require.NoError(t, err)
	h.Wait()

	assert.Equal(t, "server-1", out.Report.ID)
	info := transport.GetCallCountInfo()
	assert.Equal(t, 1, info["POST https://api.test/records/lost_reports"])
	assert.Equal(t, 1, info["POST https://api.test/records/notifications"])
}

func TestExecute_RepositoryServerError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := commonhttp.NewClient(time.Second)
	client.HTTPClient().Transport = transport
	repo := records.NewRepository(records.ConfigFrom(config.RecordsConfig{BaseURL: "https://api.test"}), client, logger.NewNoOpLogger())

	transport.RegisterResponder(http.MethodPost, "https://api.test/records/lost_reports",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "maintenance"))

	h := newTestHandler(t, repo, records.NewNotifier(repo))
	_, err := h.Execute(context.Background(), &Input{PetID: "pet-42", Fix: tappedFix()})

	assert.Equal(t, apperrors.ErrCodeRecordCreateFailed, apperrors.CodeOf(err))
	assert.Equal(t, apperrors.MessageFor(apperrors.ErrCodeRecordCreateFailed), apperrors.UserMessage(err))
}
