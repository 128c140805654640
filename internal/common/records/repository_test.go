package records

import (
	"context"
	"encoding/json"
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

func newMockedRepository(t *testing.T) (*Repository, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := commonhttp.NewClient(time.Second)
	client.HTTPClient().Transport = transport
	cfg := ConfigFrom(config.RecordsConfig{BaseURL: "https://api.test/", APIKey: "k-1"})
	return NewRepository(cfg, client, logger.NewTestLogger(t)), transport
}

func TestRepository_Create(t *testing.T) {
	repo, transport := newMockedRepository(t)
	transport.RegisterResponder(http.MethodPost, "https://api.test/records/lost_reports",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer k-1", req.Header.Get("Authorization"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var body map[string]interface{}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			assert.Equal(t, "pet-1", body["petId"])
			return httpmock.NewJsonResponse(http.StatusCreated, map[string]interface{}{"id": "r-9", "petId": "pet-1"})
		})

	var out models.LostPetReport
	require.NoError(t, repo.Create(context.Background(), CollectionLostReports, models.LostPetReport{PetID: "pet-1"}, &out))
	assert.Equal(t, "r-9", out.ID)
}

func TestRepository_CreateFailure(t *testing.T) {
	repo, transport := newMockedRepository(t)
	transport.RegisterResponder(http.MethodPost, "https://api.test/records/lost_reports",
		httpmock.NewStringResponder(http.StatusInternalServerError, "db down"))

	err := repo.Create(context.Background(), CollectionLostReports, map[string]string{"a": "b"}, nil)
	assert.Equal(t, apperrors.ErrCodeRecordCreateFailed, apperrors.CodeOf(err))
}

func TestRepository_GetAndUpdate(t *testing.T) {
	repo, transport := newMockedRepository(t)
	transport.RegisterResponder(http.MethodGet, "https://api.test/records/lost_reports/r-1",
		httpmock.NewStringResponder(http.StatusOK, `{"id":"r-1","status":"open"}`))
	transport.RegisterResponder(http.MethodPatch, "https://api.test/records/lost_reports/r-1",
		httpmock.NewStringResponder(http.StatusOK, `{"id":"r-1","status":"resolved"}`))

	var got models.LostPetReport
	require.NoError(t, repo.Get(context.Background(), CollectionLostReports, "r-1", &got))
	assert.Equal(t, models.ReportStatusOpen, got.Status)

	require.NoError(t, repo.Update(context.Background(), CollectionLostReports, "r-1",
		map[string]string{"status": models.ReportStatusResolved}, &got))
	assert.Equal(t, models.ReportStatusResolved, got.Status)
}

func TestNotifier(t *testing.T) {
	repo, transport := newMockedRepository(t)
	transport.RegisterResponder(http.MethodPost, "https://api.test/records/notifications",
		httpmock.NewStringResponder(http.StatusCreated, `{}`))

	n := NewNotifier(repo)
	require.NoError(t, n.Notify(context.Background(), models.Notification{
		ID:          "n-1",
		RecipientID: "user-7",
		Type:        models.NotificationMatchFound,
	}))
	assert.Equal(t, 1, transport.GetTotalCallCount())

	err := n.Notify(context.Background(), models.Notification{Type: models.NotificationMatchFound})
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
}

func TestNotifier_DeliveryFailure(t *testing.T) {
	repo, transport := newMockedRepository(t)
	transport.RegisterResponder(http.MethodPost, "https://api.test/records/notifications",
		httpmock.NewStringResponder(http.StatusBadGateway, ""))

	err := NewNotifier(repo).Notify(context.Background(), models.Notification{RecipientID: "u", Type: "match_found"})
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, apperrors.CodeOf(err))
}
