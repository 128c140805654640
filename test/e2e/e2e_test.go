// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfinder/internal/common/config"
	commonhttp "petfinder/internal/common/http"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/records"
	"petfinder/internal/models"

	acquirelocation "petfinder/internal/workers/location/acquire-location"
	lastseenlocation "petfinder/internal/workers/location/last-seen-location"
	permissiongate "petfinder/internal/workers/location/permission-gate"
	reversegeocode "petfinder/internal/workers/location/reverse-geocode"

	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
	comparephoto "petfinder/internal/workers/matching/compare-photo"
	rankmatches "petfinder/internal/workers/matching/rank-matches"
	submitphotomatch "petfinder/internal/workers/matching/submit-photo-match"

	submitlostreport "petfinder/internal/workers/report/submit-lost-report"
)

// ==========================
// 1. Fake Backends
// ==========================

// backend stands in for the comparison service, the geocoder and the
// record store on one httptest server.
type backend struct {
	server *httptest.Server

	mu      sync.Mutex
	records map[string][]map[string]interface{}
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{records: make(map[string][]map[string]interface{})}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/pets/match", b.handleMatch)
	mux.HandleFunc("/reverse", b.handleReverse)
	mux.HandleFunc("/records/", b.handleRecord)

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) handleMatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image part missing", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	// the file name selects the scenario
	switch header.Filename {
	case "stranger.jpg":
		writeJSON(w, http.StatusOK, map[string]interface{}{"matches": []interface{}{}, "confidence": 0.1})
	case "blurry.jpg":
		http.Error(w, "unprocessable image", http.StatusUnprocessableEntity)
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"matches": []map[string]interface{}{
				{"id": 101, "name": "Bruno", "species": "Dog", "breed": "Beagle", "location": "Indiranagar", "similarity": 0.93},
				{"id": "p-7", "name": "Kaalu", "species": "Dog", "similarity": 0.71},
				{"id": "p-9", "similarity": 0.42},
			},
			"overallSimilarity": 0.81,
			"confidence":        0.55,
			"bytes":             len(data),
		})
	}
}

func (b *backend) handleReverse(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("lat") == "0.000000" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": "Unable to geocode"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"display_name": "Cubbon Park, Bengaluru, Karnataka, India",
		"address": map[string]interface{}{
			"road":   "Kasturba Road",
			"suburb": "Sampangi Rama Nagar",
			"city":   "Bengaluru",
		},
	})
}

func (b *backend) handleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	collection := filepath.Base(r.URL.Path)

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.records[collection] = append(b.records[collection], body)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, body)
}

func (b *backend) stored(collection string) []map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]interface{}(nil), b.records[collection]...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ==========================
// 2. Config + Wiring
// ==========================

func loadConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	yaml := fmt.Sprintf(`
app:
  name: petfinder-e2e
logging:
  level: debug
  format: console
session:
  caller_id: user-e2e
comparison:
  base_url: %[1]s
  api_key: test-key
  timeout: 5000
geocoding:
  enabled: true
  base_url: %[1]s
  requests_per_second: 50
  cache_ttl: 0
location:
  map_zoom: 17
records:
  base_url: %[1]s
  timeout: 5000
`, baseURL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	return cfg
}

type grantedPlatform struct{}

func (grantedPlatform) IsGranted(models.Capability) bool { return true }

func (grantedPlatform) RequestPermission(context.Context, models.Capability) (bool, error) {
	return true, nil
}

type enabledServices struct{}

func (enabledServices) LocationServicesEnabled(context.Context) (bool, error) { return true, nil }

type gpsOnly struct{ fix models.Coordinate }

func (gpsOnly) LastKnown(context.Context) (*models.Coordinate, error) { return nil, nil }

func (g gpsOnly) Current(context.Context, acquirelocation.Priority) (*models.Coordinate, error) {
	c := g.fix
	return &c, nil
}

func newWorkflow(t *testing.T, cfg *config.Config, log logger.Logger) *submitphotomatch.Workflow {
	t.Helper()
	compareCfg := comparephoto.ConfigFrom(cfg.Comparison)
	compare := comparephoto.NewHandler(compareCfg, commonhttp.NewClient(compareCfg.Timeout), nil, log)
	ranker := rankmatches.NewHandler(nil, classifyconfidence.NewHandler(nil, log), log)
	repo := records.NewRepository(records.ConfigFrom(cfg.Records), nil, log)

	w := submitphotomatch.NewWorkflow(submitphotomatch.ConfigFrom(cfg), submitphotomatch.Dependencies{
		Service:  compare,
		Ranker:   ranker,
		Notifier: records.NewNotifier(repo),
	}, log)
	t.Cleanup(w.Close)
	return w
}

func newAcquirer(cfg *config.Config, log logger.Logger) *acquirelocation.Acquirer {
	geoCfg := reversegeocode.ConfigFrom(cfg.Geocoding)
	geocoder := reversegeocode.NewGeocoder(geoCfg, commonhttp.NewClient(geoCfg.Timeout), nil, log)

	return acquirelocation.NewAcquirer(nil, acquirelocation.Dependencies{
		Gate:     permissiongate.NewGate(nil, grantedPlatform{}, log),
		Status:   enabledServices{},
		Provider: gpsOnly{fix: models.Coordinate{Latitude: 12.9763, Longitude: 77.5929}},
		Geocoder: geocoder,
	}, log)
}

func awaitTerminal(t *testing.T, w *submitphotomatch.Workflow) submitphotomatch.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return w.Snapshot().State.Terminal() }, 5*time.Second, 10*time.Millisecond)
	return w.Snapshot()
}

// ==========================
// 3. Photo Match Flow
// ==========================

func TestE2E_PhotoMatchFlow(t *testing.T) {
	b := newBackend(t)
	cfg := loadConfig(t, b.server.URL)
	log := logger.NewTestLogger(t)

	w := newWorkflow(t, cfg, log)
	require.NoError(t, w.BeginCapture())
	require.NoError(t, w.SelectImage(models.Image{Name: "bruno.jpg", ContentType: "image/jpeg", Data: []byte("\xff\xd8\xff")}))

	snap := awaitTerminal(t, w)
	require.Equal(t, submitphotomatch.StateResultReady, snap.State)
	require.Len(t, snap.Ranked, 3)

	assert.Equal(t, "101", string(snap.Ranked[0].Match.ID))
	assert.Equal(t, classifyconfidence.TierHigh, snap.Ranked[0].Confidence.Tier)
	assert.Equal(t, classifyconfidence.TierMedium, snap.Ranked[1].Confidence.Tier)
	assert.Equal(t, classifyconfidence.TierLow, snap.Ranked[2].Confidence.Tier)
	assert.Equal(t, models.PlaceholderName, snap.Ranked[2].Match.DisplayName())

	// overall confidence and best similarity stay distinct
	assert.InDelta(t, 0.55, snap.Result.Confidence, 1e-9)
	assert.InDelta(t, 0.93, snap.Result.BestSimilarity(), 1e-9)
	assert.InDelta(t, 0.81, snap.Result.ReportedSimilarity, 1e-9)
	assert.Equal(t, classifyconfidence.ColorPurple, snap.Overall.Color)

	require.Eventually(t, func() bool { return len(b.stored(records.CollectionNotifications)) == 1 },
		2*time.Second, 10*time.Millisecond)
	alert := b.stored(records.CollectionNotifications)[0]
	assert.Equal(t, models.NotificationMatchFound, alert["type"])
	assert.Equal(t, "user-e2e", alert["recipientId"])
	t.Log("✅ match flow produced ranked candidates and an alert")
}

func TestE2E_PhotoMatchNoMatchThenRejected(t *testing.T) {
	b := newBackend(t)
	cfg := loadConfig(t, b.server.URL)
	w := newWorkflow(t, cfg, logger.NewTestLogger(t))

	require.NoError(t, w.SelectImage(models.Image{Name: "stranger.jpg", ContentType: "image/jpeg", Data: []byte("x")}))
	snap := awaitTerminal(t, w)
	assert.Equal(t, submitphotomatch.StateNoMatch, snap.State)

	require.NoError(t, w.SelectImage(models.Image{Name: "blurry.jpg", ContentType: "image/jpeg", Data: []byte("x")}))
	require.Eventually(t, func() bool { return w.Snapshot().State == submitphotomatch.StateFailed }, 5*time.Second, 10*time.Millisecond)

	snap = w.Snapshot()
	assert.NotEmpty(t, snap.Message)
	assert.Equal(t, "COMPARISON_REJECTED", string(snap.ErrorCode))
	assert.Empty(t, b.stored(records.CollectionNotifications))
}

// ==========================
// 4. Last Seen + Lost Report Flow
// ==========================

func TestE2E_LastSeenAndReportFlow(t *testing.T) {
	b := newBackend(t)
	cfg := loadConfig(t, b.server.URL)
	log := logger.NewTestLogger(t)

	controller := lastseenlocation.NewController(lastseenlocation.ConfigFrom(cfg.Location), newAcquirer(cfg, log), nil, log)
	t.Cleanup(controller.Close)

	require.NoError(t, controller.UseCurrentLocation())
	require.Eventually(t, func() bool {
		s := controller.Snapshot()
		return !s.Loading && s.Fix != nil
	}, 5*time.Second, 10*time.Millisecond)

	snap := controller.Snapshot()
	assert.Equal(t, models.SourceFreshGPS, snap.Fix.Source)
	assert.Equal(t, "Kasturba Road, Sampangi Rama Nagar, Bengaluru", snap.AddressText)
	assert.Equal(t, 17.0, snap.Camera.Zoom)

	// a tap where the geocoder has nothing falls back to the coordinate
	require.NoError(t, controller.TapMap(models.Coordinate{Latitude: 0, Longitude: 0}))
	require.Eventually(t, func() bool {
		s := controller.Snapshot()
		return s.Fix != nil && s.Fix.Source == models.SourceMapTap
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "0.000000, 0.000000", controller.Snapshot().AddressText)

	fix := *controller.Snapshot().Fix
	repo := records.NewRepository(records.ConfigFrom(cfg.Records), nil, log)
	reporter := submitlostreport.NewHandler(submitlostreport.ConfigFrom(cfg), repo, records.NewNotifier(repo), nil, log)

	out, err := reporter.Execute(context.Background(), &submitlostreport.Input{
		PetID:       "pet-42",
		Description: "Brown beagle with a red collar",
		Fix:         &fix,
	})
	require.NoError(t, err)
	reporter.Wait()

	assert.Equal(t, "user-e2e", out.Report.ReporterID)
	reports := b.stored(records.CollectionLostReports)
	require.Len(t, reports, 1)
	assert.Equal(t, "MAP_TAP", reports[0]["locationSource"])
	assert.Equal(t, "0.000000, 0.000000", reports[0]["address"])

	confirmations := b.stored(records.CollectionNotifications)
	require.Len(t, confirmations, 1)
	assert.Equal(t, models.NotificationLostReportCreated, confirmations[0]["type"])
	t.Log("✅ last seen location posted as a lost report")
}

// ==========================
// 5. Benchmarks
// ==========================

func BenchmarkClassify(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = classifyconfidence.Classify(float64(i%100) / 100)
	}
}

func BenchmarkRank(b *testing.B) {
	candidates := make([]models.CandidateMatch, 50)
	for i := range candidates {
		candidates[i] = models.NewCandidateMatch(models.CandidateMatch{
			ID:         models.MatchID(fmt.Sprintf("p-%d", i)),
			Similarity: 1 - float64(i)/50,
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rankmatches.Rank(candidates)
	}
}
