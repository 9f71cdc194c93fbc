package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/usecase"
	"PaperPulse/pkg/logger"
)

type memVitals struct {
	rows map[string]*models.Vital
}

func (m *memVitals) Upsert(_ context.Context, v *models.Vital) error {
	if m.rows == nil {
		m.rows = map[string]*models.Vital{}
	}
	cp := *v
	m.rows[v.Name] = &cp
	return nil
}

func (m *memVitals) List(context.Context) ([]*models.Vital, error) {
	out := make([]*models.Vital, 0, len(m.rows))
	for _, v := range m.rows {
		out = append(out, v)
	}
	return out, nil
}

type pingStore struct{ err error }

func (s *pingStore) StoreBatch(context.Context, []*models.Tick) error { return nil }
func (s *pingStore) LatestN(context.Context, string, int) ([]*models.Tick, error) {
	return nil, nil
}
func (s *pingStore) LatestPrice(context.Context, string) (float64, time.Time, error) {
	return 0, time.Time{}, nil
}
func (s *pingStore) Health(context.Context) error { return s.err }
func (s *pingStore) Close() error                 { return nil }

func newTestHandler(t *testing.T, vitals *memVitals, store *pingStore) *CycleEchoHandler {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return NewCycleEchoHandler(log, nil, usecase.NewHealthReporter(vitals, log), store)
}

func TestHealthEndpoint(t *testing.T) {
	vitals := &memVitals{}
	require.NoError(t, vitals.Upsert(context.Background(), &models.Vital{
		Name:      models.VitalMarketCollector,
		Status:    models.VitalDegraded,
		Timestamp: time.Now().UTC(),
	}))
	h := newTestHandler(t, vitals, &pingStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data models.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.VitalDegraded, body.Data.Status)
	require.Len(t, body.Data.Vitals, 2)

	names := []string{body.Data.Vitals[0].Name, body.Data.Vitals[1].Name}
	assert.Contains(t, names, models.VitalMarketCollector)
	assert.Contains(t, names, "tick-store")
}

func TestHealthEndpointStoreDown(t *testing.T) {
	h := newTestHandler(t, &memVitals{}, &pingStore{err: assert.AnError})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(req, rec)))

	var body struct {
		Data models.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.VitalCritical, body.Data.Status)
}

func TestCycleRejectsUnknownAction(t *testing.T) {
	h := newTestHandler(t, &memVitals{}, &pingStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cycle",
		strings.NewReader(`{"action":"reboot"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Cycle(e.NewContext(req, rec)))

	// Errors travel in the envelope status, not the transport code.
	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
}
