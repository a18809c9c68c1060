package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/coaching-service/internal/config"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/problems", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/problems", "GET", 200, 4*time.Millisecond)
	m.RecordError("/problems", "GET", "UNAUTHORIZED")
	m.RecordAuthOutcome("bound")
	m.RecordAuthOutcome("bound")
	m.RecordActivity("note_saved")

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Requests["/problems|GET|200"])
	assert.EqualValues(t, 1, snap.Errors["/problems|GET|UNAUTHORIZED"])
	assert.EqualValues(t, 2, snap.AuthOutcomes["bound"])
	assert.EqualValues(t, 1, snap.Activity["note_saved"])
	assert.InDelta(t, 3.0, snap.AverageLatencyMS, 0.001)

	snap.AuthOutcomes["bound"] = 99
	assert.EqualValues(t, 2, m.Snapshot().AuthOutcomes["bound"], "snapshot is a copy")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordAuthOutcome("bound")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRequestLogger(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/problems/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/problems/7", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-1", resp.Header.Get(HeaderRequestID))
	assert.EqualValues(t, 1, metrics.Snapshot().Requests["/problems/:id|GET|204"])
}
