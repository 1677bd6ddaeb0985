package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/reconcile"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestMetrics_ContadoresDeNegocio(t *testing.T) {
	m := New()
	m.MovementApplied(entity.MovementOutbound)
	m.MovementApplied(entity.MovementOutbound)
	m.MovementRejected(entity.MovementOutbound, "insufficient_stock")
	m.ConflictRetried()
	m.SafetyAlert(true)
	m.SafetyAlert(false)
	m.SyncItem(reconcile.OutcomeDuplicate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movementsApplied.WithLabelValues("OUTBOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movementsRejected.WithLabelValues("OUTBOUND", "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflictRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.safetyAlerts.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.syncItems.WithLabelValues("duplicate")))
}

func TestMetrics_MiddlewareYHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/ping/:id", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "stock_ledger_http_requests_total")
}
