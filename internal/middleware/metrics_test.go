package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoria-app/tutoria-api/internal/service"
)

func newMetricsRouter(metricsSvc *service.MetricsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metricsSvc))
	r.GET("/students/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	return r
}

func scrape(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	r := newMetricsRouter(service.NewMetricsService())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/students/s1", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := scrape(t, r)
	assert.Contains(t, body, `path="/students/:id"`)
}

func TestMetricsSkipsScrapeEndpoint(t *testing.T) {
	r := newMetricsRouter(service.NewMetricsService())

	scrape(t, r)
	body := scrape(t, r)
	assert.NotContains(t, body, `path="/metrics"`)
}
