package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `climaquote_http_request_duration_seconds_count{method="GET",route="/products/:id",status="204"} 1`)
}

func TestNotificationResult(t *testing.T) {
	before := testutil.ToFloat64(Notifications.WithLabelValues("sent"))
	Notifications.WithLabelValues(NotificationResult(true)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Notifications.WithLabelValues("sent")))
	assert.Equal(t, "failed", NotificationResult(false))
}
