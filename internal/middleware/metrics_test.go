package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := httpRequests.WithLabelValues(http.MethodGet, "/products/:id", "204")
	health := httpRequests.WithLabelValues(http.MethodGet, "/health", "200")
	before, healthBefore := testutil.ToFloat64(counter), testutil.ToFloat64(health)

	for _, path := range []string{"/products/1", "/products/2", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, healthBefore, testutil.ToFloat64(health))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestSetDBConnectionsOpen(t *testing.T) {
	SetDBConnectionsOpen(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(dbOpenConnections))
}
