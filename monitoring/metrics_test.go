package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_ObservePurchase(t *testing.T) {
	m := NewMonitor()
	before := testutil.ToFloat64(ticketPurchases.WithLabelValues("duplicate"))

	m.ObservePurchase("duplicate", 20*time.Millisecond)
	m.ObservePurchase("duplicate", 30*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(ticketPurchases.WithLabelValues("duplicate")))
}

func TestMonitor_ObserveEventCreated(t *testing.T) {
	before := testutil.ToFloat64(eventsCreated)

	NewMonitor().ObserveEventCreated()

	assert.Equal(t, before+1, testutil.ToFloat64(eventsCreated))
}

func TestHTTPMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetrics())
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := httpRequests.WithLabelValues(http.MethodGet, "/events/:id", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}
