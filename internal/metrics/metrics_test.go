package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eth_block_explorer/internal/core/selection"
)

func TestRecorder_ObserveFetch(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveFetch(selection.OpPrimaryResource, 10*time.Millisecond, nil)
	r.ObserveFetch(selection.OpPrimaryResource, 20*time.Millisecond, errors.New("boom"))
	r.ObserveFetch(selection.OpPrimaryResource, 5*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues(selection.OpPrimaryResource, outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues(selection.OpPrimaryResource, outcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fetchDuration))
}

func TestRecorder_StaleAndCache(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.StaleResultDiscarded(selection.OpDependentResource)
	r.CacheHit("block")
	r.CacheHit("block")
	r.CacheMiss("receipt")
	r.SetSubscribers(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.staleDiscarded.WithLabelValues(selection.OpDependentResource)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("block", resultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheRequests.WithLabelValues("receipt", resultMiss)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.subscribers))
}

func TestRecorder_MiddlewareAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	router := mux.NewRouter()
	router.Use(r.Middleware())
	router.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Handle("/metrics", Handler(reg))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `blockexplorer_http_requests_total{code="204",method="get"} 1`), body)
}
