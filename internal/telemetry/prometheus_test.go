package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestPrometheusQuerier_ParsesVectorResult(t *testing.T) {
	server := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/query", r.URL.Path)
		assert.Equal(t, `up{service="orders"}`, r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"resultType": "vector",
				"result": [
					{"metric": {"service": "orders"}, "value": [1717243800.123, "42.5"]}
				]
			}
		}`))
	})

	q := NewPrometheusQuerier(PrometheusConfig{Endpoint: server.URL})
	defer q.Close()

	sample, err := q.Query(context.Background(), `up{service="orders"}`)
	require.NoError(t, err)
	assert.Equal(t, 42.5, sample.Value)
	assert.Equal(t, int64(1717243800), sample.Timestamp.Unix())
}

func TestPrometheusQuerier_EmptyResultIsNoData(t *testing.T) {
	server := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {"resultType": "vector", "result": []}}`))
	})

	q := NewPrometheusQuerier(PrometheusConfig{Endpoint: server.URL})
	defer q.Close()

	_, err := q.Query(context.Background(), "absent_metric")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPrometheusQuerier_ErrorStatusIsQueryFailed(t *testing.T) {
	server := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	q := NewPrometheusQuerier(PrometheusConfig{Endpoint: server.URL})
	defer q.Close()

	_, err := q.Query(context.Background(), "up")
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestPrometheusQuerier_MalformedBodyIsInvalidResponse(t *testing.T) {
	server := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	q := NewPrometheusQuerier(PrometheusConfig{Endpoint: server.URL})
	defer q.Close()

	_, err := q.Query(context.Background(), "up")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestPrometheusQuerier_NonNumericValueIsInvalidResponse(t *testing.T) {
	server := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "success",
			"data": {"resultType": "vector", "result": [{"metric": {}, "value": [1, "NaN-ish"]}]}
		}`))
	})

	q := NewPrometheusQuerier(PrometheusConfig{Endpoint: server.URL})
	defer q.Close()

	_, err := q.Query(context.Background(), "up")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestPrometheusQuerier_HealthCheck(t *testing.T) {
	healthy := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/-/healthy", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	q := NewPrometheusQuerier(PrometheusConfig{Endpoint: healthy.URL})
	defer q.Close()
	assert.NoError(t, q.HealthCheck(context.Background()))

	unhealthy := promServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	q2 := NewPrometheusQuerier(PrometheusConfig{Endpoint: unhealthy.URL})
	defer q2.Close()
	assert.Error(t, q2.HealthCheck(context.Background()))
}
