package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/pkg/models"
)

func anomalyRouter(reg *registry.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnomalyHandler(reg, nil, nil, nil)

	router := gin.New()
	router.GET("/services/health", h.GetServicesHealth)
	router.GET("/anomalies/history", h.GetAnomalyHistory)
	return router
}

func record(reg *registry.Registry, service string, isAnomaly bool, severity models.Severity) {
	reg.Record(models.AnomalyPrediction{
		Service:   service,
		Metric:    "latency",
		IsAnomaly: isAnomaly,
		Severity:  severity,
		Timestamp: time.Now(),
	})
}

func TestGetServicesHealth_FourTiers(t *testing.T) {
	reg := registry.New()
	record(reg, "orders", true, models.SeverityCritical)
	record(reg, "users", true, models.SeverityWarning)
	record(reg, "payments", true, models.SeverityInfo)
	record(reg, "search", false, models.SeverityNormal)

	router := anomalyRouter(reg)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Services []ServiceHealth `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	byService := make(map[string]ServiceHealth)
	for _, s := range resp.Services {
		byService[s.Service] = s
	}

	assert.Equal(t, "critical", byService["orders"].Status)
	assert.Equal(t, "degraded", byService["users"].Status)
	assert.Equal(t, "warning", byService["payments"].Status)
	assert.Equal(t, "healthy", byService["search"].Status)
}

func TestGetServicesHealth_WorstSeverityWins(t *testing.T) {
	reg := registry.New()
	reg.Record(models.AnomalyPrediction{
		Service: "orders", Metric: "latency",
		IsAnomaly: true, Severity: models.SeverityInfo, Timestamp: time.Now(),
	})
	reg.Record(models.AnomalyPrediction{
		Service: "orders", Metric: "cpu_usage",
		IsAnomaly: true, Severity: models.SeverityWarning, Timestamp: time.Now(),
	})

	router := anomalyRouter(reg)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services/health", nil))

	var resp struct {
		Services []ServiceHealth `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "degraded", resp.Services[0].Status)
	assert.Equal(t, 2, resp.Services[0].Anomalies)
}

func TestGetAnomalyHistory_FallsBackToRegistry(t *testing.T) {
	reg := registry.New()
	record(reg, "orders", true, models.SeverityCritical)
	record(reg, "users", false, models.SeverityNormal)

	router := anomalyRouter(reg)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anomalies/history", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Anomalies []models.AnomalyPrediction `json:"anomalies"`
		Count     int                        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "orders", resp.Anomalies[0].Service)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anomalies/history?service=users", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}
