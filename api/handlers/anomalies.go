package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sentinelops/sentinel/internal/history"
	"github.com/sentinelops/sentinel/internal/monitor"
	"github.com/sentinelops/sentinel/internal/registry"
	"github.com/sentinelops/sentinel/pkg/database/queries"
	"github.com/sentinelops/sentinel/pkg/models"
	"github.com/sentinelops/sentinel/pkg/validation"
)

type AnomalyHandler struct {
	registry *registry.Registry
	history  *history.Store
	monitor  *monitor.Monitor
	repo     *queries.AnomalyEventRepository // nil when persistence is off
}

func NewAnomalyHandler(reg *registry.Registry, hist *history.Store, mon *monitor.Monitor, repo *queries.AnomalyEventRepository) *AnomalyHandler {
	return &AnomalyHandler{
		registry: reg,
		history:  hist,
		monitor:  mon,
		repo:     repo,
	}
}

// GetAnomalies returns the active anomalies from the most recent detection
// cycle, optionally filtered by service and severity and capped by limit.
func (h *AnomalyHandler) GetAnomalies(c *gin.Context) {
	service := c.Query("service")
	severity := c.Query("severity")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	anomalies := h.registry.Current()

	filtered := make([]models.AnomalyPrediction, 0, len(anomalies))
	for _, a := range anomalies {
		if service != "" && a.Service != service {
			continue
		}
		if severity != "" && string(a.Severity) != severity {
			continue
		}
		filtered = append(filtered, a)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": filtered,
		"count":     len(filtered),
	})
}

// GetAnomalyHistory returns persisted anomaly events, newest first. Without
// a database it degrades to the latest anomalous predictions in the registry.
func (h *AnomalyHandler) GetAnomalyHistory(c *gin.Context) {
	service := c.Query("service")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	if h.repo != nil {
		var (
			anomalies []models.AnomalyPrediction
			err       error
		)
		if service != "" {
			anomalies, err = h.repo.RecentForService(c.Request.Context(), service, limit)
		} else {
			anomalies, err = h.repo.Recent(c.Request.Context(), limit)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query anomaly history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"anomalies": anomalies,
			"count":     len(anomalies),
		})
		return
	}

	anomalies := make([]models.AnomalyPrediction, 0)
	for _, p := range h.registry.All() {
		if !p.IsAnomaly {
			continue
		}
		if service != "" && p.Service != service {
			continue
		}
		anomalies = append(anomalies, p)
		if len(anomalies) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

// GetPredictions returns the latest prediction for every monitored metric,
// anomalous or not.
func (h *AnomalyHandler) GetPredictions(c *gin.Context) {
	predictions := h.registry.All()
	c.JSON(http.StatusOK, gin.H{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (h *AnomalyHandler) GetServicePredictions(c *gin.Context) {
	service := c.Param("service")
	if err := validation.ValidateServiceName(service); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	predictions := h.registry.ForService(service)
	c.JSON(http.StatusOK, gin.H{
		"service":     service,
		"predictions": predictions,
		"count":       len(predictions),
	})
}

type ServiceHealth struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Anomalies int    `json:"anomalies"`
}

// GetServicesHealth derives per-service health from the latest predictions.
// The worst anomaly severity decides the tier: critical, degraded (warning
// severity), warning (info severity), healthy.
func (h *AnomalyHandler) GetServicesHealth(c *gin.Context) {
	type counts struct {
		anomalies int
		worst     models.Severity
	}
	byService := make(map[string]*counts)

	rank := map[models.Severity]int{
		models.SeverityInfo:     1,
		models.SeverityWarning:  2,
		models.SeverityCritical: 3,
	}

	for _, p := range h.registry.All() {
		s, ok := byService[p.Service]
		if !ok {
			s = &counts{}
			byService[p.Service] = s
		}
		if p.IsAnomaly {
			s.anomalies++
			if rank[p.Severity] > rank[s.worst] {
				s.worst = p.Severity
			}
		}
	}

	services := make([]ServiceHealth, 0, len(byService))
	for name, s := range byService {
		status := "healthy"
		switch s.worst {
		case models.SeverityCritical:
			status = "critical"
		case models.SeverityWarning:
			status = "degraded"
		case models.SeverityInfo:
			status = "warning"
		}
		services = append(services, ServiceHealth{
			Service:   name,
			Status:    status,
			Anomalies: s.anomalies,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"count":    len(services),
	})
}

// RunDetection triggers one detection cycle outside the schedule.
func (h *AnomalyHandler) RunDetection(c *gin.Context) {
	anomalies := h.monitor.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

func (h *AnomalyHandler) GetDetector(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"method": h.monitor.Method(),
	})
}

type DetectorRequest struct {
	Method string `json:"method" binding:"required"`
}

func (h *AnomalyHandler) SetDetector(c *gin.Context) {
	var req DetectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.monitor.SetMethod(req.Method); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"method": h.monitor.Method()})
}

// ResetModels discards trained models so they relearn from current history.
func (h *AnomalyHandler) ResetModels(c *gin.Context) {
	count := h.monitor.ResetModels()
	c.JSON(http.StatusOK, gin.H{
		"reset": count,
	})
}
