package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sentinelops/sentinel/api/middleware"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/internal/remediation"
	"github.com/sentinelops/sentinel/pkg/database/queries"
	"github.com/sentinelops/sentinel/pkg/models"
)

type ActionHandler struct {
	controller *remediation.Controller
	log        *remediation.ActionLog
	executor   *remediation.Executor
	policies   *policy.Store
	repo       *queries.ActionRepository // nil when persistence is off
}

func NewActionHandler(controller *remediation.Controller, log *remediation.ActionLog, executor *remediation.Executor, policies *policy.Store, repo *queries.ActionRepository) *ActionHandler {
	return &ActionHandler{
		controller: controller,
		log:        log,
		executor:   executor,
		policies:   policies,
		repo:       repo,
	}
}

// GetActions returns the retained action history, optionally filtered by
// service.
func (h *ActionHandler) GetActions(c *gin.Context) {
	service := c.Query("service")

	var actions []models.RemediationAction
	if service != "" {
		actions = h.log.ForService(service)
	} else {
		actions = h.log.List()
	}

	c.JSON(http.StatusOK, gin.H{
		"actions": actions,
		"count":   len(actions),
	})
}

func (h *ActionHandler) GetRecentActions(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	actions := h.log.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"actions": actions,
		"count":   len(actions),
	})
}

// GetActionHistory returns action history filtered by service and action
// type, newest first, capped by limit. Backed by the database when one is
// configured, otherwise by the in-memory log.
func (h *ActionHandler) GetActionHistory(c *gin.Context) {
	service := c.Query("service")
	actionType := c.Query("action")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	if h.repo != nil {
		fetch := limit
		if fetch <= 0 {
			fetch = remediation.DefaultLogCapacity
		}

		var (
			actions []models.RemediationAction
			err     error
		)
		if service != "" {
			actions, err = h.repo.RecentForService(c.Request.Context(), service, fetch)
		} else {
			actions, err = h.repo.Recent(c.Request.Context(), fetch)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query action history"})
			return
		}

		if actionType != "" {
			filtered := actions[:0]
			for _, a := range actions {
				if string(a.Action) == actionType {
					filtered = append(filtered, a)
				}
			}
			actions = filtered
		}

		c.JSON(http.StatusOK, gin.H{
			"actions": actions,
			"count":   len(actions),
		})
		return
	}

	all := h.log.List()
	filtered := make([]models.RemediationAction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		a := all[i]
		if service != "" && a.Service != service {
			continue
		}
		if actionType != "" && string(a.Action) != actionType {
			continue
		}
		filtered = append(filtered, a)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"actions": filtered,
		"count":   len(filtered),
	})
}

// Evaluate runs the policy match for a caller-supplied anomaly and executes
// the matching actions, respecting cooldowns.
func (h *ActionHandler) Evaluate(c *gin.Context) {
	var anomaly models.AnomalyPrediction
	if err := c.ShouldBindJSON(&anomaly); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if anomaly.Service == "" || anomaly.Metric == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service and metric are required"})
		return
	}

	executed := h.controller.Evaluate(c.Request.Context(), anomaly)
	c.JSON(http.StatusOK, gin.H{
		"executed": executed,
		"count":    len(executed),
	})
}

type ExecuteRequest struct {
	PolicyName string `json:"policy_name" binding:"required"`
}

// Execute triggers one policy's action manually, bypassing anomaly matching
// but still stamping the cooldown.
func (h *ActionHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.policies.Get(req.PolicyName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}

	reason := fmt.Sprintf("Manual trigger by %s", middleware.GetUsername(c))
	action := h.executor.Execute(c.Request.Context(), p, reason)

	status := http.StatusOK
	if !action.Succeeded() {
		status = http.StatusBadGateway
	}
	c.JSON(status, action)
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *ActionHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}

	enabled := h.controller.Toggle(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": enabled})
}

func (h *ActionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Status())
}

// RunCycle triggers one remediation cycle outside the schedule.
func (h *ActionHandler) RunCycle(c *gin.Context) {
	executed, err := h.controller.RunCycle(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"executed": executed,
		"count":    len(executed),
	})
}
