package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentinelops/sentinel/internal/events"
	"github.com/sentinelops/sentinel/internal/policy"
	"github.com/sentinelops/sentinel/pkg/models"
	"github.com/sentinelops/sentinel/pkg/validation"
)

type PolicyHandler struct {
	store     *policy.Store
	publisher *events.Publisher
}

func NewPolicyHandler(store *policy.Store, publisher *events.Publisher) *PolicyHandler {
	return &PolicyHandler{
		store:     store,
		publisher: publisher,
	}
}

func (h *PolicyHandler) List(c *gin.Context) {
	policies := h.store.List()
	c.JSON(http.StatusOK, gin.H{
		"policies": policies,
		"count":    len(policies),
	})
}

func (h *PolicyHandler) Get(c *gin.Context) {
	name := c.Param("name")

	p, err := h.store.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *PolicyHandler) Create(c *gin.Context) {
	var p models.Policy
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidatePolicyName(p.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Create(p); err != nil {
		h.writeStoreError(c, err)
		return
	}

	h.publisher.PolicyChanged(p.Name, "created")
	c.JSON(http.StatusCreated, p)
}

func (h *PolicyHandler) Update(c *gin.Context) {
	name := c.Param("name")

	var p models.Policy
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.store.Update(name, p); err != nil {
		h.writeStoreError(c, err)
		return
	}

	h.publisher.PolicyChanged(name, "updated")

	updated, _ := h.store.Get(name)
	c.JSON(http.StatusOK, updated)
}

func (h *PolicyHandler) Delete(c *gin.Context) {
	name := c.Param("name")

	if err := h.store.Delete(name); err != nil {
		h.writeStoreError(c, err)
		return
	}

	h.publisher.PolicyChanged(name, "deleted")
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

func (h *PolicyHandler) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, policy.ErrPolicyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
	case errors.Is(err, policy.ErrPolicyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "policy already exists"})
	case errors.Is(err, policy.ErrInvalidPolicy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
