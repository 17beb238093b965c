package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neiist-dev/activities-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ListEvents - GET /activities
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.Service.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activities"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /activities/:id
func (h *Handler) GetEvent(c *gin.Context) {
	event, err := h.Service.GetEvent(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// UpdateProperties - POST /activities/properties (admin only)
func (h *Handler) UpdateProperties(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	var req UpdatePropertiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ip := middleware.GetIPFromContext(c)
	if err := h.Service.UpdateProperties(c.Request.Context(), &req, actor.ISTID, ip); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update activity properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetProperties - GET /activities/:id/properties (admin only)
func (h *Handler) GetProperties(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	props, err := h.Service.Repo.GetProperties(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch properties"})
		return
	}
	if props == nil {
		c.JSON(http.StatusOK, gin.H{"event_id": c.Param("id"), "signup_enabled": false})
		return
	}
	c.JSON(http.StatusOK, props)
}
