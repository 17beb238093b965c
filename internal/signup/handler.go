package signup

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/neiist-dev/activities-backend/middleware"
)

type Handler struct {
	Service  *Service
	Exporter *Exporter
}

func NewHandler(s *Service, e *Exporter) *Handler {
	return &Handler{Service: s, Exporter: e}
}

func (h *Handler) setSignup(c *gin.Context, want bool) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}

	eventID := c.Param("id")
	changed, err := h.Service.SetSignup(c.Request.Context(), eventID, actor.ISTID, want, middleware.GetIPFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
		case errors.Is(err, ErrSignupClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "signups are not open for this activity"})
		case errors.Is(err, ErrDeadlinePassed):
			c.JSON(http.StatusConflict, gin.H{"error": "signup deadline has passed"})
		case errors.Is(err, ErrCapacityFull):
			c.JSON(http.StatusConflict, gin.H{"error": "activity is at capacity"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update signup"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"signed_up": want, "changed": changed})
}

// Signup - POST /activities/:id/signups
func (h *Handler) Signup(c *gin.Context) {
	h.setSignup(c, true)
}

// Cancel - DELETE /activities/:id/signups
func (h *Handler) Cancel(c *gin.Context) {
	h.setSignup(c, false)
}

// ListSignups - GET /activities/:id/signups (admin only)
func (h *Handler) ListSignups(c *gin.Context) {
	rows, err := h.Service.ListForEvent(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list signups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signups": rows, "total": len(rows)})
}

// MySignups - GET /members/me/signups
func (h *Handler) MySignups(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}

	events, err := h.Service.ListForMember(actor.ISTID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list signups"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// Export - GET /activities/:id/signups/export?format=xlsx|pdf (admin only)
func (h *Handler) Export(c *gin.Context) {
	eventID := c.Param("id")
	format := c.DefaultQuery("format", "xlsx")

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = h.Exporter.ExportXLSX(eventID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		data, err = h.Exporter.ExportPDF(eventID)
		contentType = "application/pdf"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or pdf"})
		return
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate export"})
		return
	}

	filename := fmt.Sprintf("signups-%s.%s", eventID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
