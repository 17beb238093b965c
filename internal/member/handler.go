package member

import (
	"errors"
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

// Login - POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	token, m, err := h.Service.Login(c.Request.Context(), &req, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "member": m})
}

// Me - GET /members/me
func (h *Handler) Me(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}

	m, err := h.Service.GetByISTID(actor.ISTID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// SetAlternativeEmail - PUT /members/me/alternative-email
func (h *Handler) SetAlternativeEmail(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}

	var req UpdateAlternativeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	m, err := h.Service.SetAlternativeEmail(actor.ISTID, req.AlternativeEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update alternative email"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// CreateMember - POST /members (admin only)
func (h *Handler) CreateMember(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	m, err := h.Service.CreateMember(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create member"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListMembers - GET /members (admin only)
func (h *Handler) ListMembers(c *gin.Context) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}
	if !actor.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	members, err := h.Service.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	c.JSON(http.StatusOK, members)
}
