package syncjob

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neiist-dev/activities-backend/internal/auditlog"
	"github.com/neiist-dev/activities-backend/middleware"
)

type Handler struct {
	Scheduler *Scheduler
}

func NewHandler(s *Scheduler) *Handler {
	return &Handler{Scheduler: s}
}

func (h *Handler) trigger(c *gin.Context, kind string, run func() (*SyncRun, error)) {
	actor, ok := middleware.MemberFromContext(c)
	if !ok {
		return
	}

	h.Scheduler.AuditSvc.LogAction(c.Request.Context(), &actor.ISTID, nil,
		auditlog.ActionSyncTriggered, map[string]interface{}{"kind": kind},
		middleware.GetIPFromContext(c), "success")

	result, err := run()
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "a sync run of this kind is already in progress"})
			return
		}
		if result != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "sync failed", "run": result})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// TriggerContentSync - POST /sync/content (admin only)
func (h *Handler) TriggerContentSync(c *gin.Context) {
	h.trigger(c, KindContent, func() (*SyncRun, error) {
		return h.Scheduler.RunContentSync(c.Request.Context())
	})
}

// TriggerCalendarSync - POST /sync/calendars (admin only)
func (h *Handler) TriggerCalendarSync(c *gin.Context) {
	h.trigger(c, KindCalendars, func() (*SyncRun, error) {
		return h.Scheduler.RunCalendarSync(c.Request.Context())
	})
}

// ListRuns - GET /sync/runs (admin only)
func (h *Handler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.Scheduler.Repo.List(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sync runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "page": page, "limit": limit})
}
