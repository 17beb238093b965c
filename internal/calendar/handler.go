package calendar

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/member"
)

type Handler struct {
	Members    *member.Service
	Activities *activity.Service
	FeedName   string
}

func NewHandler(members *member.Service, activities *activity.Service, feedName string) *Handler {
	return &Handler{Members: members, Activities: activities, FeedName: feedName}
}

// Feed - GET /calendar/feed/:file where file is "<istid>.ics". The feed URL
// is shared out of band; clients poll it without authentication.
func (h *Handler) Feed(c *gin.Context) {
	file := c.Param("file")
	istid := strings.TrimSuffix(file, ".ics")
	if istid == file || istid == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		return
	}

	m, err := h.Members.GetByISTID(istid)
	if err != nil || !m.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		return
	}

	events, err := h.Activities.ListEvents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build feed"})
		return
	}

	feed := BuildICSFeed(m, events, h.FeedName)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
