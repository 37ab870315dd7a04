package api

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/service"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CalendarHandler exposes read-only views of the athlete's calendar.
type CalendarHandler struct {
	calendarService service.CalendarService
	now             func() time.Time
}

func NewCalendarHandler(calendarService service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, now: time.Now}
}

// ListEvents godoc
// @Summary List planned calendar entries
// @Tags Calendar
// @Produce json
// @Param oldest query string false "YYYY-MM-DD, default today"
// @Param newest query string false "YYYY-MM-DD, default today+14"
// @Success 200 {array} domain.RemoteEvent
// @Router /calendar/events [get]
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	today := h.now()
	oldest := c.DefaultQuery("oldest", today.Format(domain.DateLayout))
	newest := c.DefaultQuery("newest", today.AddDate(0, 0, 14).Format(domain.DateLayout))

	events, err := h.calendarService.Events(c.Request.Context(), athleteID, oldest, newest)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if events == nil {
		events = []domain.RemoteEvent{}
	}
	c.JSON(http.StatusOK, events)
}

// ListActivities defaults to the last seven days.
func (h *CalendarHandler) ListActivities(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	today := h.now()
	oldest := c.DefaultQuery("oldest", today.AddDate(0, 0, -7).Format(domain.DateLayout))
	newest := c.DefaultQuery("newest", today.Format(domain.DateLayout))

	activities, err := h.calendarService.Activities(c.Request.Context(), athleteID, oldest, newest)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	c.JSON(http.StatusOK, activities)
}

// GetActivityStreams accepts ?types=watts,heartrate; the default set otherwise.
func (h *CalendarHandler) GetActivityStreams(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	var types []string
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	streams, err := h.calendarService.Streams(c.Request.Context(), athleteID, c.Param("activityId"), types)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if streams == nil {
		streams = []domain.Stream{}
	}
	c.JSON(http.StatusOK, streams)
}

// ListReplaceRuns returns the log of recent bulk replaces.
func (h *CalendarHandler) ListReplaceRuns(c *gin.Context) {
	athleteID, err := getAthleteIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get athlete ID from token")
		return
	}
	runs, err := h.calendarService.ReplaceRuns(c.Request.Context(), athleteID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}
