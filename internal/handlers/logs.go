package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stove_automation/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLimitInvalid = "invalid 'limit'; use a non-negative integer"
	errLoadLogs     = "failed to load logs"
	errLoadSummary  = "failed to summarise logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var queryTimeLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// @Summary      List logs
// @Description  Filter logs by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive (23:59:59.999999999Z).
// @Tags         logs
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2025-01-06)
// @Param        to     query   string  false  "End of range. Date-only treated as end of day."  example(2025-01-12)
// @Param        type   query   string  false  "Event type"  Enums(CRON_EXECUTION,ANALYTICS,PID_TUNING,NOTIFICATION)
// @Param        limit  query   int     false  "Return only the newest N events"
// @Success      200    {object}  map[string]interface{}  "count, events"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     CronSecret
func (h *Handler) getLogs(c *gin.Context) {
	from, to, ok := h.queryRange(c)
	if !ok {
		return
	}
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		limit = n
	}

	f := service.LogFilter{From: from, To: to, Type: c.Query("type"), Limit: limit}
	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		if isFilterError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadLogs, "logs_list_failed", err,
			"from", from, "to", to, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Activity summary
// @Description  Counts events by type, scheduler outcome and stove action over a range.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-01-06)
// @Param        to    query   string  false  "End of range. Date-only treated as end of day."  example(2025-01-12)
// @Success      200   {object}  service.ActivitySummary
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs/summary [get]
// @Security     CronSecret
func (h *Handler) logSummary(c *gin.Context) {
	from, to, ok := h.queryRange(c)
	if !ok {
		return
	}
	sum, err := h.services.EventLog.Summary(c.Request.Context(), from, to)
	if err != nil {
		if isFilterError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSummary, "logs_summary_failed", err,
			"from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// queryRange parses the optional from/to parameters, writing a 400 on
// failure. A date-only 'to' covers that whole day.
func (h *Handler) queryRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return time.Time{}, time.Time{}, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return time.Time{}, time.Time{}, false
		}
		if !strings.ContainsAny(qs, "T ") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return from, to, true
}

func isFilterError(err error) bool {
	return errors.Is(err, service.ErrInvalidTimeRange) || errors.Is(err, service.ErrUnknownEventType)
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD"; the
// latter two are read as UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
