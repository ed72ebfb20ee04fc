package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusCleaned = "cleaning_confirmed"

	errGetState        = "failed to load state"
	errCronHealth      = "failed to load cron health"
	errNoResult        = "no scheduler check has run yet"
	errMaintenance     = "failed to load maintenance status"
	errConfirmCleaning = "failed to confirm cleaning"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Run the scheduler check
// @Description  Reconciles the weekly schedule against the stove once. Always 200; the outcome is in status.
// @Tags         cron
// @Produce      json
// @Param        secret  query     string  false  "Cron secret (alternatively X-Cron-Secret or Bearer)"
// @Success      200     {object}  stove_automation.SchedulerResponse
// @Failure      401     {object}  map[string]string
// @Router       /api/cron/scheduler-check [get]
// @Security     CronSecret
func (h *Handler) schedulerCheck(c *gin.Context) {
	resp := h.services.Scheduler.Check(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}

// @Summary      Get stove state
// @Tags         stove
// @Produce      json
// @Success      200  {object}  models.StoveStateRecord
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/stove/state [get]
// @Security     CronSecret
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "stove_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Scheduler heartbeat
// @Tags         cron
// @Produce      json
// @Success      200  {object}  service.CronHealth
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/cron/health [get]
// @Security     CronSecret
func (h *Handler) cronHealth(c *gin.Context) {
	health, err := h.services.Monitoring.CronHealth(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errCronHealth, "cron_health_failed", err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// @Summary      Last scheduler result
// @Description  Outcome of the most recent check run by this process.
// @Tags         cron
// @Produce      json
// @Success      200  {object}  stove_automation.SchedulerResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/cron/last-result [get]
// @Security     CronSecret
func (h *Handler) lastResult(c *gin.Context) {
	resp, ok := h.services.Scheduler.LastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoResult})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Maintenance status
// @Tags         maintenance
// @Produce      json
// @Success      200  {object}  models.MaintenanceRecord
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/maintenance [get]
// @Security     CronSecret
func (h *Handler) maintenanceStatus(c *gin.Context) {
	rec, err := h.services.Maintenance.Status(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errMaintenance, "maintenance_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Confirm stove cleaning
// @Description  Resets the burn-hour counter and re-enables ignition.
// @Tags         maintenance
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, maintenance"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/maintenance/confirm-cleaning [post]
// @Security     CronSecret
func (h *Handler) confirmCleaning(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Maintenance.ConfirmCleaning(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errConfirmCleaning, "maintenance_confirm_failed", err)
		return
	}
	resp := gin.H{"status": statusCleaned}
	// Best-effort: include the reset record.
	if rec, err := h.services.Maintenance.Status(ctx); err == nil {
		resp["maintenance"] = rec
	}
	c.JSON(http.StatusOK, resp)
}
