package handlers

import (
	"stove_automation/internal/logger"
	"stove_automation/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	cronSecret string
}

// NewHandler constructs a new HTTP handler with dependencies. cronSecret
// guards the cron trigger and the /api/v1 group.
func NewHandler(services *service.Service, log *logger.Logger, cronSecret string) *Handler {
	return &Handler{services: services, log: log, cronSecret: cronSecret}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// External cron trigger
	h.registerCronRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live stove state over WebSocket, same port
	router.GET("/ws", h.cronSecretMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerCronRoutes(r *gin.Engine) {
	cron := r.Group("/api/cron", h.cronSecretMiddleware)
	{
		cron.GET("/scheduler-check", h.schedulerCheck)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.cronSecretMiddleware)
	{
		h.registerStoveRoutes(api)
		h.registerMaintenanceRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerStoveRoutes(api *gin.RouterGroup) {
	api.GET("/stove/state", h.getState)

	cron := api.Group("/cron")
	{
		cron.GET("/health", h.cronHealth)
		cron.GET("/last-result", h.lastResult)
	}
}

func (h *Handler) registerMaintenanceRoutes(api *gin.RouterGroup) {
	maintenance := api.Group("/maintenance")
	{
		maintenance.GET("", h.maintenanceStatus)
		maintenance.POST("/confirm-cleaning", h.confirmCleaning)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
		logs.GET("/summary", h.logSummary)
	}
}
