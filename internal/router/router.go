package router

import (
	"github.com/gin-gonic/gin"

	"cfdibox/internal/config"
	"cfdibox/internal/handler"
	"cfdibox/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, batchH *handler.BatchHandler, healthH *handler.HealthHandler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health check
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")

	batches := v1.Group("/batches")
	batches.POST("", batchH.Process)
	batches.GET("/:id", batchH.Get)
	batches.GET("/:id/export/csv", batchH.ExportCSV)
	batches.GET("/:id/export/xlsx", batchH.ExportXLSX)

	return r
}
