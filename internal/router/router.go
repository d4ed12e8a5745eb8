package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"surveydq/internal/handler"
	"surveydq/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log *zap.Logger,
	allowedOrigins []string,
	maxUploadBytes int64,
	runH *handler.ValidationHandler,
	profileH *handler.ProfileHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()
	// Two workbooks per request plus multipart overhead.
	if maxUploadBytes > 0 {
		r.MaxMultipartMemory = 2*maxUploadBytes + 1<<20
	}

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.GET("/profile", profileH.Get)
	v1.GET("/issue-kinds", profileH.IssueKinds)

	runs := v1.Group("/runs")
	runs.POST("", runH.Run)
	runs.GET("", runH.List)
	runs.GET("/:id", runH.GetByID)
	runs.GET("/:id/report", runH.ReportURL)

	return r
}
