package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/internal/handler"
	"github.com/noah-isme/campushub-api/internal/middleware"
	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/service"
	"github.com/noah-isme/campushub-api/pkg/config"
	"github.com/noah-isme/campushub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campushub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campushub-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Semester     *handler.SemesterHandler
	Planner      *handler.PlannerHandler
	IntakeCourse *handler.IntakeCourseHandler
	Metrics      *handler.MetricsHandler
}

// Setup builds the gin engine with global middleware and every route.
func Setup(cfg *config.Config, h Handlers, sessions middleware.SessionValidator, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(sessions))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	semesters := api.Group("/semesters")
	{
		semesters.GET("", h.Semester.List)
		semesters.GET("/:id", h.Semester.Get)
		semesters.POST("", staff, h.Semester.Create)
		semesters.PUT("/:id", staff, h.Semester.Update)
		semesters.DELETE("/:id", staff, h.Semester.Delete)
	}

	intakeCourses := api.Group("/intake-courses/:id")
	{
		intakeCourses.GET("/progress", h.Planner.Progress)
		intakeCourses.GET("/timeline", h.Planner.Timeline)
		intakeCourses.GET("/capacity", h.IntakeCourse.Capacity)
		intakeCourses.GET("/export", h.IntakeCourse.Export)
	}

	api.GET("/intakes/:id/courses", h.IntakeCourse.ListByIntake)
	api.POST("/planner/derive", h.Planner.Derive)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found", "status": http.StatusNotFound}})
	})

	return r
}
