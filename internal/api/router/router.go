package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teaching-hours/backend/config"
	"teaching-hours/backend/internal/api/handler"
	"teaching-hours/backend/internal/api/middleware"
	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/model"
	"teaching-hours/backend/pkg/jwt"
)

// Deps optional infrastructure of the router. Nil fields disable the feature they back.
type Deps struct {
	Blacklist middleware.Blacklist
	Limiter   middleware.Limiter
	DB        *gorm.DB
}

// Setup builds the gin engine
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("register validators failed", zap.Error(err))
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── health ──
	r.GET("/health", func(c *gin.Context) {
		if deps.DB != nil {
			sqlDB, err := deps.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, deps.Blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			users := authorized.Group("/users", admin)
			{
				users.GET("", h.User.ListUsers)
				users.POST("", h.User.CreateUser)
				users.GET("/:id", h.User.GetUser)
			}

			years := authorized.Group("/school-years")
			{
				years.GET("", h.SchoolYear.ListSchoolYears)
				years.GET("/active", h.SchoolYear.GetActiveSchoolYear)
				years.GET("/:id", h.SchoolYear.GetSchoolYear)
				years.POST("", admin, h.SchoolYear.CreateSchoolYear)
				years.POST("/rollover", admin, h.SchoolYear.Rollover)
				years.PUT("/:id/archive", admin, h.SchoolYear.ArchiveSchoolYear)
				years.DELETE("/:id", admin, h.SchoolYear.DeleteSchoolYear)
			}

			weeks := authorized.Group("/weeks")
			{
				weeks.GET("", h.Week.ListWeeks)
				weeks.GET("/export", h.Week.ExportICS)
				weeks.GET("/:id", h.Week.GetWeek)
				weeks.POST("", admin, h.Week.CreateWeek)
				weeks.POST("/generate", admin, h.Week.GenerateWeeks)
				weeks.POST("/import", admin, h.Week.ImportICS)
				weeks.PUT("/:id", admin, h.Week.UpdateWeek)
				weeks.DELETE("/:id", admin, h.Week.DeleteWeek)
			}

			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.POST("", admin, h.Class.CreateClass)
				classes.PUT("/:id", admin, h.Class.UpdateClass)
				classes.DELETE("/:id", admin, h.Class.DeleteClass)
			}

			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.POST("", admin, h.Subject.CreateSubject)
				subjects.PUT("/:id", admin, h.Subject.UpdateSubject)
				subjects.DELETE("/:id", admin, h.Subject.DeleteSubject)
			}

			teachers := authorized.Group("/teachers")
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.GET("/:id", h.Teacher.GetTeacher)
				teachers.POST("", admin, h.Teacher.CreateTeacher)
				teachers.POST("/import", admin, h.Teacher.ImportTeachers)
				teachers.PUT("/:id", admin, h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", admin, h.Teacher.DeleteTeacher)
			}

			records := authorized.Group("/teaching-records")
			{
				records.GET("", h.TeachingRecord.ListRecords)
				records.GET("/:id", h.TeachingRecord.GetRecord)
				records.POST("", h.TeachingRecord.CreateRecord)
				records.POST("/batch", h.TeachingRecord.BatchCreateRecords)
				records.PUT("/:id", h.TeachingRecord.UpdateRecord)
				records.DELETE("/:id", h.TeachingRecord.DeleteRecord)
			}

			export := authorized.Group("/export")
			{
				export.GET("/report", h.Export.ExportReport)
				export.POST("/report", h.Export.ExportReport)
			}
		}
	}

	return r
}
