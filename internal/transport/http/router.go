package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"skillnest/internal/logger"
)

// RouterConfig holds transport settings that come from configuration.
type RouterConfig struct {
	AllowOrigins []string
}

// NewRouter mounts every endpoint under /api plus a health check.
func NewRouter(h *Handler, log *logger.Logger, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		courses := api.Group("/courses")
		courses.GET("", h.ListCourses)
		courses.POST("", h.CreateCourse)
		courses.GET("/:id", h.GetCourse)
		courses.PATCH("/:id/publish", h.PublishCourse)

		api.POST("/enrollments", h.Enroll)
		api.PATCH("/enrollments/:id/progress", h.UpdateProgress)
		api.POST("/quiz-attempts", h.SubmitQuiz)

		users := api.Group("/users/:userId")
		users.GET("/enrollments", h.ListEnrollments)
		users.GET("/certificates", h.ListCertificates)
		users.GET("/badges", h.ListUserBadges)
		users.GET("/stats", h.Stats)
		users.GET("/quiz-attempts", h.ListQuizAttempts)

		api.GET("/certificates/:code", h.VerifyCertificate)
		api.GET("/badges", h.ListBadges)
		api.POST("/badges", h.CreateBadge)
		api.GET("/leaderboard", h.Leaderboard)
	}
	return r
}
