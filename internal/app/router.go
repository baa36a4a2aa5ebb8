package app

import (
	"lingua_learn_backend/docs"
	"lingua_learn_backend/internal/config"
	"lingua_learn_backend/internal/middleware"
	"lingua_learn_backend/internal/model"
	"lingua_learn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		progress := authGroup.Group("/progress")
		{
			progress.GET("", c.progress.GetProgress)
			progress.POST("/lessons/:lessonId", c.progress.UpdateLessonProgress)
			progress.POST("/lessons/:lessonId/sections", c.progress.UpdateSectionProgress)
			progress.PUT("/current-lesson", c.progress.SetCurrentLesson)
			progress.POST("/practice-sessions", c.progress.RecordPracticeSession)
		}

		achievements := authGroup.Group("/achievements")
		{
			achievements.GET("", c.achievement.GetUserAchievements)
			achievements.POST("/check", c.achievement.CheckAchievements)
			achievements.PATCH("/:id/viewed", c.achievement.MarkViewed)
			achievements.GET("/leaderboard", c.achievement.GetLeaderboard)
		}

		practice := authGroup.Group("/practice")
		{
			practice.POST("/pronunciation", c.practice.SubmitPronunciation)
		}

		// 运维接口，仅管理员可用
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.POST("/reconcile", c.progress.TriggerReconcile)
		}
	}
}
