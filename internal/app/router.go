package app

import (
	"wrongbook_backend/docs"
	"wrongbook_backend/internal/config"
	"wrongbook_backend/internal/middleware"
	"wrongbook_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
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
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 错题管理
		wrongQuestions := authGroup.Group("/wrong-questions")
		{
			wrongQuestions.POST("/upload", c.wrongQuestion.Upload)
			wrongQuestions.POST("/batch-upload", c.wrongQuestion.BatchUpload)
			wrongQuestions.GET("/list", c.wrongQuestion.List)
			wrongQuestions.GET("/:id", c.wrongQuestion.Get)
			wrongQuestions.PUT("/:id", c.wrongQuestion.Update)
			wrongQuestions.DELETE("/:id", c.wrongQuestion.Delete)
		}

		// 掌握度
		mastery := authGroup.Group("/mastery")
		{
			mastery.POST("/update", c.mastery.Update)
			mastery.POST("/batch-update", c.mastery.BatchUpdate)
			mastery.GET("/record/:questionId", c.mastery.GetRecord)
			mastery.GET("/records", c.mastery.ListRecords)
			mastery.GET("/stats", c.mastery.Stats)
		}

		// 复习计划
		review := authGroup.Group("/review")
		{
			review.POST("/generate", c.review.Generate)
			review.POST("/batch-generate", c.review.GenerateBatch)
			review.GET("/plans", c.review.ListPlans)
			review.GET("/today", c.review.Today)
			review.PUT("/plan/:id/status", c.review.UpdateStatus)
			review.DELETE("/plan/:id", c.review.DeletePlan)
			review.GET("/stats", c.review.Stats)
		}

		// 类似题目
		questions := authGroup.Group("/questions")
		{
			questions.POST("/generate-similar", c.question.GenerateSimilar)
			questions.POST("/batch-generate-similar", c.question.BatchGenerateSimilar)
			questions.POST("/verify-answer", c.question.VerifyAnswer)
			questions.GET("/similar/:wrongQuestionId", c.question.GetSimilar)
			questions.GET("/:id", c.question.Get)
			questions.DELETE("/:id", c.question.Delete)
		}

		// 错题分析
		analysis := authGroup.Group("/analysis")
		{
			analysis.GET("/category-stats", c.analysis.CategoryStats)
			analysis.GET("/exam-points", c.analysis.ExamPointStats)
			analysis.GET("/weakness", c.analysis.Weakness)
			analysis.GET("/exam-importance", c.analysis.ExamImportance)
		}
	}
}
