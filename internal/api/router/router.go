package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"capstone/internal/api/handler"
	"capstone/internal/api/middleware"
	"capstone/internal/pkg/config"
	"capstone/internal/pkg/jwt"
	"capstone/internal/pkg/metrics"
	"capstone/internal/service"
)

// Setup 设置路由
func Setup(cfg *config.Config, services *service.Services, tokens *jwt.Manager) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化Handler
	catalogHandler := handler.NewCatalogHandler(services.Term, services.Section, services.Continuation)
	teamHandler := handler.NewTeamHandler(services.Team)
	invitationHandler := handler.NewInvitationHandler(services.Invitation)
	projectHandler := handler.NewProjectHandler(services.Project, services.Advisor)
	userHandler := handler.NewUserHandler(services.User)
	notificationHandler := handler.NewNotificationHandler(services.Notification)

	// API v1, 全部需要认证
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(tokens, services.User))
	{
		// 用户
		v1.POST("/users", userHandler.Upsert)
		v1.GET("/users/me", userHandler.Me)
		v1.GET("/users/:id", userHandler.Get)

		// 学期
		v1.POST("/terms", catalogHandler.CreateTerm)
		v1.GET("/terms", catalogHandler.ListTerms)
		v1.DELETE("/terms/:id", catalogHandler.DeleteTerm)

		// 班级、选课与续接
		sections := v1.Group("/sections")
		{
			sections.POST("", catalogHandler.CreateSection)
			sections.GET("", catalogHandler.ListSections)
			sections.GET("/:id", catalogHandler.GetSection)
			sections.PUT("/:id", catalogHandler.UpdateSection)
			sections.PUT("/:id/lock", catalogHandler.SetTeamLock)
			sections.DELETE("/:id", catalogHandler.DeleteSection)
			sections.POST("/:id/enrollments", catalogHandler.Enroll)
			sections.GET("/:id/enrollments", catalogHandler.ListEnrollments)
			sections.POST("/:id/continue", catalogHandler.Continue)
		}

		// 团队
		teams := v1.Group("/teams")
		{
			teams.POST("", teamHandler.Create)
			teams.GET("", teamHandler.List)
			teams.GET("/mine", teamHandler.Mine)
			teams.GET("/:id", teamHandler.Get)
			teams.DELETE("/:id", teamHandler.Delete)
			teams.POST("/:id/invitations", teamHandler.Invite)
			teams.POST("/:id/leave", teamHandler.Leave)
			teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)
			teams.POST("/:id/project", projectHandler.Create)
		}

		// 邀请
		invitations := v1.Group("/invitations")
		{
			invitations.GET("", invitationHandler.List)
			invitations.POST("/:id/accept", invitationHandler.Accept)
			invitations.POST("/:id/reject", invitationHandler.Reject)
		}

		// 项目与指导教师
		projects := v1.Group("/projects")
		{
			projects.GET("/pending-review", projectHandler.PendingReviews)
			projects.GET("/:id", projectHandler.Get)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.POST("/:id/decision", projectHandler.Decide)
			projects.PUT("/:id/advisor", projectHandler.AttachAdvisor)
			projects.DELETE("/:id/advisor", projectHandler.DetachAdvisor)
		}
		v1.GET("/advisors/available", projectHandler.AvailableAdvisors)

		// 通知
		v1.GET("/notifications", notificationHandler.List)
		v1.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	return r
}
