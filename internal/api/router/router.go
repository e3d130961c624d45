package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"result-generator/backend/config"
	"result-generator/backend/internal/api/handler"
	"result-generator/backend/internal/api/middleware"
	"result-generator/backend/internal/model"
	"result-generator/backend/pkg/jwt"
	"result-generator/backend/pkg/redis"
)

const (
	roleAdmin = model.RoleAdmin
	roleStaff = model.RoleStaff
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, cfg.Server.UploadLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	staffOnly := middleware.RoleAuth(roleAdmin, roleStaff)
	adminOnly := middleware.RoleAuth(roleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/register", adminOnly, h.Auth.Register)

			// 账号管理
			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.PUT("/:id/active", h.User.SetActive)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 学生档案
			students := authorized.Group("/students", staffOnly)
			{
				students.POST("", h.Student.Create)
				students.POST("/import", h.Student.Import)
				students.GET("", h.Student.List)
				students.GET("/next-admission", h.Student.NextAdmission)
				students.GET("/class/:className", h.Student.ListByClass)
				students.GET("/:id", h.Student.Get)
				students.PUT("/:id", h.Student.Update)
				students.DELETE("/:id", adminOnly, h.Student.Delete)
			}

			// 成绩
			results := authorized.Group("/results")
			{
				results.GET("/class/:className", staffOnly, h.Result.ListByClass)
				results.POST("/:studentId/marks", staffOnly, h.Result.SaveMarks)
				results.PUT("/:studentId/co-scholastic", staffOnly, h.Result.UpdateCoScholastic)
				results.POST("/:studentId/calculate", staffOnly, h.Result.Calculate)
				results.GET("/:studentId", middleware.StudentScope("studentId"), h.Result.Get)
				results.GET("/:studentId/marksheet",
					middleware.StudentScope("studentId"),
					middleware.RateLimit(rdb, cfg.RateLimit.MarksheetPerMinute, time.Minute),
					h.Marksheet.Download,
				)
			}

			// 科目配置
			subjects := authorized.Group("/subjects")
			{
				subjects.POST("", adminOnly, h.Subject.Upsert)
				subjects.GET("", adminOnly, h.Subject.ListAll)
				subjects.GET("/:className", h.Subject.GetByClass)
			}

			// 导出
			export := authorized.Group("/export", staffOnly)
			{
				export.GET("/results/class/:className", h.Export.ExportClassResults)
			}
		}
	}

	return r
}
