package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-contacts-api/internal/core/config"
	"go-contacts-api/internal/core/server"
	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/service"
	"go-contacts-api/internal/transport/http/handler"
	mdw "go-contacts-api/internal/transport/http/middleware"
)

type Deps struct {
	Log      *zap.Logger
	Cfg      *config.Config
	RDB      *redis.Client
	Auth     *service.AuthService
	Users    *service.UserService
	Contacts *service.ContactService
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewEngine(d.Log)

	rl := d.Cfg.RateLimit
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(globalLimit(rl.GlobalRPS), rl.GlobalBurst),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	authH := handler.NewAuthHandler(d.Auth)
	userH := handler.NewUserHandler(d.Users, rl.MaxAvatarBytes)
	contactH := handler.NewContactHandler(d.Contacts)

	// 公共
	users := api.Group("/users")
	{
		users.POST("/signup", authH.Signup)
		users.POST("/login", authH.Login)
		users.POST("/refresh", authH.Refresh)
		users.GET("/verify/:token", authH.Verify)
		users.POST("/request-verify", authH.RequestVerify)
		users.POST("/request-password-reset", authH.RequestPasswordReset)
		users.POST("/password-reset", authH.ResetPassword)
	}

	// 鉴权
	authed := api.Group("", mdw.Auth(d.Auth, ""))
	{
		authed.GET("/users/me", userH.Me)
		authed.PATCH("/users/avatar", userH.UpdateAvatar)

		contacts := authed.Group("/contacts")
		{
			// 创建单独挂按用户限速
			contacts.POST("",
				mdw.RateLimitPerUser(d.RDB, rl.CreateContactTimes, time.Duration(rl.CreateContactWindowSec)*time.Second),
				contactH.Create)
			contacts.GET("", contactH.List)
			contacts.GET("/search", contactH.Search)
			contacts.GET("/birthdays", contactH.Birthdays)
			contacts.GET("/:id", contactH.Get)
			contacts.PUT("/:id", contactH.Update)
			contacts.PATCH("/:id/favorite", contactH.SetFavorite)
			contacts.DELETE("/:id", contactH.Delete)
		}
	}

	// 管理端
	adminH := handler.NewAdminHandler(d.Users)
	admin := r.Group("/admin/v1", mdw.Auth(d.Auth, domain.RoleAdmin))
	{
		admin.GET("/users", adminH.ListUsers)
		admin.POST("/users/:id/ban", adminH.BanUser)
	}

	return r
}

func globalLimit(rps int) rate.Limit {
	if rps <= 0 {
		return 200
	}
	return rate.Limit(rps)
}
