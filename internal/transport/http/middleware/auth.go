package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/service"
	resp "go-contacts-api/internal/transport/http/response"
)

const keyUser = "currentUser"

// Auth 解析 Bearer 令牌并加载当前用户（走 redis 缓存），
// requireRole 非空时再做角色校验
func Auth(svc *service.AuthService, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		u, err := svc.CurrentUser(c.Request.Context(), strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && u.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(keyUser, u)
		c.Next()
	}
}

// CurrentUser 只在 Auth 之后的 handler 里调用
func CurrentUser(c *gin.Context) *domain.User {
	u, _ := c.Get(keyUser)
	cu, _ := u.(*domain.User)
	return cu
}
