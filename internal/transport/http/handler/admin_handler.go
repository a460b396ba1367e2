package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/service"
	resp "go-contacts-api/internal/transport/http/response"
)

type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

type userRow struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, total, err := h.users.List(c.Request.Context(),
		c.Query("q"),
		atoiDefault(c.Query("offset"), 0),
		atoiDefault(c.Query("limit"), 20),
	)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	items := make([]userRow, 0, len(users))
	for _, u := range users {
		items = append(items, userRow{
			ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role, Verified: u.Verified,
		})
	}
	resp.Write(c, http.StatusOK, gin.H{"total": total, "items": items})
}

// BanUser 软删，封禁后联系人一并不可见
func (h *AdminHandler) BanUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		resp.Abort(c, resp.CodeBadRequest, "missing id")
		return
	}
	if err := h.users.Ban(c.Request.Context(), id); err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, gin.H{"id": id})
}
