package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/service"
	mdw "go-contacts-api/internal/transport/http/middleware"
	resp "go-contacts-api/internal/transport/http/response"
)

type UserHandler struct {
	users          *service.UserService
	maxAvatarBytes int64
}

func NewUserHandler(users *service.UserService, maxAvatarBytes int64) *UserHandler {
	return &UserHandler{users: users, maxAvatarBytes: maxAvatarBytes}
}

func (h *UserHandler) Me(c *gin.Context) {
	resp.Write(c, http.StatusOK, mdw.CurrentUser(c))
}

// UpdateAvatar multipart 字段名 file；超限或图床出错都直接报给调用方
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		resp.Abort(c, resp.CodeUnprocessable, "file field is required")
		return
	}
	if fh.Size > h.maxAvatarBytes {
		resp.Abort(c, resp.CodeUnprocessable, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	defer f.Close()

	url, err := h.users.UpdateAvatar(c.Request.Context(), mdw.CurrentUser(c), f)
	if err != nil {
		resp.Abort(c, resp.CodeBadRequest, "avatar upload failed")
		return
	}
	resp.Write(c, http.StatusOK, gin.H{"avatarUrl": url})
}
