package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/service"
	resp "go-contacts-api/internal/transport/http/response"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var in signupIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	u, err := h.auth.Signup(c.Request.Context(), in.Email, in.Username, in.Password)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	// 邮件投递不阻塞注册，请求结束后继续投
	go func(u *domain.User) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.auth.SendVerification(ctx, u)
	}(u)

	resp.Write(c, http.StatusCreated, gin.H{
		"user":   u,
		"detail": "user created, check your email for confirmation",
	})
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	pair, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, pair)
}

type refreshIn struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		// 刷新令牌问题一律按未授权处理，会话已作废
		if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrNotFound) {
			resp.Abort(c, resp.CodeUnauthorized, "invalid refresh token")
			return
		}
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, pair)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	if err := h.auth.Verify(c.Request.Context(), c.Param("token")); err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, gin.H{"message": "email confirmed"})
}

type emailIn struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) RequestVerify(c *gin.Context) {
	var in emailIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	h.auth.RequestVerification(c.Request.Context(), in.Email)
	resp.Write(c, http.StatusOK, gin.H{"message": "check your email for confirmation"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var in emailIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	h.auth.RequestPasswordReset(c.Request.Context(), in.Email)
	resp.Write(c, http.StatusOK, gin.H{"message": "check your email for the reset link"})
}

type resetIn struct {
	Token    string `json:"token"    binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var in resetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, resp.CodeUnprocessable, err.Error())
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), in.Token, in.Password); err != nil {
		resp.AbortErr(c, err)
		return
	}
	resp.Write(c, http.StatusOK, gin.H{"message": "password updated"})
}
