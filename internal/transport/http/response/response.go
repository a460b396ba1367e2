package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Write 成功响应，status 用真实 HTTP 状态（200/201/204）
func Write(c *gin.Context, status int, data interface{}) {
	c.JSON(status, OK(data))
}

// Abort 失败响应，code 同时作为 HTTP 状态写出
func Abort(c *gin.Context, code int, customMsg string) {
	c.AbortWithStatusJSON(code, Error(code, customMsg))
}

// AbortErr 领域错误到状态码的唯一映射点，不向外抛内部细节
func AbortErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		Abort(c, CodeNotFound, "not found")
	case errors.Is(err, domain.ErrEmailTaken):
		Abort(c, CodeConflict, "account already exists")
	case errors.Is(err, domain.ErrContactEmailExists):
		Abort(c, CodeConflict, "contact email already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		Abort(c, CodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrNotVerified):
		Abort(c, CodeUnauthorized, "email not confirmed")
	case errors.Is(err, domain.ErrInvalidToken):
		Abort(c, CodeBadRequest, "invalid token")
	case errors.Is(err, domain.ErrRateLimited):
		Abort(c, CodeTooMany, "too many requests")
	default:
		_ = c.Error(err)
		Abort(c, CodeServerError, http.StatusText(http.StatusInternalServerError))
	}
}
