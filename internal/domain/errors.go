package domain

import "errors"

// 业务错误在这里收口，handler 统一映射到 HTTP 状态码
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrContactEmailExists = errors.New("contact email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRateLimited        = errors.New("too many requests")
)
