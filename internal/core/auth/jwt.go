package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-contacts-api/pkg/utils"
)

// token 用途，混用直接判非法
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"` // "user" or "admin"
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
}

func (j *JWTer) IssueAccess(uid, email, role string) (string, error) {
	return j.issue(uid, email, role, ScopeAccess, j.AccessTTL)
}

func (j *JWTer) IssueRefresh(uid, email, role string) (string, error) {
	return j.issue(uid, email, role, ScopeRefresh, j.RefreshTTL)
}

// IssueEmail 邮箱确认用的一次性令牌
func (j *JWTer) IssueEmail(uid, email string) (string, error) {
	return j.issue(uid, email, "", ScopeEmail, j.EmailTTL)
}

func (j *JWTer) issue(uid, email, role, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   uid,
		Email: email,
		Role:  role,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti 保证同一秒内签出的两个 token 串也不同，refresh 轮换依赖这一点
			ID:        utils.NewID(),
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Parse 校验签名与 scope，scope 不匹配一律按非法处理
func (j *JWTer) Parse(tokenStr, scope string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, ErrInvalidToken
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Scope != scope {
		return nil, ErrInvalidToken
	}
	return c, nil
}
