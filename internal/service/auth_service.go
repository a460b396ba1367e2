package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-contacts-api/internal/core/auth"
	"go-contacts-api/internal/core/cache"
	"go-contacts-api/internal/domain"
	"go-contacts-api/pkg/utils"
)

// Mailer 邮件投递失败不阻断主流程，由调用方决定是否忽略
type Mailer interface {
	SendVerification(ctx context.Context, email, username, token string) error
	SendPasswordReset(ctx context.Context, email, username, token string) error
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthService struct {
	users   domain.UserRepository
	jwt     *auth.JWTer
	cache   *cache.Cache
	mail    Mailer
	userTTL time.Duration
	log     *zap.Logger
}

func NewAuthService(users domain.UserRepository, jwt *auth.JWTer, c *cache.Cache, mail Mailer, userTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, cache: c, mail: mail, userTTL: userTTL, log: log}
}

// Signup 创建未验证用户；重复邮箱返回 ErrEmailTaken
func (s *AuthService) Signup(ctx context.Context, email, username, password string) (*domain.User, error) {
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Role:         domain.RoleUser,
		AvatarURL:    utils.GravatarURL(email),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SendVerification 签发邮箱令牌并投递；失败只记日志（注册依旧成功，可重发）
func (s *AuthService) SendVerification(ctx context.Context, u *domain.User) {
	tok, err := s.jwt.IssueEmail(u.ID, u.Email)
	if err != nil {
		s.log.Error("issue email token", zap.Error(err))
		return
	}
	if err := s.mail.SendVerification(ctx, u.Email, u.Username, tok); err != nil {
		s.log.Error("send verification mail", zap.String("email", u.Email), zap.Error(err))
	}
}

// Login 未验证邮箱不放行
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Verified {
		return nil, domain.ErrNotVerified
	}
	return s.issuePair(ctx, u)
}

// Refresh 轮换：提交的 refresh 必须等于库里最后一次下发的；不一致则整个会话作废
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.Parse(refreshToken, auth.ScopeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if u.RefreshToken != refreshToken {
		_ = s.users.SetRefreshToken(ctx, u.ID, "")
		s.cache.Invalidate(ctx, userCacheKey(u.Email))
		return nil, domain.ErrInvalidToken
	}
	return s.issuePair(ctx, u)
}

func (s *AuthService) issuePair(ctx context.Context, u *domain.User) (*TokenPair, error) {
	access, err := s.jwt.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.IssueRefresh(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userCacheKey(u.Email))
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(s.jwt.AccessTTL),
	}, nil
}

// Verify 一次性消费：已验证过的用户再次提交视同非法令牌
func (s *AuthService) Verify(ctx context.Context, token string) error {
	claims, err := s.jwt.Parse(token, auth.ScopeEmail)
	if err != nil {
		return domain.ErrInvalidToken
	}
	u, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if u.Verified {
		return domain.ErrInvalidToken
	}
	if err := s.users.SetVerified(ctx, u.Email); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userCacheKey(u.Email))
	return nil
}

// RequestVerification 重发确认邮件；已验证或不存在都静默成功，不泄露账号状态
func (s *AuthService) RequestVerification(ctx context.Context, email string) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil || u.Verified {
		return
	}
	s.SendVerification(ctx, u)
}

// RequestPasswordReset 同上，静默处理未知邮箱
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return
	}
	tok, err := s.jwt.IssueEmail(u.ID, u.Email)
	if err != nil {
		s.log.Error("issue reset token", zap.Error(err))
		return
	}
	if err := s.mail.SendPasswordReset(ctx, u.Email, u.Username, tok); err != nil {
		s.log.Error("send reset mail", zap.String("email", u.Email), zap.Error(err))
	}
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwt.Parse(token, auth.ScopeEmail)
	if err != nil {
		return domain.ErrInvalidToken
	}
	u, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if err := s.users.SetPassword(ctx, u.ID, utils.HashPassword(newPassword)); err != nil {
		return err
	}
	// 重置后旧会话一并失效
	_ = s.users.SetRefreshToken(ctx, u.ID, "")
	s.cache.Invalidate(ctx, userCacheKey(u.Email))
	return nil
}

// CurrentUser 按邮箱走 redis 缓存，短 TTL，允许小窗口脏读
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwt.Parse(accessToken, auth.ScopeAccess)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := cache.GetOrLoadJSON[domain.User](s.cache, ctx, userCacheKey(claims.Email), s.userTTL,
		func(ctx context.Context) (*domain.User, error) {
			return s.users.FindByEmail(ctx, claims.Email)
		})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *AuthService) InvalidateUser(ctx context.Context, email string) {
	s.cache.Invalidate(ctx, userCacheKey(email))
}

func userCacheKey(email string) string { return fmt.Sprintf("user:%s", email) }
