package service

import (
	"context"
	"io"

	"go-contacts-api/internal/domain"
)

type AvatarUploader interface {
	Upload(ctx context.Context, userEmail string, file io.Reader) (string, error)
}

type UserService struct {
	users  domain.UserRepository
	avatar AvatarUploader
	auth   *AuthService
}

func NewUserService(users domain.UserRepository, avatar AvatarUploader, auth *AuthService) *UserService {
	return &UserService{users: users, avatar: avatar, auth: auth}
}

// UpdateAvatar 上传失败直接报给调用方：这个操作的唯一目的就是上传
func (s *UserService) UpdateAvatar(ctx context.Context, u *domain.User, file io.Reader) (string, error) {
	url, err := s.avatar.Upload(ctx, u.Email, file)
	if err != nil {
		return "", err
	}
	if err := s.users.SetAvatar(ctx, u.ID, url); err != nil {
		return "", err
	}
	s.auth.InvalidateUser(ctx, u.Email)
	return url, nil
}

// 管理端

func (s *UserService) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, q, offset, limit)
}

func (s *UserService) Ban(ctx context.Context, id string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auth.InvalidateUser(ctx, u.Email)
	return nil
}
