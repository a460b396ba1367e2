package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string `gorm:"size:64;not null" json:"username"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         string `gorm:"size:16;not null;default:user" json:"role"`
	Verified     bool   `gorm:"not null;default:false" json:"verified"`
	AvatarURL    string `gorm:"size:255" json:"avatarUrl,omitempty"`
	RefreshToken string `gorm:"size:512" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	SetVerified(ctx context.Context, email string) error
	SetPassword(ctx context.Context, id, hash string) error
	SetAvatar(ctx context.Context, id, url string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	SoftDelete(ctx context.Context, id string) error
}
