package domain

import (
	"context"
	"time"
)

type Contact struct {
	ID             string     `gorm:"primaryKey;type:varchar(32)" json:"id"`
	OwnerID        string     `gorm:"type:varchar(32);not null;index" json:"-"`
	FullName       string     `gorm:"size:128;not null" json:"fullName"`
	Email          string     `gorm:"size:255;not null" json:"email"`
	Phone          string     `gorm:"size:32" json:"phone,omitempty"`
	Birthday       *time.Time `gorm:"type:date" json:"birthday,omitempty"`
	AdditionalInfo string     `gorm:"type:text" json:"additionalInfo,omitempty"`
	Favorite       bool       `gorm:"not null;default:false" json:"favorite"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Contact) TableName() string { return "contacts" }

// ListFilter 列表/搜索条件，全部在 ownerID 范围内生效
type ListFilter struct {
	Favorite *bool
	Name     string // 模糊
	Email    string // 模糊
	Phone    string // 模糊
	Offset   int
	Limit    int
}

type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	FindByID(ctx context.Context, ownerID, id string) (*Contact, error)
	FindByEmail(ctx context.Context, ownerID, email string) (*Contact, error)
	List(ctx context.Context, ownerID string, f ListFilter) ([]Contact, error)
	Search(ctx context.Context, ownerID string, f ListFilter) ([]Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID string, days int, now time.Time) ([]Contact, error)
	Update(ctx context.Context, c *Contact) error
	SetFavorite(ctx context.Context, ownerID, id string, fav bool) (*Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
}
