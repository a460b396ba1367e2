package repo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-contacts-api/internal/domain"
)

type ContactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID 始终带 owner 条件：他人的联系人等同不存在
func (r *ContactRepo) FindByID(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.WithContext(ctx).First(&c, "id = ? AND owner_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) FindByEmail(ctx context.Context, ownerID, email string) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.WithContext(ctx).First(&c, "email = ? AND owner_id = ?", email, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) List(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Contact, error) {
	q := r.scoped(ctx, ownerID)
	if f.Favorite != nil {
		q = q.Where("favorite = ?", *f.Favorite)
	}
	var out []domain.Contact
	err := q.Order("created_at DESC").Offset(f.Offset).Limit(normLimit(f.Limit)).Find(&out).Error
	return out, err
}

func (r *ContactRepo) Search(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Contact, error) {
	q := r.scoped(ctx, ownerID)
	if s := strings.TrimSpace(f.Name); s != "" {
		q = q.Where("full_name LIKE ?", "%"+s+"%")
	}
	if s := strings.TrimSpace(f.Email); s != "" {
		q = q.Where("email LIKE ?", "%"+s+"%")
	}
	if s := strings.TrimSpace(f.Phone); s != "" {
		q = q.Where("phone LIKE ?", "%"+s+"%")
	}
	var out []domain.Contact
	err := q.Order("full_name").Offset(f.Offset).Limit(normLimit(f.Limit)).Find(&out).Error
	return out, err
}

// UpcomingBirthdays 忽略年份，近 days 天内过生日的联系人。
// 月份提取各数据库方言不一，生日字段非空的行在应用侧过滤。
func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, ownerID string, days int, now time.Time) ([]domain.Contact, error) {
	var rows []domain.Contact
	if err := r.scoped(ctx, ownerID).Where("birthday IS NOT NULL").Find(&rows).Error; err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]domain.Contact, 0)
	for _, c := range rows {
		next := nextOccurrence(*c.Birthday, today)
		if diff := int(next.Sub(today).Hours() / 24); diff <= days {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return nextOccurrence(*out[i].Birthday, today).Before(nextOccurrence(*out[j].Birthday, today))
	})
	return out, nil
}

// nextOccurrence 生日在今年（或已过则明年）的日期；2/29 在平年顺延到 3/1
func nextOccurrence(bd, today time.Time) time.Time {
	next := replaceYear(bd, today.Year())
	if next.Before(today) {
		next = replaceYear(bd, today.Year()+1)
	}
	return next
}

func replaceYear(d time.Time, year int) time.Time {
	if d.Month() == time.February && d.Day() == 29 && !isLeap(year) {
		return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func isLeap(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }

func (r *ContactRepo) Update(ctx context.Context, c *domain.Contact) error {
	res := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("id = ? AND owner_id = ?", c.ID, c.OwnerID).
		Select("full_name", "email", "phone", "birthday", "additional_info", "favorite").
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) SetFavorite(ctx context.Context, ownerID, id string, fav bool) (*domain.Contact, error) {
	res := r.db.WithContext(ctx).Model(&domain.Contact{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("favorite", fav)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, ownerID, id)
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContactRepo) scoped(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Contact{}).Where("owner_id = ?", ownerID)
}

func normLimit(n int) int {
	if n <= 0 {
		return 10
	}
	if n > 100 {
		return 100
	}
	return n
}
