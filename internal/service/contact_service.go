package service

import (
	"context"
	"errors"
	"time"

	"go-contacts-api/internal/domain"
	"go-contacts-api/pkg/utils"
)

type ContactService struct {
	contacts domain.ContactRepository
}

func NewContactService(contacts domain.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// Create 同一 owner 下联系人邮箱唯一
func (s *ContactService) Create(ctx context.Context, ownerID string, c *domain.Contact) (*domain.Contact, error) {
	if _, err := s.contacts.FindByEmail(ctx, ownerID, c.Email); err == nil {
		return nil, domain.ErrContactEmailExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c.ID = utils.NewID()
	c.OwnerID = ownerID
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	return s.contacts.FindByID(ctx, ownerID, id)
}

func (s *ContactService) List(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Contact, error) {
	return s.contacts.List(ctx, ownerID, f)
}

func (s *ContactService) Search(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Contact, error) {
	return s.contacts.Search(ctx, ownerID, f)
}

func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]domain.Contact, error) {
	if days <= 0 || days > 30 {
		days = 7
	}
	return s.contacts.UpcomingBirthdays(ctx, ownerID, days, time.Now())
}

func (s *ContactService) Update(ctx context.Context, ownerID, id string, c *domain.Contact) (*domain.Contact, error) {
	c.ID = id
	c.OwnerID = ownerID
	if err := s.contacts.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.contacts.FindByID(ctx, ownerID, id)
}

func (s *ContactService) SetFavorite(ctx context.Context, ownerID, id string, fav bool) (*domain.Contact, error) {
	return s.contacts.SetFavorite(ctx, ownerID, id, fav)
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	return s.contacts.Delete(ctx, ownerID, id)
}
