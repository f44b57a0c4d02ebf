package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	apperrors "github.com/umalmyha/contacts-api/internal/errors"
	"github.com/umalmyha/contacts-api/internal/events"
	"github.com/umalmyha/contacts-api/internal/model"
	"github.com/umalmyha/contacts-api/internal/repository"
)

// ContactService represents business logic of contact entity
type ContactService interface {
	FindAll(context.Context) ([]*model.Contact, error)
	FindByID(context.Context, string) (*model.Contact, error)
	Create(context.Context, *model.Contact) (*model.Contact, error)
	Update(context.Context, *model.Contact) (*model.Contact, error)
	DeleteByID(context.Context, string) error
}

type contactService struct {
	contactRps repository.ContactRepository
	publisher  events.Publisher
}

// NewContactService builds ContactService
func NewContactService(contactRps repository.ContactRepository, publisher events.Publisher) ContactService {
	return &contactService{
		contactRps: contactRps,
		publisher:  publisher,
	}
}

func (s *contactService) FindAll(ctx context.Context) ([]*model.Contact, error) {
	return s.contactRps.FindAll(ctx)
}

func (s *contactService) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	c, err := s.contactRps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c == nil {
		return nil, apperrors.NewEntryNotFoundErr("contact with id " + id + " doesn't exist")
	}
	return c, nil
}

func (s *contactService) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	if err := s.contactRps.Create(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, events.KindCreated, c)
	return c, nil
}

// Update replaces all fields of existing contact
func (s *contactService) Update(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	updated, err := s.contactRps.Update(ctx, c)
	if err != nil {
		return nil, err
	}

	if updated == nil {
		return nil, apperrors.NewEntryNotFoundErr("contact with id " + c.ID + " doesn't exist")
	}

	s.publish(ctx, events.KindUpdated, updated)
	return updated, nil
}

// DeleteByID doesn't report missing contact
func (s *contactService) DeleteByID(ctx context.Context, id string) error {
	deleted, err := s.contactRps.DeleteByID(ctx, id)
	if err != nil {
		return err
	}

	if deleted {
		s.publish(ctx, events.KindDeleted, &model.Contact{ID: id})
	}
	return nil
}

func (s *contactService) publish(ctx context.Context, kind events.Kind, c *model.Contact) {
	if err := s.publisher.Publish(ctx, events.NewContactEvent(kind, c, time.Now())); err != nil {
		logrus.WithFields(logrus.Fields{
			"kind":      kind,
			"contactId": c.ID,
		}).Errorf("failed to publish contact event - %v", err)
	}
}
