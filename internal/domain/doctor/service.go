package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/platform/websocket"
)

var ErrNotFound = errors.New("doctor not found")

type Service struct {
	repo   Repository
	events websocket.EventPublisher
}

func NewService(repo Repository, events websocket.EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Specialty == "" {
		return fmt.Errorf("specialty is required")
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return fmt.Errorf("failed to update doctors: %w", err)
	}
	s.publish(ctx, "doctor.created", d)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch doctors: %w", err)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if _, err := s.repo.GetByID(ctx, d.ID); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return fmt.Errorf("failed to update doctors: %w", err)
	}
	s.publish(ctx, "doctor.updated", d)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	s.publish(ctx, "doctor.deleted", &Doctor{ID: id})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, d *Doctor) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	_ = s.events.Publish(ctx, websocket.Event{
		Type:      eventType,
		Topic:     websocket.TopicDoctors,
		EntityID:  d.ID.String(),
		Timestamp: time.Now(),
		Data:      data,
	})
}
