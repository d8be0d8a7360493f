package patient

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/platform/apierr"
)

type Service struct {
	repo Repository

	mu        sync.RWMutex
	listeners []func(patientID uuid.UUID)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// OnChange registers fn to run after a patient is updated or deleted.
func (s *Service) OnChange(fn func(patientID uuid.UUID)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Service) changed(id uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(id)
	}
}

func (s *Service) validate(p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apierr.Invalidf("name is required")
	}
	sex, ok := assessment.ParseSex(p.Sex)
	if !ok {
		return apierr.Invalidf("sex must be male or female")
	}
	p.Sex = string(sex)
	if p.Email != nil && *p.Email != "" {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			return apierr.Invalidf("invalid email: %s", *p.Email)
		}
	}
	var de *assessment.InvalidDemographicError
	if err := p.Demographics().Validate(); errors.As(err, &de) {
		return apierr.Invalidf("%s %s", de.Field, de.Reason)
	} else if err != nil {
		return err
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("patient %s: %w", p.ID, err)
	}
	s.changed(p.ID)
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("patient %s: %w", id, err)
	}
	s.changed(id)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
