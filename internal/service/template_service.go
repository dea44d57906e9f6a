package service

import (
	"context"
	"errors"

	"wabackend/internal/model"
	"wabackend/internal/repository"

	"github.com/google/uuid"
)

// DTOs for Request validation
type CreateTemplateRequest struct {
	Name string `json:"name" binding:"required"`
	Body string `json:"body" binding:"required"`
}

type UpdateTemplateRequest struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// TemplateService manages per-tenant reusable message templates
type TemplateService interface {
	CreateTemplate(ctx context.Context, userID uuid.UUID, req CreateTemplateRequest) (*model.Template, error)
	GetTemplate(ctx context.Context, userID, templateID uuid.UUID) (*model.Template, error)
	ListTemplates(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Template, int64, error)
	UpdateTemplate(ctx context.Context, userID, templateID uuid.UUID, req UpdateTemplateRequest) (*model.Template, error)
	DeleteTemplate(ctx context.Context, userID, templateID uuid.UUID) error
}

type templateService struct {
	repo repository.TemplateRepository
}

// NewTemplateService returns a new instance of TemplateService
func NewTemplateService(repo repository.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

func (s *templateService) CreateTemplate(ctx context.Context, userID uuid.UUID, req CreateTemplateRequest) (*model.Template, error) {
	template := &model.Template{
		UserID: userID,
		Name:   req.Name,
		Body:   req.Body,
	}
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) GetTemplate(ctx context.Context, userID, templateID uuid.UUID) (*model.Template, error) {
	template, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		return nil, errors.New("template not found")
	}
	if template.UserID != userID {
		return nil, errors.New("template not found")
	}
	return template, nil
}

func (s *templateService) ListTemplates(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Template, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListByUser(ctx, userID, page, limit)
}

func (s *templateService) UpdateTemplate(ctx context.Context, userID, templateID uuid.UUID, req UpdateTemplateRequest) (*model.Template, error) {
	template, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		return nil, errors.New("template not found")
	}
	if template.UserID != userID {
		return nil, errors.New("template not found")
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Body != "" {
		template.Body = req.Body
	}

	if err := s.repo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, userID, templateID uuid.UUID) error {
	template, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		return errors.New("template not found")
	}
	if template.UserID != userID {
		return errors.New("template not found")
	}
	return s.repo.Delete(ctx, templateID)
}
