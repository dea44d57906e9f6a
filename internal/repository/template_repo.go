package repository

import (
	"context"

	"wabackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *model.Template) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Template, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Template, int64, error)
	Update(ctx context.Context, template *model.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	return GetDB(ctx, r.db).Create(template).Error
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	var template model.Template
	if err := GetDB(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Template, int64, error) {
	var templates []model.Template
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Template{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (r *templateRepository) Update(ctx context.Context, template *model.Template) error {
	return GetDB(ctx, r.db).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Template{}).Error
}
