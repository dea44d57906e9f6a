package repository

import (
	"context"

	"wabackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerServiceRepository handles CS sub-accounts and the devices they are scoped to
type CustomerServiceRepository interface {
	Create(ctx context.Context, cs *model.CustomerService) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerService, error)
	GetByUsername(ctx context.Context, userID uuid.UUID, username string) (*model.CustomerService, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.CustomerService, int64, error)
	Update(ctx context.Context, cs *model.CustomerService) error

	CreateDevice(ctx context.Context, device *model.Device) error
	GetDeviceByID(ctx context.Context, id uuid.UUID) (*model.Device, error)
	ListDevicesByUser(ctx context.Context, userID uuid.UUID) ([]model.Device, error)
	UpdateDevice(ctx context.Context, device *model.Device) error
	CountDevicesByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type customerServiceRepository struct {
	db *gorm.DB
}

func NewCustomerServiceRepository(db *gorm.DB) CustomerServiceRepository {
	return &customerServiceRepository{db: db}
}

func (r *customerServiceRepository) Create(ctx context.Context, cs *model.CustomerService) error {
	return GetDB(ctx, r.db).Create(cs).Error
}

func (r *customerServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerService, error) {
	var cs model.CustomerService
	if err := GetDB(ctx, r.db).Preload("Device").First(&cs, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *customerServiceRepository) GetByUsername(ctx context.Context, userID uuid.UUID, username string) (*model.CustomerService, error) {
	var cs model.CustomerService
	if err := GetDB(ctx, r.db).
		First(&cs, "user_id = ? AND username = ?", userID, username).Error; err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *customerServiceRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.CustomerService, int64, error) {
	var accounts []model.CustomerService
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.CustomerService{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Device").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Offset(offset).Limit(limit).
		Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *customerServiceRepository) Update(ctx context.Context, cs *model.CustomerService) error {
	return GetDB(ctx, r.db).Save(cs).Error
}

func (r *customerServiceRepository) CreateDevice(ctx context.Context, device *model.Device) error {
	return GetDB(ctx, r.db).Create(device).Error
}

func (r *customerServiceRepository) GetDeviceByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	var device model.Device
	if err := GetDB(ctx, r.db).First(&device, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *customerServiceRepository) ListDevicesByUser(ctx context.Context, userID uuid.UUID) ([]model.Device, error) {
	var devices []model.Device
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *customerServiceRepository) UpdateDevice(ctx context.Context, device *model.Device) error {
	return GetDB(ctx, r.db).Save(device).Error
}

func (r *customerServiceRepository) CountDevicesByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&model.Device{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
