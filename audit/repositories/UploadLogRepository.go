package repositories

import (
	"context"

	"inventory-intake-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadLogRepository interface {
	CreateUploadLogEntry(ctx context.Context, entry *models.UploadLogEntry) error
	GetUploadLogEntries(ctx context.Context, ownerScope uuid.UUID, pageSize int, offset int) ([]models.UploadLogEntry, int64, error)
}

type uploadLogRepository struct {
	db *gorm.DB
}

func NewUploadLogRepository(db *gorm.DB) UploadLogRepository {
	return &uploadLogRepository{db: db}
}

func (r *uploadLogRepository) CreateUploadLogEntry(ctx context.Context, entry *models.UploadLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *uploadLogRepository) GetUploadLogEntries(ctx context.Context, ownerScope uuid.UUID, pageSize int, offset int) ([]models.UploadLogEntry, int64, error) {
	var entries []models.UploadLogEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.UploadLogEntry{}).Where("owner_scope = ?", ownerScope)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Limit(pageSize).Offset(offset).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
