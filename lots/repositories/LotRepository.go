package repositories

import (
	"context"
	"fmt"

	"inventory-intake-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LotRepository interface {
	NextLotSequence(ctx context.Context, ownerScope uuid.UUID, year int) (int, error)
	CreateLot(ctx context.Context, lot *models.Lot) error
	CreateLotEntries(ctx context.Context, entries []models.LotEntry) error
	GetLotByID(ctx context.Context, id uuid.UUID) (*models.Lot, error)
	GetLotEntries(ctx context.Context, lotID uuid.UUID) ([]models.LotEntry, error)
	DeleteLot(ctx context.Context, lot *models.Lot) error
	GetFilteredLots(ctx context.Context, ownerScope uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.Lot, int64, error)
}

type lotRepository struct {
	db *gorm.DB
}

func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepository{db: db}
}

// NextLotSequence returns one more than the highest existing sequence for the
// owner and year, starting at 1. The unique index on (owner_scope, lot_number)
// is the real guard against two concurrent uploads minting the same number;
// callers retry on a duplicate-key failure.
func (r *lotRepository) NextLotSequence(ctx context.Context, ownerScope uuid.UUID, year int) (int, error) {
	prefix := fmt.Sprintf("LOT-%d-", year)

	var maxSeq int
	err := r.db.WithContext(ctx).
		Model(&models.Lot{}).
		Select("COALESCE(MAX(CAST(RIGHT(lot_number, 4) AS INTEGER)), 0)").
		Where("owner_scope = ? AND lot_number LIKE ?", ownerScope, prefix+"%").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

func (r *lotRepository) CreateLot(ctx context.Context, lot *models.Lot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *lotRepository) CreateLotEntries(ctx context.Context, entries []models.LotEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&entries, 200).Error
}

func (r *lotRepository) GetLotByID(ctx context.Context, id uuid.UUID) (*models.Lot, error) {
	var lot models.Lot
	err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepository) GetLotEntries(ctx context.Context, lotID uuid.UUID) ([]models.LotEntry, error) {
	var entries []models.LotEntry
	err := r.db.WithContext(ctx).Where("lot_id = ?", lotID).Find(&entries).Error
	return entries, err
}

// DeleteLot removes the lot row; lot entries go with it through the cascade
// on lot_id.
func (r *lotRepository) DeleteLot(ctx context.Context, lot *models.Lot) error {
	return r.db.WithContext(ctx).Delete(lot).Error
}

// GetFilteredLots retrieves lots with filtering and pagination.
func (r *lotRepository) GetFilteredLots(ctx context.Context, ownerScope uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.Lot, int64, error) {
	var lots []models.Lot
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Lot{}).Where("owner_scope = ?", ownerScope)

	for key, value := range filters {
		switch key {
		case "status":
			db = db.Where("status = ?", value)
		case "lot_number":
			db = db.Where("lot_number ILIKE ?", "%"+value+"%")
		case "file_name":
			db = db.Where("file_name ILIKE ?", "%"+value+"%")
		case "created_by":
			db = db.Where("created_by ILIKE ?", "%"+value+"%")
		case "start_date":
			db = db.Where("Date(created_at) >= ?", value)
		case "end_date":
			db = db.Where("Date(created_at) <= ?", value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Limit(pageSize).Offset(offset).Order("created_at DESC").Find(&lots).Error; err != nil {
		return nil, 0, err
	}

	return lots, total, nil
}
