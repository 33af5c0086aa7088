package repositories

import (
	"context"
	"strings"

	"inventory-intake-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	BulkCreateProducts(ctx context.Context, products []models.Product) error
	CreateProduct(ctx context.Context, product *models.Product) error
	GetFilteredProducts(ctx context.Context, ownerScope uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.Product, int64, error)
	DeleteProductsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	CountOrderLineReferences(ctx context.Context, productIDs []uuid.UUID) (int64, error)
	LogBulkUploadProductErrors(errs []models.BulkUploadErrorProducts) error
	LogEmailSent(emailLog *models.EmailLog) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// BulkCreateProducts inserts a whole batch in one statement. The statement is
// atomic: when it fails nothing from the batch was persisted, which is what
// allows the uploader to retry every record individually.
func (r *productRepository) BulkCreateProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&products).Error
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetFilteredProducts retrieves products for one owner scope with filtering
// and pagination.
func (r *productRepository) GetFilteredProducts(ctx context.Context, ownerScope uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Product{}).Where("owner_scope = ?", ownerScope)

	for key, value := range filters {
		switch key {
		case "status":
			db = db.Where("status = ?", value)
		case "sku":
			db = db.Where("sku ILIKE ?", "%"+value+"%")
		case "name":
			db = db.Where("name ILIKE ?", "%"+value+"%")
		case "brand":
			db = db.Where("brand ILIKE ?", "%"+value+"%")
		case "low_stock":
			if strings.ToLower(value) == "true" {
				db = db.Where("stock < min_stock")
			}
		case "start_date":
			db = db.Where("Date(created_at) >= ?", value)
		case "end_date":
			db = db.Where("Date(created_at) <= ?", value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Limit(pageSize).Offset(offset).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) DeleteProductsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	return result.RowsAffected, result.Error
}

// CountOrderLineReferences counts how many of the given products are already
// referenced by order lines. Lots backing sold inventory are never deletable.
func (r *productRepository) CountOrderLineReferences(ctx context.Context, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("product_id IN ?", productIDs).
		Distinct("product_id").
		Count(&count).Error
	return count, err
}

func (r *productRepository) LogBulkUploadProductErrors(errs []models.BulkUploadErrorProducts) error {
	if len(errs) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&errs, 200).Error
}

func (r *productRepository) LogEmailSent(emailLog *models.EmailLog) error {
	return r.db.Create(emailLog).Error
}
