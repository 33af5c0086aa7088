package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ActiveStatus     ProductStatus = "active"
	InactiveStatus   ProductStatus = "inactive"
	OutOfStockStatus ProductStatus = "out_of_stock"
)

type AddedViaType string

const (
	BulkAddedViaType   AddedViaType = "bulk_upload"
	SingleAddedViaType AddedViaType = "single"
)

// Product represents one inventory record. SKU is unique per owner scope;
// stock on the product itself is the canonical stock figure, lot entries
// only track consumption bookkeeping.
type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerScope uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_products_scope_sku" json:"owner_scope"`
	SKU        string    `gorm:"not null;uniqueIndex:idx_products_scope_sku" json:"sku"`

	Name        string  `gorm:"not null;index" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Brand       *string `gorm:"index" json:"brand"`
	ExternalRef *string `gorm:"index" json:"external_ref"`

	Price    decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"price"`
	Cost     *decimal.Decimal `gorm:"type:decimal(15,2)" json:"cost"`
	Stock    int              `gorm:"not null;default:0" json:"stock"`
	MinStock int              `gorm:"not null;default:5" json:"min_stock"`

	Status ProductStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	AddedVia AddedViaType `gorm:"type:varchar(20);default:'single'" json:"added_via"`

	// Audit fields
	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
