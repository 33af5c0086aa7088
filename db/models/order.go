package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order and OrderLine are the downstream sales side of inventory. The
// ingestion core only reads them to refuse deleting lots whose products
// already back sold stock.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerScope  uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_scope"`
	OrderNumber string    `gorm:"not null;index" json:"order_number"`

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
