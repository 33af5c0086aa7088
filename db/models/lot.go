package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LotStatus string

const (
	LotReceivedStatus LotStatus = "received"
	LotDepletedStatus LotStatus = "depleted"
)

// Lot is an immutable, numbered grouping of products created from a single
// bulk upload. Lot numbers follow LOT-<year>-<4-digit-seq> and the sequence
// is per owner scope and year, guarded by the unique index below so two
// concurrent uploads cannot mint the same number.
type Lot struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerScope uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_lots_scope_number" json:"owner_scope"`
	LotNumber  string    `gorm:"not null;uniqueIndex:idx_lots_scope_number" json:"lot_number"`

	FileName     string `gorm:"not null" json:"file_name"`
	TotalRecords int    `gorm:"not null" json:"total_records"`

	TotalStock       int             `gorm:"not null" json:"total_stock"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_cost"`
	TotalRetailValue decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_retail_value"`

	Status LotStatus `gorm:"type:varchar(20);default:'received';index" json:"status"`

	Entries []LotEntry `gorm:"foreignKey:LotID" json:"entries,omitempty"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LotEntry links a Lot to one product it brought in. RemainingStock starts
// at InitialStock and is decremented as downstream orders consume it; a lot
// whose products are referenced by order lines can never be deleted.
type LotEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	LotID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lot_entries_lot_product;constraint:OnDelete:CASCADE" json:"lot_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lot_entries_lot_product;index" json:"product_id"`

	InitialStock   int `gorm:"not null" json:"initial_stock"`
	RemainingStock int `gorm:"not null" json:"remaining_stock"`

	UnitCost  *decimal.Decimal `gorm:"type:decimal(15,2)" json:"unit_cost"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"unit_price"`

	Lot *Lot `gorm:"foreignKey:LotID" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lot) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (e *LotEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
