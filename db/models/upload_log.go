package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UploadLogEntry is the append-only audit record of one bulk upload attempt.
// One row is written per attempt regardless of outcome; the serialized error
// list keeps the per-row failures reviewable after the session is gone.
type UploadLogEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerScope uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_scope"`

	FileName     string `gorm:"not null" json:"file_name"`
	TotalRows    int    `gorm:"not null" json:"total_rows"`
	SuccessCount int    `gorm:"not null" json:"success_count"`
	ErrorCount   int    `gorm:"not null" json:"error_count"`

	Errors datatypes.JSON `json:"errors"`

	LotID *uuid.UUID `gorm:"type:uuid;index" json:"lot_id"`

	Actor     string    `gorm:"not null" json:"actor"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (u *UploadLogEntry) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
