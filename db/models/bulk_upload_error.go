package models

import (
	"time"

	"github.com/google/uuid"
)

type BulkUploadErrorType string

const (
	DuplicateErrorType   BulkUploadErrorType = "duplicate"
	MissingDataErrorType BulkUploadErrorType = "missing_data"
	InvalidValueErrorType BulkUploadErrorType = "invalid_value"
	PersistenceErrorType BulkUploadErrorType = "persistence"
)

// BulkUploadErrorProducts keeps one row per rejected spreadsheet row so the
// error report can be rebuilt and reviewed after the wizard session expires.
type BulkUploadErrorProducts struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerScope uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_scope"`

	FileName  string `gorm:"not null" json:"file_name"`
	RowNumber int    `json:"row_number"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Reason    string `json:"reason"`

	ErrorType BulkUploadErrorType `json:"error_type"`
	AddedVia  AddedViaType        `json:"added_via"`
	Resolved  bool                `json:"resolved"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
