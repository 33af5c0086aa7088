package services

import (
	"inventory-intake-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CanonicalField is one of the fixed product attributes a spreadsheet column
// may be mapped to.
type CanonicalField string

const (
	FieldName        CanonicalField = "name"
	FieldSKU         CanonicalField = "sku"
	FieldDescription CanonicalField = "description"
	FieldBrand       CanonicalField = "brand"
	FieldExternalRef CanonicalField = "external_ref"
	FieldPrice       CanonicalField = "price"
	FieldCost        CanonicalField = "cost"
	FieldStock       CanonicalField = "stock"
	FieldMinStock    CanonicalField = "min_stock"
	FieldStatus      CanonicalField = "status"
)

// requiredFields marks the fields a row cannot be valid without.
var requiredFields = map[CanonicalField]bool{
	FieldName:  true,
	FieldPrice: true,
	FieldStock: true,
}

var canonicalFields = map[CanonicalField]bool{
	FieldName:        true,
	FieldSKU:         true,
	FieldDescription: true,
	FieldBrand:       true,
	FieldExternalRef: true,
	FieldPrice:       true,
	FieldCost:        true,
	FieldStock:       true,
	FieldMinStock:    true,
	FieldStatus:      true,
}

func (f CanonicalField) Required() bool {
	return requiredFields[f]
}

func IsCanonicalField(s string) bool {
	return canonicalFields[CanonicalField(s)]
}

// RequiredFields returns the required canonical fields in a stable order.
func RequiredFields() []CanonicalField {
	return []CanonicalField{FieldName, FieldPrice, FieldStock}
}

// RawRow is one data row of the uploaded file. Row 1 is the first data row,
// the header row is not numbered. Immutable once produced by the decoder.
type RawRow struct {
	RowNumber int               `json:"row_number"`
	Data      map[string]string `json:"data"`
}

// ColumnMapping assigns at most one canonical field to one file column.
// Two mappings must never carry the same non-nil TargetField.
type ColumnMapping struct {
	FileHeader   string          `json:"file_header"`
	TargetField  *CanonicalField `json:"target_field"`
	AutoDetected bool            `json:"auto_detected"`
}

// MappingResult is what the column mapper hands back for review.
type MappingResult struct {
	Mappings        []ColumnMapping   `json:"mappings"`
	Explanations    map[string]string `json:"explanations"`
	UsedExternal    bool              `json:"used_external"`
	UnmappedHeaders []string          `json:"unmapped_headers"`
}

// RowError is one field-level problem on one row. Collected, never raised;
// a row with at least one RowError never becomes a ValidatedRecord.
type RowError struct {
	RowNumber int    `json:"row_number"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Message   string `json:"message"`
}

// ValidatedRecord is the typed, rule-passed projection of a RawRow.
type ValidatedRecord struct {
	RowNumber   int                  `json:"row_number"`
	Name        string               `json:"name"`
	SKU         string               `json:"sku"`
	Description *string              `json:"description"`
	Brand       *string              `json:"brand"`
	ExternalRef *string              `json:"external_ref"`
	Price       decimal.Decimal      `json:"price"`
	Cost        *decimal.Decimal     `json:"cost"`
	Stock       int                  `json:"stock"`
	MinStock    int                  `json:"min_stock"`
	Status      models.ProductStatus `json:"status"`
}

// ProcessingResult is produced once per validation pass. Re-validation after
// mapping edits produces a new result, it never mutates an old one.
type ProcessingResult struct {
	TotalRows     int               `json:"total_rows"`
	ValidRecords  []ValidatedRecord `json:"valid_records"`
	Errors        []RowError        `json:"errors"`
	DuplicateSkus []string          `json:"duplicate_skus"`
	Warnings      []string          `json:"warnings"`
}

// UploadRowError is a per-row persistence failure surfaced by the uploader.
type UploadRowError struct {
	RowNumber int    `json:"row_number"`
	SKU       string `json:"sku"`
	Message   string `json:"message"`
}

// UploadProgress is owned by the batch uploader while an upload runs and
// snapshotted to the caller after every batch.
type UploadProgress struct {
	TotalBatches     int              `json:"total_batches"`
	CompletedBatches int              `json:"completed_batches"`
	CurrentBatch     int              `json:"current_batch"`
	SuccessCount     int              `json:"success_count"`
	ErrorCount       int              `json:"error_count"`
	Errors           []UploadRowError `json:"errors"`
}

// InsertedRecord carries what the lot manager needs about one persisted row.
type InsertedRecord struct {
	ID        uuid.UUID        `json:"id"`
	SKU       string           `json:"sku"`
	Stock     int              `json:"stock"`
	Cost      *decimal.Decimal `json:"cost"`
	Price     decimal.Decimal  `json:"price"`
	RowNumber int              `json:"row_number"`
}

// ProgressFunc receives a 0-100 percentage as a stage works through a file.
type ProgressFunc func(percent int)
