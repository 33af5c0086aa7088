package services

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"inventory-intake-backend/db/models"

	"github.com/shopspring/decimal"
)

// validationChunkSize is a pacing knob, not a correctness parameter: progress
// is reported between chunks so a host UI is never starved for a whole file.
const validationChunkSize = 200

const defaultMinStock = 5

// ValidateRows applies every business rule to every row under the accepted
// mapping. All rules are evaluated per row — a row can accumulate several
// errors in one pass — and any error keeps the row out of ValidRecords.
// Given the same rows and mapping it always produces the same result.
func ValidateRows(rows []RawRow, mappings []ColumnMapping, progress ProgressFunc) ProcessingResult {
	headerByField := make(map[CanonicalField]string)
	unmappedColumns := 0
	for _, mapping := range mappings {
		if mapping.TargetField == nil {
			unmappedColumns++
			continue
		}
		headerByField[*mapping.TargetField] = mapping.FileHeader
	}

	type outcome struct {
		record ValidatedRecord
		errors []RowError
	}

	outcomes := make([]outcome, 0, len(rows))
	skuRows := make(map[string][]int) // sku -> indexes into outcomes

	total := len(rows)
	for start := 0; start < total; start += validationChunkSize {
		end := start + validationChunkSize
		if end > total {
			end = total
		}

		for _, row := range rows[start:end] {
			record, errs := validateRow(row, headerByField)

			if record.SKU == "" {
				record.SKU = synthesizeSKU(skuRows)
			} else {
				skuRows[record.SKU] = append(skuRows[record.SKU], len(outcomes))
			}
			outcomes = append(outcomes, outcome{record: record, errors: errs})
		}

		if progress != nil {
			progress(int(math.Round(float64(end) / float64(total) * 100)))
		}
	}

	// In-file duplicate SKUs flag every occurrence, including the first one,
	// which is only known to be a duplicate after a later row repeats it.
	var duplicateSkus []string
	for sku, indexes := range skuRows {
		if len(indexes) < 2 {
			continue
		}
		duplicateSkus = append(duplicateSkus, sku)
		for _, i := range indexes {
			outcomes[i].errors = append(outcomes[i].errors, RowError{
				RowNumber: outcomes[i].record.RowNumber,
				Field:     string(FieldSKU),
				Value:     sku,
				Message:   "duplicate SKU in file",
			})
		}
	}

	result := ProcessingResult{TotalRows: total, DuplicateSkus: duplicateSkus}
	for _, o := range outcomes {
		if len(o.errors) > 0 {
			result.Errors = append(result.Errors, o.errors...)
			continue
		}
		result.ValidRecords = append(result.ValidRecords, o.record)
	}

	if len(duplicateSkus) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d duplicate SKU(s) found in the file", len(duplicateSkus)))
	}
	if unmappedColumns > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d column(s) were not mapped to any field and were ignored", unmappedColumns))
	}
	return result
}

func validateRow(row RawRow, headerByField map[CanonicalField]string) (ValidatedRecord, []RowError) {
	value := func(field CanonicalField) string {
		header, ok := headerByField[field]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row.Data[header])
	}

	record := ValidatedRecord{
		RowNumber: row.RowNumber,
		MinStock:  defaultMinStock,
		Status:    models.ActiveStatus,
	}
	var errs []RowError

	addError := func(field CanonicalField, v, message string) {
		errs = append(errs, RowError{RowNumber: row.RowNumber, Field: string(field), Value: v, Message: message})
	}

	name := value(FieldName)
	if name == "" {
		addError(FieldName, name, "name is required")
	}
	record.Name = name

	priceStr := value(FieldPrice)
	if priceStr == "" {
		addError(FieldPrice, priceStr, "price is required")
	} else if price, err := decimal.NewFromString(priceStr); err != nil || price.IsNegative() {
		addError(FieldPrice, priceStr, "price must be a non-negative number")
	} else {
		record.Price = price
	}

	stockStr := value(FieldStock)
	if stockStr == "" {
		addError(FieldStock, stockStr, "stock is required")
	} else if stock, err := strconv.Atoi(stockStr); err != nil || stock < 0 {
		addError(FieldStock, stockStr, "stock must be a non-negative integer")
	} else {
		record.Stock = stock
	}

	if costStr := value(FieldCost); costStr != "" {
		if cost, err := decimal.NewFromString(costStr); err != nil || cost.IsNegative() {
			// The error alone rejects the row; the cost stays nil.
			addError(FieldCost, costStr, "cost must be a non-negative number")
		} else {
			record.Cost = &cost
		}
	}

	if minStockStr := value(FieldMinStock); minStockStr != "" {
		if minStock, err := strconv.Atoi(minStockStr); err != nil || minStock < 0 {
			addError(FieldMinStock, minStockStr, "minimum stock must be a non-negative integer")
		} else {
			record.MinStock = minStock
		}
	}

	record.SKU = value(FieldSKU)

	// Unrecognized statuses are not an error, they just fall back to active.
	switch status := models.ProductStatus(value(FieldStatus)); status {
	case models.ActiveStatus, models.InactiveStatus, models.OutOfStockStatus:
		record.Status = status
	}

	if description := value(FieldDescription); description != "" {
		record.Description = &description
	}
	if brand := value(FieldBrand); brand != "" {
		record.Brand = &brand
	}
	if externalRef := value(FieldExternalRef); externalRef != "" {
		record.ExternalRef = &externalRef
	}

	return record, errs
}

// synthesizeSKU builds a placeholder for rows that arrived without one,
// unique within the file being processed.
func synthesizeSKU(skuRows map[string][]int) string {
	for {
		sku := fmt.Sprintf("SKU-%d-%06d", time.Now().UnixMilli(), rand.Intn(1000000))
		if _, exists := skuRows[sku]; !exists {
			// Claim it so a later blank row cannot collide.
			skuRows[sku] = nil
			return sku
		}
	}
}
