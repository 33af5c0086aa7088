package services

import (
	"fmt"
	"strings"
	"testing"

	"inventory-intake-backend/db/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapped(header string, field CanonicalField) ColumnMapping {
	return ColumnMapping{FileHeader: header, TargetField: &field}
}

func errorMessages(errs []RowError) []string {
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Message
	}
	return messages
}

func TestValidateRowsHappyPath(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("SKU", FieldSKU),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("Cost", FieldCost),
		mapped("Min", FieldMinStock),
		mapped("Status", FieldStatus),
		mapped("Brand", FieldBrand),
		mapped("Desc", FieldDescription),
		mapped("Ref", FieldExternalRef),
	}
	headers := []string{"Name", "SKU", "Price", "Stock", "Cost", "Min", "Status", "Brand", "Desc", "Ref"}
	rows := rowsFor(headers,
		[]string{" Blue Widget ", "BW-1", "19.99", "12", "9.50", "3", "inactive", "Acme", "A widget", "EXT-9"},
	)

	result := ValidateRows(rows, mappings, nil)

	require.Empty(t, result.Errors)
	require.Len(t, result.ValidRecords, 1)
	record := result.ValidRecords[0]
	assert.Equal(t, 1, record.RowNumber)
	assert.Equal(t, "Blue Widget", record.Name)
	assert.Equal(t, "BW-1", record.SKU)
	assert.True(t, record.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 12, record.Stock)
	require.NotNil(t, record.Cost)
	assert.True(t, record.Cost.Equal(decimal.RequireFromString("9.50")))
	assert.Equal(t, 3, record.MinStock)
	assert.Equal(t, models.InactiveStatus, record.Status)
	require.NotNil(t, record.Brand)
	assert.Equal(t, "Acme", *record.Brand)
	require.NotNil(t, record.Description)
	assert.Equal(t, "A widget", *record.Description)
	require.NotNil(t, record.ExternalRef)
	assert.Equal(t, "EXT-9", *record.ExternalRef)
}

func TestValidateRowsRequiredFields(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "SKU"}
	rows := rowsFor(headers, []string{"", "", "", "X-1"})

	result := ValidateRows(rows, mappings, nil)

	assert.Equal(t, 1, result.TotalRows)
	assert.Empty(t, result.ValidRecords)
	assert.ElementsMatch(t,
		[]string{"name is required", "price is required", "stock is required"},
		errorMessages(result.Errors))
	for _, e := range result.Errors {
		assert.Equal(t, 1, e.RowNumber)
	}
}

func TestValidateRowsNumericRules(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("Cost", FieldCost),
		mapped("Min", FieldMinStock),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "Cost", "Min", "SKU"}
	rows := rowsFor(headers,
		[]string{"Widget", "-1", "2.5", "abc", "-2", "X-1"},
	)

	result := ValidateRows(rows, mappings, nil)

	assert.Empty(t, result.ValidRecords)
	assert.ElementsMatch(t, []string{
		"price must be a non-negative number",
		"stock must be a non-negative integer",
		"cost must be a non-negative number",
		"minimum stock must be a non-negative integer",
	}, errorMessages(result.Errors))
}

func TestValidateRowsUnknownStatusFallsBack(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("Status", FieldStatus),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "Status", "SKU"}
	rows := rowsFor(headers, []string{"Widget", "5.00", "3", "discontinued", "X-1"})

	result := ValidateRows(rows, mappings, nil)

	require.Empty(t, result.Errors)
	require.Len(t, result.ValidRecords, 1)
	assert.Equal(t, models.ActiveStatus, result.ValidRecords[0].Status)
}

func TestValidateRowsDefaultMinStock(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "SKU"}
	rows := rowsFor(headers, []string{"Widget", "5.00", "3", "X-1"})

	result := ValidateRows(rows, mappings, nil)

	require.Len(t, result.ValidRecords, 1)
	assert.Equal(t, 5, result.ValidRecords[0].MinStock)
}

func TestValidateRowsSynthesizesSKU(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
	}
	headers := []string{"Name", "Price", "Stock"}
	rows := rowsFor(headers,
		[]string{"Widget", "5.00", "3"},
		[]string{"Gadget", "7.00", "1"},
	)

	result := ValidateRows(rows, mappings, nil)

	require.Len(t, result.ValidRecords, 2)
	first, second := result.ValidRecords[0].SKU, result.ValidRecords[1].SKU
	assert.True(t, strings.HasPrefix(first, "SKU-"))
	assert.True(t, strings.HasPrefix(second, "SKU-"))
	assert.NotEqual(t, first, second)
	assert.Empty(t, result.DuplicateSkus)
}

func TestValidateRowsDuplicateSKUFlagsAllOccurrences(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "SKU"}
	rows := rowsFor(headers,
		[]string{"Widget", "5.00", "3", "ABC"},
		[]string{"Gadget", "7.00", "1", "DEF"},
		[]string{"Widget II", "6.00", "2", "ABC"},
	)

	result := ValidateRows(rows, mappings, nil)

	assert.Equal(t, []string{"ABC"}, result.DuplicateSkus)
	require.Len(t, result.ValidRecords, 1)
	assert.Equal(t, "DEF", result.ValidRecords[0].SKU)

	require.Len(t, result.Errors, 2)
	flaggedRows := []int{result.Errors[0].RowNumber, result.Errors[1].RowNumber}
	assert.ElementsMatch(t, []int{1, 3}, flaggedRows)
	for _, e := range result.Errors {
		assert.Equal(t, "duplicate SKU in file", e.Message)
		assert.Equal(t, "sku", e.Field)
		assert.Equal(t, "ABC", e.Value)
	}
	assert.Contains(t, result.Warnings, "1 duplicate SKU(s) found in the file")
}

func TestValidateRowsUnmappedColumnWarning(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("SKU", FieldSKU),
		{FileHeader: "Notes"},
	}
	headers := []string{"Name", "Price", "Stock", "SKU", "Notes"}
	rows := rowsFor(headers, []string{"Widget", "5.00", "3", "X-1", "ignore me"})

	result := ValidateRows(rows, mappings, nil)

	require.Len(t, result.ValidRecords, 1)
	assert.Contains(t, result.Warnings, "1 column(s) were not mapped to any field and were ignored")
}

func TestValidateRowsProgressPerChunk(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "SKU"}

	records := make([][]string, 350)
	for i := range records {
		records[i] = []string{"Widget", "5.00", "3", fmt.Sprintf("X-%d", i)}
	}
	rows := rowsFor(headers, records...)

	var reported []int
	ValidateRows(rows, mappings, func(percent int) {
		reported = append(reported, percent)
	})

	assert.Equal(t, []int{57, 100}, reported)
}

func TestValidateRowsDeterministic(t *testing.T) {
	mappings := []ColumnMapping{
		mapped("Name", FieldName),
		mapped("Price", FieldPrice),
		mapped("Stock", FieldStock),
		mapped("SKU", FieldSKU),
	}
	headers := []string{"Name", "Price", "Stock", "SKU"}
	rows := rowsFor(headers,
		[]string{"Widget", "5.00", "3", "X-1"},
		[]string{"", "-2", "1", "X-2"},
	)

	first := ValidateRows(rows, mappings, nil)
	second := ValidateRows(rows, mappings, nil)
	assert.Equal(t, first, second)
}
