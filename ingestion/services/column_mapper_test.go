package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	suggestions map[string]string
	err         error
	calls       int
	gotHeaders  []string
	gotSamples  [][]string
}

func (f *fakeClassifier) ClassifyColumns(_ context.Context, headers []string, samples [][]string) (map[string]string, error) {
	f.calls++
	f.gotHeaders = headers
	f.gotSamples = samples
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

func unmappedColumns(headers ...string) []ColumnMapping {
	mappings := make([]ColumnMapping, len(headers))
	for i, header := range headers {
		mappings[i] = ColumnMapping{FileHeader: header}
	}
	return mappings
}

func rowsFor(headers []string, records ...[]string) []RawRow {
	rows := make([]RawRow, len(records))
	for i, record := range records {
		data := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(record) {
				data[header] = record[j]
			}
		}
		rows[i] = RawRow{RowNumber: i + 1, Data: data}
	}
	return rows
}

func mappingFor(t *testing.T, result MappingResult, header string) ColumnMapping {
	t.Helper()
	for _, mapping := range result.Mappings {
		if mapping.FileHeader == header {
			return mapping
		}
	}
	t.Fatalf("no mapping for header %q", header)
	return ColumnMapping{}
}

func assertNoSharedFields(t *testing.T, result MappingResult) {
	t.Helper()
	seen := make(map[CanonicalField]string)
	for _, mapping := range result.Mappings {
		if mapping.TargetField == nil {
			continue
		}
		if prev, ok := seen[*mapping.TargetField]; ok {
			t.Fatalf("field %q claimed by both %q and %q", *mapping.TargetField, prev, mapping.FileHeader)
		}
		seen[*mapping.TargetField] = mapping.FileHeader
	}
}

func TestSuggestMappingPreservesAliasHits(t *testing.T) {
	mapper := NewColumnMapper(nil, zap.NewNop())

	headers := []string{"Product Name", "Mystery"}
	name := FieldName
	prior := []ColumnMapping{
		{FileHeader: "Product Name", TargetField: &name},
		{FileHeader: "Mystery"},
	}
	rows := rowsFor(headers, []string{"Blue Widget", "???"}, []string{"Red Widget", "???"})

	result := mapper.SuggestMapping(context.Background(), headers, rows, prior)

	mapped := mappingFor(t, result, "Product Name")
	require.NotNil(t, mapped.TargetField)
	assert.Equal(t, FieldName, *mapped.TargetField)
	assert.False(t, mapped.AutoDetected)
	assert.Equal(t, "matched a known column alias", result.Explanations["Product Name"])
	assert.Contains(t, result.UnmappedHeaders, "Mystery")
	assertNoSharedFields(t, result)
}

func TestSuggestMappingContentHeuristics(t *testing.T) {
	mapper := NewColumnMapper(nil, zap.NewNop())

	headers := []string{"Retail $", "Qty On Shelf", "Item Ref"}
	rows := rowsFor(headers,
		[]string{"19.99", "12", "AB-1001"},
		[]string{"7.50", "3", "AB-1002"},
		[]string{"120.00", "40", "CD-2001"},
	)

	result := mapper.SuggestMapping(context.Background(), headers, rows, unmappedColumns(headers...))

	price := mappingFor(t, result, "Retail $")
	require.NotNil(t, price.TargetField)
	assert.Equal(t, FieldPrice, *price.TargetField)
	assert.True(t, price.AutoDetected)
	assert.Equal(t, "numeric values with a price-like header", result.Explanations["Retail $"])

	stock := mappingFor(t, result, "Qty On Shelf")
	require.NotNil(t, stock.TargetField)
	assert.Equal(t, FieldStock, *stock.TargetField)
	assert.Equal(t, "integer values with a quantity-like header", result.Explanations["Qty On Shelf"])

	sku := mappingFor(t, result, "Item Ref")
	require.NotNil(t, sku.TargetField)
	assert.Equal(t, FieldSKU, *sku.TargetField)
	assert.Equal(t, "code-shaped values with an identifier-like header", result.Explanations["Item Ref"])

	assert.Empty(t, result.UnmappedHeaders)
	assertNoSharedFields(t, result)
}

func TestSuggestMappingFuzzyAliasFallback(t *testing.T) {
	mapper := NewColumnMapper(nil, zap.NewNop())

	// punctuated header misses the exact alias pass and carries no samples
	// the content classifiers could work with
	headers := []string{"Min. Stock"}
	rows := rowsFor(headers, []string{""}, []string{""})

	result := mapper.SuggestMapping(context.Background(), headers, rows, unmappedColumns(headers...))

	mapping := mappingFor(t, result, "Min. Stock")
	require.NotNil(t, mapping.TargetField)
	assert.Equal(t, FieldMinStock, *mapping.TargetField)
	assert.True(t, mapping.AutoDetected)
	assert.Equal(t, `partial match on alias "min stock"`, result.Explanations["Min. Stock"])
}

func TestSuggestMappingExternalClassifier(t *testing.T) {
	classifier := &fakeClassifier{suggestions: map[string]string{
		"Col A": "name",
		"Col B": "price",
		"Col C": "category",
		"Col D": "name",
	}}
	mapper := NewColumnMapper(classifier, zap.NewNop())

	headers := []string{"Col A", "Col B", "Col C", "Col D"}
	rows := rowsFor(headers,
		[]string{"Widget", "9.99", "tools", "Widget"},
		[]string{"Gadget", "4.25", "tools", "Gadget"},
		[]string{"Sprocket", "1.00", "tools", "Sprocket"},
		[]string{"Cog", "2.00", "tools", "Cog"},
	)

	result := mapper.SuggestMapping(context.Background(), headers, rows, unmappedColumns(headers...))

	assert.True(t, result.UsedExternal)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, headers, classifier.gotHeaders)
	assert.Len(t, classifier.gotSamples, 3)

	name := mappingFor(t, result, "Col A")
	require.NotNil(t, name.TargetField)
	assert.Equal(t, FieldName, *name.TargetField)
	assert.True(t, name.AutoDetected)
	assert.Equal(t, "suggested by the classification service", result.Explanations["Col A"])

	price := mappingFor(t, result, "Col B")
	require.NotNil(t, price.TargetField)
	assert.Equal(t, FieldPrice, *price.TargetField)

	// "category" is not a canonical field and name is already claimed by Col A
	assert.Nil(t, mappingFor(t, result, "Col C").TargetField)
	assert.Nil(t, mappingFor(t, result, "Col D").TargetField)
	assertNoSharedFields(t, result)
}

func TestSuggestMappingSkipsExternalWhenRequiredFieldMapped(t *testing.T) {
	classifier := &fakeClassifier{suggestions: map[string]string{"Other": "brand"}}
	mapper := NewColumnMapper(classifier, zap.NewNop())

	headers := []string{"Product Name", "Other"}
	name := FieldName
	prior := []ColumnMapping{
		{FileHeader: "Product Name", TargetField: &name},
		{FileHeader: "Other"},
	}
	rows := rowsFor(headers, []string{"Widget", "x"})

	result := mapper.SuggestMapping(context.Background(), headers, rows, prior)

	assert.Equal(t, 0, classifier.calls)
	assert.False(t, result.UsedExternal)
}

func TestSuggestMappingClassifierFailureFallsBack(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("quota exhausted")}
	mapper := NewColumnMapper(classifier, zap.NewNop())

	headers := []string{"Retail $"}
	rows := rowsFor(headers, []string{"19.99"}, []string{"7.50"})

	result := mapper.SuggestMapping(context.Background(), headers, rows, unmappedColumns(headers...))

	assert.Equal(t, 1, classifier.calls)
	assert.False(t, result.UsedExternal)

	price := mappingFor(t, result, "Retail $")
	require.NotNil(t, price.TargetField)
	assert.Equal(t, FieldPrice, *price.TargetField)
	assert.Equal(t, "numeric values with a price-like header", result.Explanations["Retail $"])
}

func TestSuggestMappingFirstColumnClaimsField(t *testing.T) {
	mapper := NewColumnMapper(nil, zap.NewNop())

	headers := []string{"Retail $", "Retail Net"}
	rows := rowsFor(headers,
		[]string{"19.99", "18.50"},
		[]string{"7.50", "7.00"},
	)

	result := mapper.SuggestMapping(context.Background(), headers, rows, unmappedColumns(headers...))

	first := mappingFor(t, result, "Retail $")
	require.NotNil(t, first.TargetField)
	assert.Equal(t, FieldPrice, *first.TargetField)
	assert.Nil(t, mappingFor(t, result, "Retail Net").TargetField)
	assert.Contains(t, result.UnmappedHeaders, "Retail Net")
	assertNoSharedFields(t, result)
}

func TestValidateMappings(t *testing.T) {
	name := FieldName
	price := FieldPrice

	require.NoError(t, ValidateMappings([]ColumnMapping{
		{FileHeader: "A", TargetField: &name},
		{FileHeader: "B", TargetField: &price},
		{FileHeader: "C"},
	}))
}

func TestValidateMappingsConflict(t *testing.T) {
	price := FieldPrice
	other := FieldPrice

	err := ValidateMappings([]ColumnMapping{
		{FileHeader: "A", TargetField: &price},
		{FileHeader: "B", TargetField: &other},
	})
	require.Error(t, err)

	var conflict *MappingConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, FieldPrice, conflict.Field)
}

func TestValidateMappingsUnknownField(t *testing.T) {
	bogus := CanonicalField("category")

	err := ValidateMappings([]ColumnMapping{
		{FileHeader: "A", TargetField: &bogus},
	})
	require.Error(t, err)

	var conflict *MappingConflictError
	assert.False(t, errors.As(err, &conflict))
	assert.Contains(t, err.Error(), "category")
}
