package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const externalSampleRows = 3

// MappingConflictError means two columns ended up claiming the same canonical
// field. The usedFields set threaded through every pass makes this impossible
// for auto-detected mappings, so seeing one is a programming error or a bad
// manual override.
type MappingConflictError struct {
	Field CanonicalField
}

func (e *MappingConflictError) Error() string {
	return fmt.Sprintf("field %q is claimed by more than one column", e.Field)
}

// ColumnClassifier is the optional external mapping service. Implemented by
// the Gemini service; advisory and fallible by contract.
type ColumnClassifier interface {
	ClassifyColumns(ctx context.Context, headers []string, samples [][]string) (map[string]string, error)
}

type ColumnMapper struct {
	classifier ColumnClassifier
	logger     *zap.Logger
}

// NewColumnMapper builds a mapper. classifier may be nil when no external
// service is configured.
func NewColumnMapper(classifier ColumnClassifier, logger *zap.Logger) *ColumnMapper {
	return &ColumnMapper{classifier: classifier, logger: logger}
}

// SuggestMapping runs the mapping passes over every column that the alias
// pass left unmapped: external classification (when warranted), content-shape
// heuristics, then fuzzy alias matching. Alias hits in prior are trusted and
// preserved. No two mappings ever share a target field.
func (m *ColumnMapper) SuggestMapping(ctx context.Context, headers []string, rows []RawRow, prior []ColumnMapping) MappingResult {
	result := MappingResult{
		Mappings:     make([]ColumnMapping, len(prior)),
		Explanations: make(map[string]string),
	}
	copy(result.Mappings, prior)

	used := make(map[CanonicalField]bool)
	for _, mapping := range result.Mappings {
		if mapping.TargetField != nil {
			used[*mapping.TargetField] = true
			result.Explanations[mapping.FileHeader] = "matched a known column alias"
		}
	}

	// External pass only when the alias pass produced nothing usable: every
	// required field still unclaimed, and a classifier is configured.
	if m.classifier != nil && noRequiredFieldMapped(used) {
		m.externalPass(ctx, headers, rows, used, &result)
	}

	samplesByHeader := collectSamples(headers, rows)

	for i := range result.Mappings {
		if result.Mappings[i].TargetField != nil {
			continue
		}
		header := result.Mappings[i].FileHeader

		if field, reason, ok := m.runClassifiers(header, samplesByHeader[header], used); ok {
			used[field] = true
			target := field
			result.Mappings[i].TargetField = &target
			result.Mappings[i].AutoDetected = true
			result.Explanations[header] = reason
		}
	}

	for _, mapping := range result.Mappings {
		if mapping.TargetField == nil {
			result.UnmappedHeaders = append(result.UnmappedHeaders, mapping.FileHeader)
		}
	}
	return result
}

func (m *ColumnMapper) runClassifiers(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	for _, classify := range contentShapeClassifiers {
		if field, reason, ok := classify(header, samples, used); ok {
			return field, reason, true
		}
	}
	return fuzzyAliasMatch(header, used)
}

// externalPass asks the classification service for a full mapping suggestion.
// Any failure is swallowed: the heuristics below cover for it.
func (m *ColumnMapper) externalPass(ctx context.Context, headers []string, rows []RawRow, used map[CanonicalField]bool, result *MappingResult) {
	samples := make([][]string, 0, externalSampleRows)
	for i := 0; i < len(rows) && i < externalSampleRows; i++ {
		record := make([]string, len(headers))
		for j, header := range headers {
			record[j] = rows[i].Data[header]
		}
		samples = append(samples, record)
	}

	suggestions, err := m.classifier.ClassifyColumns(ctx, headers, samples)
	if err != nil {
		m.logger.Warn("external column classification failed, falling back to heuristics", zap.Error(err))
		return
	}

	result.UsedExternal = true
	for i := range result.Mappings {
		if result.Mappings[i].TargetField != nil {
			continue
		}
		header := result.Mappings[i].FileHeader
		suggested, ok := suggestions[header]
		if !ok || !IsCanonicalField(suggested) {
			continue
		}
		field := CanonicalField(suggested)
		if used[field] {
			continue
		}
		used[field] = true
		result.Mappings[i].TargetField = &field
		result.Mappings[i].AutoDetected = true
		result.Explanations[header] = "suggested by the classification service"
	}
}

func noRequiredFieldMapped(used map[CanonicalField]bool) bool {
	for _, field := range RequiredFields() {
		if used[field] {
			return false
		}
	}
	return true
}

func collectSamples(headers []string, rows []RawRow) map[string][]string {
	samples := make(map[string][]string, len(headers))
	for _, header := range headers {
		for _, row := range rows {
			if len(samples[header]) == maxHeuristicSamples {
				break
			}
			samples[header] = append(samples[header], row.Data[header])
		}
	}
	return samples
}

// ValidateMappings rejects mapping arrays where two columns claim one field.
// Used on manual overrides before they replace the session mapping.
func ValidateMappings(mappings []ColumnMapping) error {
	used := make(map[CanonicalField]bool)
	for _, mapping := range mappings {
		if mapping.TargetField == nil {
			continue
		}
		if !IsCanonicalField(string(*mapping.TargetField)) {
			return fmt.Errorf("unknown target field %q for column %q", *mapping.TargetField, mapping.FileHeader)
		}
		if used[*mapping.TargetField] {
			return &MappingConflictError{Field: *mapping.TargetField}
		}
		used[*mapping.TargetField] = true
	}
	return nil
}
