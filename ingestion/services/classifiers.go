package services

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// classifierFunc inspects one unmapped column and either claims a canonical
// field for it (with a human-readable reason) or passes. Classifiers are pure:
// all state they may not reuse is the threaded usedFields set.
type classifierFunc func(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool)

const maxHeuristicSamples = 10

// contentShapeClassifiers run in priority order; the first hit wins.
var contentShapeClassifiers = []classifierFunc{
	classifyPrice,
	classifyCost,
	classifyStock,
	classifySKU,
	classifyBrand,
	classifyName,
}

var (
	priceTokens       = []string{"price", "precio", "pvp", "retail"}
	costTokens        = []string{"cost", "costo", "coste", "compra"}
	stockTokens       = []string{"stock", "qty", "quant", "cantidad", "units", "unidades", "existencias", "inventario"}
	identifierTokens  = []string{"sku", "code", "cod", "ref", "id", "clave"}
	brandTokens       = []string{"brand", "marca", "make", "fabricante"}
	descriptiveTokens = []string{"name", "nombre", "product", "producto", "item", "title", "titulo", "desc", "articulo"}
)

func headerHasToken(header string, tokens []string) bool {
	normalized := NormalizeHeader(header)
	for _, token := range tokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

func sampleValues(samples []string) []string {
	var values []string
	for _, s := range samples {
		if s = strings.TrimSpace(s); s != "" {
			values = append(values, s)
		}
		if len(values) == maxHeuristicSamples {
			break
		}
	}
	return values
}

func allDecimal(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "")); err != nil {
			return false
		}
	}
	return true
}

func allInteger(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, err := strconv.Atoi(v); err != nil {
			return false
		}
	}
	return true
}

// codeShaped reports whether a value looks like an alphanumeric identifier:
// no spaces, not too long, letters or digits with common separator runes.
func codeShaped(v string) bool {
	if v == "" || len(v) > 32 || strings.ContainsAny(v, " \t") {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == '/':
		default:
			return false
		}
	}
	return true
}

func allCodeShaped(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !codeShaped(v) {
			return false
		}
	}
	return true
}

func averageLength(values []string) int {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += len(v)
	}
	return total / len(values)
}

func lowCardinality(values []string) bool {
	if len(values) == 0 {
		return false
	}
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	return len(distinct)*2 <= len(values)+1
}

func classifyPrice(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	if used[FieldPrice] {
		return "", "", false
	}
	if allDecimal(sampleValues(samples)) && headerHasToken(header, priceTokens) {
		return FieldPrice, "numeric values with a price-like header", true
	}
	return "", "", false
}

func classifyCost(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	if used[FieldCost] {
		return "", "", false
	}
	if allDecimal(sampleValues(samples)) && headerHasToken(header, costTokens) {
		return FieldCost, "numeric values with a cost-like header", true
	}
	return "", "", false
}

func classifyStock(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	if used[FieldStock] {
		return "", "", false
	}
	if allInteger(sampleValues(samples)) && headerHasToken(header, stockTokens) {
		return FieldStock, "integer values with a quantity-like header", true
	}
	return "", "", false
}

func classifySKU(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	if used[FieldSKU] {
		return "", "", false
	}
	if allCodeShaped(sampleValues(samples)) && headerHasToken(header, identifierTokens) {
		return FieldSKU, "code-shaped values with an identifier-like header", true
	}
	return "", "", false
}

func classifyBrand(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	if used[FieldBrand] {
		return "", "", false
	}
	values := sampleValues(samples)
	if lowCardinality(values) && averageLength(values) < 24 && headerHasToken(header, brandTokens) {
		return FieldBrand, "few distinct short values with a brand-like header", true
	}
	return "", "", false
}

func classifyName(header string, samples []string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	if used[FieldName] {
		return "", "", false
	}
	if averageLength(sampleValues(samples)) >= 15 && headerHasToken(header, descriptiveTokens) {
		return FieldName, "free-text values with a descriptive header", true
	}
	return "", "", false
}

// fuzzyAliasMatch strips punctuation from the header and looks for substring
// overlap with any alias, preferring the alias closest in length.
func fuzzyAliasMatch(header string, used map[CanonicalField]bool) (CanonicalField, string, bool) {
	normalized := normalizeForFuzzy(header)
	if len(normalized) < 3 {
		return "", "", false
	}

	bestDelta := -1
	var bestField CanonicalField
	var bestAlias string
	for alias, field := range headerAliases {
		if used[field] {
			continue
		}
		compact := normalizeForFuzzy(alias)
		if compact == "" {
			continue
		}
		if !strings.Contains(normalized, compact) && !strings.Contains(compact, normalized) {
			continue
		}
		delta := len(normalized) - len(compact)
		if delta < 0 {
			delta = -delta
		}
		if bestDelta == -1 || delta < bestDelta {
			bestDelta = delta
			bestField = field
			bestAlias = alias
		}
	}
	if bestDelta == -1 {
		return "", "", false
	}
	return bestField, "partial match on alias " + strconv.Quote(bestAlias), true
}
