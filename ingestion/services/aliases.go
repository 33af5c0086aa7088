package services

import "strings"

// headerAliases is the static bilingual alias table used both for the exact
// alias pass at decode time and for the fuzzy fallback pass. Keys are
// normalized with NormalizeHeader before lookup.
var headerAliases = map[string]CanonicalField{
	// name
	"name":         FieldName,
	"product":      FieldName,
	"product name": FieldName,
	"item":         FieldName,
	"item name":    FieldName,
	"title":        FieldName,
	"nombre":       FieldName,
	"producto":     FieldName,
	"articulo":     FieldName,

	// sku
	"sku":          FieldSKU,
	"code":         FieldSKU,
	"product code": FieldSKU,
	"codigo":       FieldSKU,
	"clave":        FieldSKU,

	// description
	"description": FieldDescription,
	"desc":        FieldDescription,
	"details":     FieldDescription,
	"descripcion": FieldDescription,
	"detalle":     FieldDescription,

	// brand
	"brand":      FieldBrand,
	"make":       FieldBrand,
	"marca":      FieldBrand,
	"fabricante": FieldBrand,

	// external reference
	"external ref":     FieldExternalRef,
	"external id":      FieldExternalRef,
	"reference":        FieldExternalRef,
	"referencia":       FieldExternalRef,
	"supplier code":    FieldExternalRef,
	"codigo proveedor": FieldExternalRef,

	// price
	"price":           FieldPrice,
	"unit price":      FieldPrice,
	"sale price":      FieldPrice,
	"retail price":    FieldPrice,
	"pvp":             FieldPrice,
	"precio":          FieldPrice,
	"precio venta":    FieldPrice,
	"precio unitario": FieldPrice,

	// cost
	"cost":          FieldCost,
	"unit cost":     FieldCost,
	"purchase price": FieldCost,
	"costo":         FieldCost,
	"coste":         FieldCost,
	"precio compra": FieldCost,
	"precio costo":  FieldCost,

	// stock
	"stock":       FieldStock,
	"qty":         FieldStock,
	"quantity":    FieldStock,
	"units":       FieldStock,
	"on hand":     FieldStock,
	"cantidad":    FieldStock,
	"unidades":    FieldStock,
	"existencias": FieldStock,
	"inventario":  FieldStock,

	// min stock
	"min stock":      FieldMinStock,
	"minimum stock":  FieldMinStock,
	"reorder level":  FieldMinStock,
	"reorder point":  FieldMinStock,
	"stock minimo":   FieldMinStock,
	"minimo":         FieldMinStock,

	// status
	"status":  FieldStatus,
	"state":   FieldStatus,
	"estado":  FieldStatus,
	"estatus": FieldStatus,
}

// NormalizeHeader lowercases, trims and collapses inner whitespace so
// "  Precio  Venta " and "precio venta" hit the same alias entry.
func NormalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}

// LookupAlias resolves a raw header against the alias table.
func LookupAlias(header string) (CanonicalField, bool) {
	field, ok := headerAliases[NormalizeHeader(header)]
	return field, ok
}

// normalizeForFuzzy additionally strips punctuation and whitespace entirely,
// used only by the fuzzy substring pass.
func normalizeForFuzzy(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
