// Package normalize turns whatever text an inference endpoint returned into a
// complete domain.AnalysisRecord. It never fails: malformed or prose replies
// still produce a renderable record.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"xperto/internal/domain"
)

// Placeholder values substituted for missing required fields.
const (
	PlaceholderName            = "Componente Industrial Genérico"
	PlaceholderReference       = "GEN-001"
	PlaceholderVariants        = "Sin análisis de variantes disponible."
	PlaceholderRecommendations = "Sin recomendaciones disponibles."
)

// Values used when the reply is prose only.
const (
	ProseName            = "Consulta General"
	ProseLabel           = "Respuesta"
	ProseRecommendations = "Consulta procesada por el Asistente Xperto IndustrIAL."
)

// Normalize classifies raw and builds the record from it.
func Normalize(raw string) domain.AnalysisRecord {
	rec, _ := NormalizeKind(raw)
	return rec
}

// NormalizeKind is Normalize that also reports how the reply was interpreted.
func NormalizeKind(raw string) (domain.AnalysisRecord, domain.ReplyKind) {
	switch r := Classify(raw).(type) {
	case StrictPayload:
		return Finalize(fromFields(r.Fields)), domain.ReplyKindStrict
	case ProseOnly:
		return fromProse(r.Text), domain.ReplyKindProse
	default:
		return fromProse(raw), domain.ReplyKindProse
	}
}

func fromProse(text string) domain.AnalysisRecord {
	return domain.AnalysisRecord{
		Product: domain.Product{
			Name:          ProseName,
			ReferenceCode: PlaceholderReference,
			SpecRows:      []domain.SpecRow{{Label: ProseLabel, Value: text}},
		},
		VariantsNarrative: text,
		ComparisonRows:    []domain.ComparisonRow{},
		Recommendations:   ProseRecommendations,
		Confidence:        0,
	}
}

// Finalize applies the completion rules to a record: blank required strings
// get placeholders, blank rows are dropped, sequences are non-nil and
// confidence is clamped to [0,100]. It is idempotent.
func Finalize(rec domain.AnalysisRecord) domain.AnalysisRecord {
	rec.Product.Name = orDefault(rec.Product.Name, PlaceholderName)
	rec.Product.ReferenceCode = orDefault(rec.Product.ReferenceCode, PlaceholderReference)
	rec.VariantsNarrative = orDefault(rec.VariantsNarrative, PlaceholderVariants)
	rec.Recommendations = orDefault(rec.Recommendations, PlaceholderRecommendations)

	rows := make([]domain.SpecRow, 0, len(rec.Product.SpecRows))
	for _, row := range rec.Product.SpecRows {
		if strings.TrimSpace(row.Label) == "" && strings.TrimSpace(row.Value) == "" {
			continue
		}
		rows = append(rows, row)
	}
	rec.Product.SpecRows = rows

	comparison := make([]domain.ComparisonRow, 0, len(rec.ComparisonRows))
	for _, row := range rec.ComparisonRows {
		if row == (domain.ComparisonRow{}) {
			continue
		}
		comparison = append(comparison, row)
	}
	rec.ComparisonRows = comparison

	rec.Confidence = clampConfidence(rec.Confidence)
	return rec
}

func fromFields(fields map[string]any) domain.AnalysisRecord {
	product := objectField(fields, "productDetails", "product")

	var rec domain.AnalysisRecord
	rec.Product = domain.Product{
		Name:             stringField(product, "productName", "name"),
		ReferenceCode:    stringField(product, "referenceCode", "reference"),
		Dimensions:       stringField(product, "dimensions"),
		Material:         stringField(product, "material"),
		Weight:           stringField(product, "weight"),
		Capacity:         stringField(product, "capacityOrPerformance", "capacity"),
		TemperatureRange: stringField(product, "temperatureRange"),
		Standards:        stringField(product, "standards"),
		VariantsSummary:  stringField(product, "variantsAvailable", "variantsSummary"),
	}
	for _, item := range objectItems(product, "rawTableData", "specRows") {
		rec.Product.SpecRows = append(rec.Product.SpecRows, domain.SpecRow{
			Label: stringField(item, "specification", "label"),
			Value: stringField(item, "description", "value"),
		})
	}

	rec.VariantsNarrative = stringField(fields, "variantsNarrative")
	rec.Recommendations = stringField(fields, "recommendations")
	for _, item := range objectItems(fields, "comparisonTable", "comparisonRows") {
		rec.ComparisonRows = append(rec.ComparisonRows, domain.ComparisonRow{
			Brand:         stringField(item, "brandName", "brand"),
			ReferenceCode: stringField(item, "referenceCode"),
			Material:      stringField(item, "material"),
			Dimensions:    stringField(item, "dimensions"),
			Weight:        stringField(item, "weight"),
			Capacity:      stringField(item, "capacity"),
			Standards:     stringField(item, "standards"),
			Options:       stringField(item, "options"),
		})
	}
	rec.Confidence = numberField(fields, "confidence")
	return rec
}

// lookup returns the first key present with a non-null value.
func lookup(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func objectField(obj map[string]any, keys ...string) map[string]any {
	v, _ := lookup(obj, keys...)
	m, _ := v.(map[string]any)
	return m
}

// objectItems returns the object elements of a sequence field. A field that
// is not a sequence yields nothing, and non-object elements are skipped.
func objectItems(obj map[string]any, keys ...string) []map[string]any {
	v, _ := lookup(obj, keys...)
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// stringField reads a field as text. Numbers and booleans are formatted,
// string sequences are joined one per line, other shapes are ignored.
func stringField(obj map[string]any, keys ...string) string {
	v, ok := lookup(obj, keys...)
	if !ok {
		return ""
	}
	return asText(v)
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			if s := asText(el); strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// numberField reads a numeric field. Numeric strings, including a trailing
// percent sign, are accepted. Anything else reads as 0.
func numberField(obj map[string]any, key string) float64 {
	v, ok := lookup(obj, key)
	if !ok {
		return 0
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case float64:
		return t
	case string:
		s = strings.TrimSuffix(strings.TrimSpace(t), "%")
	default:
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return f
}

func clampConfidence(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return f
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// DecodeRecord parses a record previously serialized by this service, for
// instance one posted back by the report page for export, and re-applies
// the completion rules.
func DecodeRecord(data []byte) (domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}
	return Finalize(rec), nil
}
