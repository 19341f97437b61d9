package domain

// SpecRow is one parameter/value line of a product's technical table.
type SpecRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Product is the identity block of an analysis.
type Product struct {
	Name          string    `json:"name"`
	ReferenceCode string    `json:"referenceCode"`
	SpecRows      []SpecRow `json:"specRows"`

	// Optional headline attributes, shown only when the upstream supplied them.
	Dimensions       string `json:"dimensions,omitempty"`
	Material         string `json:"material,omitempty"`
	Weight           string `json:"weight,omitempty"`
	Capacity         string `json:"capacity,omitempty"`
	TemperatureRange string `json:"temperatureRange,omitempty"`
	Standards        string `json:"standards,omitempty"`
	VariantsSummary  string `json:"variantsSummary,omitempty"`
}

// ComparisonRow is one competitor column of the comparison matrix.
type ComparisonRow struct {
	Brand         string `json:"brand"`
	ReferenceCode string `json:"referenceCode"`
	Material      string `json:"material"`
	Dimensions    string `json:"dimensions"`
	Weight        string `json:"weight"`
	Capacity      string `json:"capacity"`
	Standards     string `json:"standards"`
	Options       string `json:"options"`
}

// AnalysisRecord is the normalized result of one analysis. It is built once
// by the normalizer and consumed read-only by every renderer and exporter.
type AnalysisRecord struct {
	Product           Product         `json:"product"`
	VariantsNarrative string          `json:"variantsNarrative"`
	ComparisonRows    []ComparisonRow `json:"comparisonRows"`
	Recommendations   string          `json:"recommendations"`
	Confidence        float64         `json:"confidence"`
}

// HasComparison reports whether the record carries a comparison matrix.
func (r AnalysisRecord) HasComparison() bool {
	return len(r.ComparisonRows) > 0
}

// FileAttachment is an uploaded file in transport form. It lives for the
// duration of a single inference request.
type FileAttachment struct {
	Data        string `json:"data"`
	MediaType   string `json:"mediaType"`
	DisplayName string `json:"displayName"`
}
