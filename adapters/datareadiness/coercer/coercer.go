package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"dataportal/domain/dataset"
)

// TypeCoercer turns raw cell text into typed cells with deterministic rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of present values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // share of present values that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // share of present values that must parse as timestamps
	Lenient            bool    `json:"lenient"`             // accept currency symbols, percent signs, (123) negatives
}

// DefaultCoercionConfig returns strict defaults: a column only gets a type
// when every present value parses as that type.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   1.0,
		BooleanThreshold:   1.0,
		TimestampThreshold: 1.0,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// missing values, as the CSV readers of common dataframe tools treat them
var missingMarkers = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "#n/a": true, "-nan": true,
}

// IsMissing reports whether raw text denotes a missing value
func IsMissing(raw string) bool {
	return missingMarkers[strings.ToLower(strings.TrimSpace(raw))]
}

// AnalyzeTypeDistribution counts how many present values parse as each type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, raw := range values {
		if IsMissing(raw) {
			continue
		}
		analysis.ValidCount++

		if v, ok := c.tryParseNumeric(raw); ok {
			analysis.NumericCount++
			if v != math.Trunc(v) {
				analysis.FractionalCount++
			}
		}
		if _, ok := c.tryParseBoolean(raw); ok {
			analysis.BooleanCount++
		}
		if _, ok := c.tryParseTimestamp(raw); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}

	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	return analysis
}

// InferKind returns the kind a column of raw values should load as
func (c *TypeCoercer) InferKind(values []string) dataset.Kind {
	return c.AnalyzeTypeDistribution(values).RecommendedKind
}

// InferColumn decides the column's kind once and converts every value to it.
// Values that do not parse under the chosen kind become missing.
func (c *TypeCoercer) InferColumn(name string, values []string) *dataset.Column {
	kind := c.InferKind(values)

	cells := make([]dataset.Cell, len(values))
	for i, raw := range values {
		cells[i] = c.CoerceCell(raw, kind)
	}
	return dataset.NewColumn(name, kind, cells)
}

// CoerceCell converts one raw value to a cell of the given kind
func (c *TypeCoercer) CoerceCell(raw string, kind dataset.Kind) dataset.Cell {
	if IsMissing(raw) {
		return dataset.NullCell(kind)
	}

	switch kind {
	case dataset.KindNumeric:
		if v, ok := c.tryParseNumeric(raw); ok {
			return dataset.NumberCell(v)
		}
	case dataset.KindBoolean:
		if v, ok := c.tryParseBoolean(raw); ok {
			return dataset.BoolCell(v)
		}
	case dataset.KindTemporal:
		if v, ok := c.tryParseTimestamp(raw); ok {
			return dataset.TimeCell(v)
		}
	default:
		return dataset.TextCell(strings.TrimSpace(raw))
	}
	return dataset.NullCell(kind)
}

// tryParseNumeric parses plain numbers. In lenient mode it also handles
// parentheses for negatives, currency symbols, percent signs and thousands separators.
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	if c.config.Lenient {
		cleanVal = c.normalizeLenientNumber(cleanVal)
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func (c *TypeCoercer) normalizeLenientNumber(cleanVal string) string {
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	// 1.234,56 and 1 234,56 use the comma as decimal separator
	if hasComma && (hasPeriod || hasSpace) && strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
		cleanVal = strings.ReplaceAll(cleanVal, ".", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	} else {
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}
	return cleanVal
}

// tryParseBoolean accepts true/false in any case
func (c *TypeCoercer) tryParseBoolean(strVal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// timestamp layouts tried in order
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// tryParseTimestamp attempts to parse as timestamp with multiple formats
func (c *TypeCoercer) tryParseTimestamp(strVal string) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return time.Time{}, false
	}

	for _, format := range timestampFormats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// determineRecommendedKind chooses the best kind based on analysis. A
// column with no present values is numeric, like an all-NaN column.
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.Kind {
	if analysis.ValidCount == 0 {
		return dataset.KindNumeric
	}

	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}

	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.KindBoolean
	}

	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return dataset.KindTemporal
	}

	return dataset.KindText
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	FractionalCount int          `json:"fractional_count"`
	BooleanCount    int          `json:"boolean_count"`
	TimestampCount  int          `json:"timestamp_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	BooleanRatio    float64      `json:"boolean_ratio"`
	TimestampRatio  float64      `json:"timestamp_ratio"`
	RecommendedKind dataset.Kind `json:"recommended_kind"`
}
