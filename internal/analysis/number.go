package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// Number is a statistic that may be undefined (NaN), such as the std of a
// single value. It encodes NaN and infinities as JSON null.
type Number float64

// IsNaN reports whether the statistic is undefined
func (n Number) IsNaN() bool {
	return math.IsNaN(float64(n))
}

func (n Number) String() string {
	if n.IsNaN() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Fixed renders with six decimals, as summary tables are printed
func (n Number) Fixed() string {
	if n.IsNaN() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(n), 'f', 6, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}
