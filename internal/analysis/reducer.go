package analysis

import (
	"fmt"
	"math"
	"strings"

	"dataportal/internal/errors"

	"github.com/montanaflynn/stats"
)

// Reducer names an aggregation applied to the values of one group
type Reducer string

const (
	ReducerSum    Reducer = "sum"
	ReducerMax    Reducer = "max"
	ReducerMin    Reducer = "min"
	ReducerMean   Reducer = "mean"
	ReducerMedian Reducer = "median"
	ReducerCount  Reducer = "count"
)

// Reducers lists the supported reducers in the order they are offered
var Reducers = []Reducer{ReducerSum, ReducerMax, ReducerMin, ReducerMean, ReducerMedian, ReducerCount}

// ParseReducer validates a reducer name
func ParseReducer(name string) (Reducer, error) {
	r := Reducer(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Reducers {
		if r == known {
			return r, nil
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown operation %q: use one of sum, max, min, mean, median, count", name))
}

// Apply reduces the non-null values of a group. An empty sum is 0, an empty
// count is 0, every other reducer of an empty group is NaN.
func (r Reducer) Apply(values []float64) float64 {
	switch r {
	case ReducerCount:
		return float64(len(values))
	case ReducerSum:
		if len(values) == 0 {
			return 0
		}
		v, _ := stats.Sum(values)
		return v
	}

	if len(values) == 0 {
		return math.NaN()
	}

	var (
		v   float64
		err error
	)
	switch r {
	case ReducerMax:
		v, err = stats.Max(values)
	case ReducerMin:
		v, err = stats.Min(values)
	case ReducerMean:
		v, err = stats.Mean(values)
	case ReducerMedian:
		v, err = stats.Median(values)
	default:
		return math.NaN()
	}
	if err != nil {
		return math.NaN()
	}
	return v
}
