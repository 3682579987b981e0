package variable

import (
	"autotable/domain/core"
	"autotable/domain/dataset"
)

// orderedLimit is the distinct-value count from which numeric data is
// treated as continuous rather than ordered.
const orderedLimit = 10

// InferType classifies a column from its values. Missing values are
// ignored. If any remaining value does not coerce to a number the column
// is a category; otherwise the count of distinct numbers decides between
// unary, binary, ordered and numeric.
//
// The heuristic misclassifies some columns (a numeric code with nine
// distinct values reads as ordered); callers override with Catalog.SetTypes.
// A column with no observations is reported as a category together with
// core.ErrNoObservations.
func InferType(values []dataset.Value) (Type, error) {
	distinct := make(map[float64]struct{})
	observed := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		observed++
		f, ok := v.Float()
		if !ok {
			return TypeCategory, nil
		}
		distinct[f] = struct{}{}
	}
	if observed == 0 {
		return TypeCategory, core.ErrNoObservations
	}

	switch k := len(distinct); {
	case k == 1:
		return TypeUnary, nil
	case k == 2:
		return TypeBinary, nil
	case k < orderedLimit:
		return TypeOrdered, nil
	default:
		return TypeNumeric, nil
	}
}
