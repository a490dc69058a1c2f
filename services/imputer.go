package services

import (
	"fmt"
	"math"
	"sort"

	"otodom-pipeline/models"
	"otodom-pipeline/utils"
)

// Supported imputation methods.
const (
	MethodMedian = "median"
	MethodMean   = "mean"
	MethodMode   = "mode"
)

// numericColumns lists every feature column that can hold NaN, with typed
// accessors. The slice order is the feature-table column order.
var numericColumns = []struct {
	name string
	get  func(*models.FeatureRecord) float64
	set  func(*models.FeatureRecord, float64)
}{
	{"rent", func(f *models.FeatureRecord) float64 { return f.Rent }, func(f *models.FeatureRecord, v float64) { f.Rent = v }},
	{"additional_fees", func(f *models.FeatureRecord) float64 { return f.AdditionalFees }, func(f *models.FeatureRecord, v float64) { f.AdditionalFees = v }},
	{"area", func(f *models.FeatureRecord) float64 { return f.Area }, func(f *models.FeatureRecord, v float64) { f.Area = v }},
	{"room_number", func(f *models.FeatureRecord) float64 { return f.RoomNumber }, func(f *models.FeatureRecord, v float64) { f.RoomNumber = v }},
	{"floor", func(f *models.FeatureRecord) float64 { return f.Floor }, func(f *models.FeatureRecord, v float64) { f.Floor = v }},
	{"building_height", func(f *models.FeatureRecord) float64 { return f.BuildingHeight }, func(f *models.FeatureRecord, v float64) { f.BuildingHeight = v }},
	{"building_age", func(f *models.FeatureRecord) float64 { return f.BuildingAge }, func(f *models.FeatureRecord, v float64) { f.BuildingAge = v }},
	{"latitude", func(f *models.FeatureRecord) float64 { return f.Latitude }, func(f *models.FeatureRecord, v float64) { f.Latitude = v }},
	{"longitude", func(f *models.FeatureRecord) float64 { return f.Longitude }, func(f *models.FeatureRecord, v float64) { f.Longitude = v }},
	{"subway_distance", func(f *models.FeatureRecord) float64 { return f.SubwayDistance }, func(f *models.FeatureRecord, v float64) { f.SubwayDistance = v }},
	{"center_distance", func(f *models.FeatureRecord) float64 { return f.CenterDistance }, func(f *models.FeatureRecord, v float64) { f.CenterDistance = v }},
}

// categoricalColumns lists the string feature columns, where the empty string
// marks a missing value.
var categoricalColumns = []struct {
	name string
	get  func(*models.FeatureRecord) string
	set  func(*models.FeatureRecord, string)
}{
	{"heating", func(f *models.FeatureRecord) string { return f.Heating }, func(f *models.FeatureRecord, v string) { f.Heating = v }},
	{"building_type", func(f *models.FeatureRecord) string { return f.BuildingType }, func(f *models.FeatureRecord, v string) { f.BuildingType = v }},
	{"district", func(f *models.FeatureRecord) string { return f.District }, func(f *models.FeatureRecord, v string) { f.District = v }},
}

// Imputer fills residual missing values in the feature table, in place:
// numeric columns get a column statistic (median by default), categorical
// columns get the column mode.
type Imputer struct {
	logger *utils.Logger
}

// NewImputer creates an Imputer with the given logger.
func NewImputer(logger *utils.Logger) *Imputer {
	return &Imputer{logger: logger}
}

// Impute fills every column containing missing values using the default
// per-type statistics: median for numeric, mode for categorical.
func (im *Imputer) Impute(rows []*models.FeatureRecord) error {
	return im.ImputeWith(rows, MethodMedian, MethodMode)
}

// ImputeWith is Impute with explicit fill methods. An unknown method name is
// a configuration error and is rejected before any column is touched.
func (im *Imputer) ImputeWith(rows []*models.FeatureRecord, numericMethod, categoricalMethod string) error {
	switch numericMethod {
	case MethodMedian, MethodMean, MethodMode:
	default:
		return fmt.Errorf("imputer: unsupported numeric fill method %q", numericMethod)
	}
	if categoricalMethod != MethodMode {
		return fmt.Errorf("imputer: unsupported categorical fill method %q", categoricalMethod)
	}
	if len(rows) == 0 {
		return nil
	}

	for _, col := range numericColumns {
		var present []float64
		missing := 0
		for _, r := range rows {
			if v := col.get(r); math.IsNaN(v) {
				missing++
			} else {
				present = append(present, v)
			}
		}
		if missing == 0 || len(present) == 0 {
			continue
		}

		fill := numericStat(present, numericMethod)
		for _, r := range rows {
			if math.IsNaN(col.get(r)) {
				col.set(r, fill)
			}
		}
		im.logger.Debug("[imputer] %s: filled %d values with %s %.3f",
			col.name, missing, numericMethod, fill)
	}

	for _, col := range categoricalColumns {
		var present []string
		missing := 0
		for _, r := range rows {
			if v := col.get(r); v == "" {
				missing++
			} else {
				present = append(present, v)
			}
		}
		if missing == 0 || len(present) == 0 {
			continue
		}

		fill := stringMode(present)
		for _, r := range rows {
			if col.get(r) == "" {
				col.set(r, fill)
			}
		}
		im.logger.Debug("[imputer] %s: filled %d values with mode %q", col.name, missing, fill)
	}

	return nil
}

func numericStat(values []float64, method string) float64 {
	switch method {
	case MethodMean:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	case MethodMode:
		counts := make(map[float64]int)
		for _, v := range values {
			counts[v]++
		}
		best := values[0]
		for v, n := range counts {
			if n > counts[best] || (n == counts[best] && v < best) {
				best = v
			}
		}
		return best
	default: // median
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	}
}

// stringMode returns the most frequent value; ties break toward the lower
// value ordering, matching "first mode".
func stringMode(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	best := values[0]
	for v, n := range counts {
		if n > counts[best] || (n == counts[best] && v < best) {
			best = v
		}
	}
	return best
}
