package services

import (
	"math"
	"testing"

	"otodom-pipeline/models"
)

func rentRow(rent float64) *models.FeatureRecord {
	return &models.FeatureRecord{
		Rent:           rent,
		AdditionalFees: 0,
		Area:           40,
		RoomNumber:     2,
		Floor:          1,
		BuildingHeight: 4,
		BuildingAge:    30,
		Latitude:       52.23,
		Longitude:      21.01,
		SubwayDistance: 1,
		CenterDistance: 2,
		Heating:        "district",
		BuildingType:   "block_of_flats",
		District:       "Mokotow",
	}
}

func TestImputeMedianFillsNumericGaps(t *testing.T) {
	im := NewImputer(newTestLogger())

	rows := []*models.FeatureRecord{
		rentRow(1), rentRow(2), rentRow(math.NaN()), rentRow(4),
	}

	if err := im.Impute(rows); err != nil {
		t.Fatalf("Impute: %v", err)
	}
	if rows[2].Rent != 2 {
		t.Errorf("Rent = %v; want median 2", rows[2].Rent)
	}
	// present values stay untouched
	if rows[0].Rent != 1 || rows[3].Rent != 4 {
		t.Errorf("present values changed: %v, %v", rows[0].Rent, rows[3].Rent)
	}
}

func TestImputeWithMean(t *testing.T) {
	im := NewImputer(newTestLogger())

	rows := []*models.FeatureRecord{
		rentRow(1), rentRow(2), rentRow(math.NaN()), rentRow(6),
	}

	if err := im.ImputeWith(rows, MethodMean, MethodMode); err != nil {
		t.Fatalf("ImputeWith: %v", err)
	}
	if rows[2].Rent != 3 {
		t.Errorf("Rent = %v; want mean 3", rows[2].Rent)
	}
}

func TestImputeCategoricalMode(t *testing.T) {
	im := NewImputer(newTestLogger())

	rows := []*models.FeatureRecord{
		rentRow(1), rentRow(2), rentRow(3), rentRow(4),
	}
	rows[0].Heating = "gas"
	rows[1].Heating = "district"
	rows[2].Heating = "district"
	rows[3].Heating = ""

	if err := im.Impute(rows); err != nil {
		t.Fatalf("Impute: %v", err)
	}
	if rows[3].Heating != "district" {
		t.Errorf("Heating = %q; want mode district", rows[3].Heating)
	}
}

func TestImputeAllMissingColumnLeftAlone(t *testing.T) {
	im := NewImputer(newTestLogger())

	rows := []*models.FeatureRecord{rentRow(math.NaN()), rentRow(math.NaN())}

	if err := im.Impute(rows); err != nil {
		t.Fatalf("Impute: %v", err)
	}
	if !math.IsNaN(rows[0].Rent) || !math.IsNaN(rows[1].Rent) {
		t.Errorf("fully missing column was filled: %v, %v", rows[0].Rent, rows[1].Rent)
	}
}

func TestImputeRejectsUnknownMethod(t *testing.T) {
	im := NewImputer(newTestLogger())
	rows := []*models.FeatureRecord{rentRow(1)}

	if err := im.ImputeWith(rows, "midpoint", MethodMode); err == nil {
		t.Fatal("expected error for unknown numeric method")
	}
	if err := im.ImputeWith(rows, MethodMedian, "median"); err == nil {
		t.Fatal("expected error for unknown categorical method")
	}
}
