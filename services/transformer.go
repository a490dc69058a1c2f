package services

import (
	"math"
	"strings"

	"otodom-pipeline/geo"
	"otodom-pipeline/models"
	"otodom-pipeline/nlp"
	"otodom-pipeline/utils"
)

const localCurrency = "zł"

// heatingCategories remaps the site's heating vocabulary onto canonical
// categories; unmapped values pass through unchanged.
var heatingCategories = map[string]string{
	"elektryczne": "electric",
	"gazowe":      "gas",
	"inne":        "other",
	"kotłownia":   "boiler room",
	"miejskie":    "district",
}

// buildingTypeCategories remaps building types onto a fixed small vocabulary;
// anything else (including missing) becomes "other".
var buildingTypeCategories = map[string]string{
	"apartamentowiec": "apartment",
	"kamienica":       "tenement",
	"blok":            "block_of_flats",
}

// TransformOptions configures one feature-derivation run.
type TransformOptions struct {
	// OnlyExpired restricts the run to expired listings whose lifetime falls
	// inside [DurationStart, DurationEnd] days, both ends inclusive.
	OnlyExpired   bool
	DurationStart int
	DurationEnd   int

	// ReferenceYear anchors building-age computation and the upper bound of
	// plausible construction years.
	ReferenceYear int

	// Subway answers nearest-stop queries; nil or empty yields NaN distances.
	Subway *geo.Index
	// Comparables indexes prior-period listings with Value = price per m²;
	// nil yields the 0 "no comparable data" sentinel.
	Comparables        *geo.Index
	ComparableRadiusKm float64

	// Matcher detects amenity keywords in free-text descriptions. nlp.Disabled
	// keeps the structured equipment field as the only signal.
	Matcher nlp.KeywordMatcher
}

// Transformer derives the model-ready feature table from canonical records:
// parsed numerics, categorical remaps, binary indicators, geospatial
// distances. Raw text columns are not carried into the output.
type Transformer struct {
	logger    *utils.Logger
	lifecycle *LifecycleFilter
	opts      TransformOptions
}

// NewTransformer creates a Transformer. A nil Matcher defaults to the
// disabled one and a zero ComparableRadiusKm to 0.5 km.
func NewTransformer(logger *utils.Logger, opts TransformOptions) *Transformer {
	if opts.Matcher == nil {
		opts.Matcher = nlp.Disabled{}
	}
	if opts.ComparableRadiusKm == 0 {
		opts.ComparableRadiusKm = 0.5
	}
	return &Transformer{
		logger:    logger,
		lifecycle: NewLifecycleFilter(logger),
		opts:      opts,
	}
}

// Transform runs the full derivation. Rows with a non-local rent or fee
// currency are dropped (mixed-currency rents are not comparable); every other
// per-row failure degrades to a missing value and never aborts the batch.
func (t *Transformer) Transform(records []*models.Record) ([]*models.FeatureRecord, error) {
	var err error
	if t.opts.OnlyExpired {
		records, err = t.lifecycle.FilterExpired(records, t.opts.DurationStart, t.opts.DurationEnd)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*models.FeatureRecord, 0, len(records))
	droppedCurrency := 0

	for _, r := range records {
		rent := ParseRentInfo(r.RentPrice)
		if rent.Currency != localCurrency ||
			(rent.FeesCurrency != "" && rent.FeesCurrency != localCurrency) {
			droppedCurrency++
			continue
		}

		out = append(out, t.deriveRow(r, rent))
	}

	t.logger.Info("[transform] Derived %d feature rows from %d records (dropped %d non-%s)",
		len(out), len(records), droppedCurrency, localCurrency)
	return out, nil
}

// deriveRow computes every feature column for one record. Later columns may
// depend on earlier ones, so the step order is fixed.
func (t *Transformer) deriveRow(r *models.Record, rent RentInfo) *models.FeatureRecord {
	f := &models.FeatureRecord{
		Added:       r.Added,
		LastUpdate:  r.LastUpdate,
		Link:        r.Link,
		Expired:     r.Expired,
		ExpiredDate: r.ExpiredDate,
		Title:       r.Title,
	}

	// rent breakdown (the currency filter already ran)
	f.Rent = math.NaN()
	if rent.Rent != nil {
		f.Rent = float64(*rent.Rent)
	}
	f.AdditionalFees = float64(rent.AdditionalFees)

	// area + room count from the combined field
	f.Area = ExtractArea(r.AreaRoomNum)
	f.RoomNumber = ExtractRooms(r.AreaRoomNum)

	// floor / building height
	floor, height := ParseFloor(r.Floor)
	f.Floor = intOrNaN(floor)
	f.BuildingHeight = intOrNaN(height)

	// move-in ready (or unknown) means no renovation needed
	if cond := strings.TrimSpace(r.FlatCondition); cond != "" && cond != "do zamieszkania" {
		f.ForRenovation = 1
	}

	f.Heating = r.Heating
	if mapped, ok := heatingCategories[r.Heating]; ok {
		f.Heating = mapped
	}

	f.Balcony = containsFlag(r.AdditionalInfo, "balkon")
	f.Terrace = containsFlag(r.AdditionalInfo, "taras")
	f.Garden = containsFlag(r.AdditionalInfo, "ogródek")
	f.ParkingSpace = containsFlag(r.AdditionalInfo, "garaż/miejsce parkingowe")
	f.SeparateKitchen = containsFlag(r.AdditionalInfo, "oddzielna kuchnia")
	f.UtilityRoom = containsFlag(r.AdditionalInfo, "pom. użytkowe")
	f.Basement = containsFlag(r.AdditionalInfo, "piwnica")

	if r.ElevatorRaw == "tak" {
		f.Elevator = 1
	}

	f.BuildingType = "other"
	if mapped, ok := buildingTypeCategories[r.BuildingType]; ok {
		f.BuildingType = mapped
	}

	f.BuildingAge = t.buildingAge(r.YearConstructed)

	f.GatedCommunity = containsFlag(r.Security, "teren zamknięty")
	// matches both "Monitoring" and "monitoring / ochrona"
	f.SecurityMonitoring = containsFlag(r.Security, "onitoring / ochrona")
	if containsFlag(r.Safeguards, "system alarmowy") == 1 ||
		containsFlag(r.Safeguards, "antywłamaniowe") == 1 {
		f.AlarmSystem = 1
	}

	f.CableTV = containsFlag(r.Utilities, "telewizja kablowa")
	f.Internet = containsFlag(r.Utilities, "internet")

	// structured equipment field OR keyword match in the free-text description
	if containsFlag(r.Equipment, "zmywarka") == 1 ||
		t.opts.Matcher.Contains(r.Description, []string{"zmywarka"}) {
		f.Dishwasher = 1
	}
	if containsFlag(r.Equipment, "klimatyzacja") == 1 ||
		t.opts.Matcher.Contains(r.Description, []string{"klimatyzacja", "klimatyzator"}) {
		f.AirConditioning = 1
	}

	f.District = StripDiacritics(r.District)

	f.Latitude = r.Latitude
	f.Longitude = r.Longitude
	f.SubwayDistance = math.NaN()
	f.CenterDistance = math.NaN()
	if !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude) {
		if t.opts.Subway != nil {
			f.SubwayDistance = t.opts.Subway.NearestKm(r.Latitude, r.Longitude)
		}
		f.CenterDistance = geo.Round3(geo.HaversineKm(
			r.Latitude, r.Longitude, geo.CityCenter.Latitude, geo.CityCenter.Longitude))
		if t.opts.Comparables != nil {
			f.AvgPriceSqmNearby = t.opts.Comparables.AvgValueWithinRadius(
				r.Latitude, r.Longitude, t.opts.ComparableRadiusKm)
		}
	}

	return f
}

// buildingAge sanitizes the construction year to [1600, reference year] and
// returns reference year minus it; NaN when implausible or missing.
func (t *Transformer) buildingAge(rawYear string) float64 {
	year := ParseNumber(rawYear)
	if math.IsNaN(year) || year < 1600 || year > float64(t.opts.ReferenceYear) {
		return math.NaN()
	}
	return float64(t.opts.ReferenceYear) - year
}

func containsFlag(haystack, keyword string) int {
	if haystack != "" && strings.Contains(haystack, keyword) {
		return 1
	}
	return 0
}

func intOrNaN(v *int) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}
