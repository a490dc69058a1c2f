package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"otodom-pipeline/models"
)

const dateLayout = "2006-01-02"

// masterHeader is the master-dataset column contract: identifying/date
// columns first, then the raw scraped fields.
var masterHeader = []string{
	"added_dt", "last_update", "link", "expired", "expired_date",
	"title", "location", "district",
	"rent_price", "additional_fees", "area_room_num", "floor",
	"building_type", "extra_space", "flat_condition", "advertiser_type",
	"students_allowed", "furnishings", "elevator", "parking_space",
	"year_of_construction", "additional_information", "heating",
	"security", "safeguards", "equipment", "utilities",
	"available_from", "deposit", "latitude", "longitude", "adv_description",
}

// featureHeader is the feature-table column contract: identifying/date
// columns first, then derived features in computation order.
var featureHeader = []string{
	"added_dt", "last_update", "link", "expired", "expired_date", "title",
	"rent", "additional_fees", "area", "room_number",
	"floor", "building_height", "for_renovation", "heating",
	"balcony", "terrace", "garden", "parking_space", "separate_kitchen",
	"utility_room", "basement", "elevator", "building_type", "building_age",
	"gated_community", "security_monitoring", "alarm_system",
	"cable_tv", "internet", "dishwasher", "air_conditioning",
	"district", "latitude", "longitude",
	"subway_distance", "center_distance", "avg_price_sqm_nearby",
}

// ReadMaster loads the master dataset snapshot. A missing file or missing
// required column aborts the run with a descriptive error.
func ReadMaster(path string) ([]*models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open master %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read master %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: master %q is empty", path)
	}

	col, err := headerIndex(rows[0], masterHeader)
	if err != nil {
		return nil, fmt.Errorf("csv: master %q: %w", path, err)
	}

	records := make([]*models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(name string) string { return row[col[name]] }

		expired, _ := strconv.Atoi(get("expired"))
		records = append(records, &models.Record{
			AddedRaw:        get("added_dt"),
			LastUpdateRaw:   get("last_update"),
			Link:            get("link"),
			Expired:         expired,
			ExpiredDateRaw:  get("expired_date"),
			Title:           get("title"),
			Location:        get("location"),
			District:        get("district"),
			RentPrice:       get("rent_price"),
			AdditionalFees:  get("additional_fees"),
			AreaRoomNum:     get("area_room_num"),
			Floor:           get("floor"),
			BuildingType:    get("building_type"),
			ExtraSpace:      get("extra_space"),
			FlatCondition:   get("flat_condition"),
			AdvertiserType:  get("advertiser_type"),
			StudentsAllowed: get("students_allowed"),
			Furnishings:     get("furnishings"),
			ElevatorRaw:     get("elevator"),
			Parking:         get("parking_space"),
			YearConstructed: get("year_of_construction"),
			AdditionalInfo:  get("additional_information"),
			Heating:         get("heating"),
			Security:        get("security"),
			Safeguards:      get("safeguards"),
			Equipment:       get("equipment"),
			Utilities:       get("utilities"),
			AvailableFrom:   get("available_from"),
			Deposit:         get("deposit"),
			Description:     get("adv_description"),
			Latitude:        parseFloatCell(get("latitude")),
			Longitude:       parseFloatCell(get("longitude")),
		})
	}
	return records, nil
}

// WriteMaster writes a new master snapshot. Raw date strings are preserved
// as-is so mixed historical formats survive the round trip.
func WriteMaster(path string, records []*models.Record) error {
	w, f, err := createCSV(path, masterHeader)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, r := range records {
		row := []string{
			r.AddedRaw, r.LastUpdateRaw, r.Link, strconv.Itoa(r.Expired), r.ExpiredDateRaw,
			r.Title, r.Location, r.District,
			r.RentPrice, r.AdditionalFees, r.AreaRoomNum, r.Floor,
			r.BuildingType, r.ExtraSpace, r.FlatCondition, r.AdvertiserType,
			r.StudentsAllowed, r.Furnishings, r.ElevatorRaw, r.Parking,
			r.YearConstructed, r.AdditionalInfo, r.Heating,
			r.Security, r.Safeguards, r.Equipment, r.Utilities,
			r.AvailableFrom, r.Deposit,
			formatFloatCell(r.Latitude), formatFloatCell(r.Longitude), r.Description,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write master row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteFeatures writes the feature table in the fixed output column order.
func WriteFeatures(path string, rows []*models.FeatureRecord) error {
	w, f, err := createCSV(path, featureHeader)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, r := range rows {
		row := []string{
			formatDateCell(r.Added), formatDateCell(r.LastUpdate), r.Link,
			strconv.Itoa(r.Expired), formatDateCell(r.ExpiredDate), r.Title,
			formatFloatCell(r.Rent), formatFloatCell(r.AdditionalFees),
			formatFloatCell(r.Area), formatFloatCell(r.RoomNumber),
			formatFloatCell(r.Floor), formatFloatCell(r.BuildingHeight),
			strconv.Itoa(r.ForRenovation), r.Heating,
			strconv.Itoa(r.Balcony), strconv.Itoa(r.Terrace), strconv.Itoa(r.Garden),
			strconv.Itoa(r.ParkingSpace), strconv.Itoa(r.SeparateKitchen),
			strconv.Itoa(r.UtilityRoom), strconv.Itoa(r.Basement),
			strconv.Itoa(r.Elevator), r.BuildingType, formatFloatCell(r.BuildingAge),
			strconv.Itoa(r.GatedCommunity), strconv.Itoa(r.SecurityMonitoring),
			strconv.Itoa(r.AlarmSystem),
			strconv.Itoa(r.CableTV), strconv.Itoa(r.Internet),
			strconv.Itoa(r.Dishwasher), strconv.Itoa(r.AirConditioning),
			r.District,
			formatFloatCell(r.Latitude), formatFloatCell(r.Longitude),
			formatFloatCell(r.SubwayDistance), formatFloatCell(r.CenterDistance),
			formatFloatCell(r.AvgPriceSqmNearby),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write feature row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ReadFeatures loads a feature table written by WriteFeatures.
func ReadFeatures(path string) ([]*models.FeatureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open features %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read features %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: features %q is empty", path)
	}

	col, err := headerIndex(rows[0], featureHeader)
	if err != nil {
		return nil, fmt.Errorf("csv: features %q: %w", path, err)
	}

	out := make([]*models.FeatureRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(name string) string { return row[col[name]] }
		num := func(name string) float64 { return parseFloatCell(get(name)) }
		flag := func(name string) int { n, _ := strconv.Atoi(get(name)); return n }

		expired, _ := strconv.Atoi(get("expired"))
		out = append(out, &models.FeatureRecord{
			Added:       parseDateCell(get("added_dt")),
			LastUpdate:  parseDateCell(get("last_update")),
			Link:        get("link"),
			Expired:     expired,
			ExpiredDate: parseDateCell(get("expired_date")),
			Title:       get("title"),

			Rent:           num("rent"),
			AdditionalFees: num("additional_fees"),
			Area:           num("area"),
			RoomNumber:     num("room_number"),
			Floor:          num("floor"),
			BuildingHeight: num("building_height"),
			ForRenovation:  flag("for_renovation"),
			Heating:        get("heating"),

			Balcony:         flag("balcony"),
			Terrace:         flag("terrace"),
			Garden:          flag("garden"),
			ParkingSpace:    flag("parking_space"),
			SeparateKitchen: flag("separate_kitchen"),
			UtilityRoom:     flag("utility_room"),
			Basement:        flag("basement"),

			Elevator:     flag("elevator"),
			BuildingType: get("building_type"),
			BuildingAge:  num("building_age"),

			GatedCommunity:     flag("gated_community"),
			SecurityMonitoring: flag("security_monitoring"),
			AlarmSystem:        flag("alarm_system"),
			CableTV:            flag("cable_tv"),
			Internet:           flag("internet"),
			Dishwasher:         flag("dishwasher"),
			AirConditioning:    flag("air_conditioning"),

			District:          get("district"),
			Latitude:          num("latitude"),
			Longitude:         num("longitude"),
			SubwayDistance:    num("subway_distance"),
			CenterDistance:    num("center_distance"),
			AvgPriceSqmNearby: num("avg_price_sqm_nearby"),
		})
	}
	return out, nil
}

// LoadReferencePoints reads a name,latitude,longitude[,value] CSV of
// geospatial reference points (subway stops, comparables).
func LoadReferencePoints(path string) ([]models.ReferencePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open reference points %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read reference points %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv: reference points %q is empty", path)
	}

	points := make([]models.ReferencePoint, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 3 {
			return nil, fmt.Errorf("csv: reference points %q row %d: want at least 3 columns", path, i+2)
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if errLat != nil || errLon != nil {
			return nil, fmt.Errorf("csv: reference points %q row %d: bad coordinates", path, i+2)
		}
		p := models.ReferencePoint{Name: row[0], Latitude: lat, Longitude: lon}
		if len(row) > 3 {
			p.Value = parseFloatCell(row[3])
		}
		points = append(points, p)
	}
	return points, nil
}

// BatchPath builds a date-suffixed batch file name like "otodom_2025_01_17.csv".
func BatchPath(dir, prefix string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, t.Format("2006_01_02")))
}

func createCSV(path string, header []string) (*csv.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("csv: write header: %w", err)
	}
	return w, f, nil
}

func headerIndex(header, required []string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return col, nil
}

func parseFloatCell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatFloatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseDateCell(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDateCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
