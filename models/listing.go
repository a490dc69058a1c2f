package models

import "time"

// RawObservation holds one scrape-time snapshot of a rental announcement,
// exactly as extracted from the browser. Text fields keep the site's Polish
// wording; nothing is parsed at this stage.
type RawObservation struct {
	Link             string
	Title            string
	Location         string
	AnnouncementDate string // multi-line blob with "Dodano:" / "Aktualizacja:" lines
	RentPrice        string
	AdditionalFees   string
	AreaRoomNum      string
	Floor            string
	BuildingType     string
	ExtraSpace       string
	FlatCondition    string
	AdvertiserType   string
	StudentsAllowed  string
	Furnishings      string
	Elevator         string
	Parking          string
	YearConstructed  string
	AdditionalInfo   string
	Heating          string
	Security         string
	Safeguards       string
	Equipment        string
	Utilities        string
	AvailableFrom    string
	Deposit          string
	Latitude         string
	Longitude        string
	ApproximateCoord bool
	Description      string
	ScrapedAt        time.Time
}

// Record is the canonical per-listing row of the master dataset: one row per
// title key, earliest known appearance date, attributes from the most recent
// observation. Dates are kept both raw (as scraped, mixed formats) and parsed.
type Record struct {
	AddedRaw      string
	LastUpdateRaw string
	Added         time.Time
	LastUpdate    time.Time

	Link  string
	Title string

	Expired        int
	ExpiredDateRaw string
	ExpiredDate    time.Time

	District string
	Location string

	RentPrice       string
	AdditionalFees  string
	AreaRoomNum     string
	Floor           string
	BuildingType    string
	ExtraSpace      string
	FlatCondition   string
	AdvertiserType  string
	StudentsAllowed string
	Furnishings     string
	ElevatorRaw     string
	Parking         string
	YearConstructed string
	AdditionalInfo  string
	Heating         string
	Security        string
	Safeguards      string
	Equipment       string
	Utilities       string
	AvailableFrom   string
	Deposit         string
	Description     string

	// NaN when the announcement carried no coordinates.
	Latitude  float64
	Longitude float64
}

// FeatureRecord is one row of the model-ready feature table. Numeric columns
// use NaN for missing values, categorical columns use the empty string.
type FeatureRecord struct {
	Added       time.Time
	LastUpdate  time.Time
	Link        string
	Expired     int
	ExpiredDate time.Time
	Title       string

	Rent           float64
	AdditionalFees float64
	Area           float64
	RoomNumber     float64

	Floor          float64
	BuildingHeight float64

	ForRenovation int
	Heating       string

	Balcony         int
	Terrace         int
	Garden          int
	ParkingSpace    int
	SeparateKitchen int
	UtilityRoom     int
	Basement        int

	Elevator     int
	BuildingType string
	BuildingAge  float64

	GatedCommunity     int
	SecurityMonitoring int
	AlarmSystem        int

	CableTV  int
	Internet int

	Dishwasher      int
	AirConditioning int

	District  string
	Latitude  float64
	Longitude float64

	SubwayDistance    float64
	CenterDistance    float64
	AvgPriceSqmNearby float64
}

// ReferencePoint is a named geographic point (a subway stop, the city center)
// used by the spatial index. Value carries an optional associated scalar, e.g.
// price per square meter for comparable-listing queries.
type ReferencePoint struct {
	Name      string
	Latitude  float64
	Longitude float64
	Value     float64
}

// MarketReport holds the computed analytics over the feature table.
type MarketReport struct {
	TotalListings      int
	ExpiredListings    int
	AverageRent        float64
	MinRent            float64
	MaxRent            float64
	MostExpensive      *FeatureRecord
	ListingsByDistrict map[string]int
	AvgDaysToExpiry    float64
}
