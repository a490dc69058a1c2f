package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"otodom-pipeline/models"
)

// PostgresWriter persists the derived feature table to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listing_features (
			id                   SERIAL PRIMARY KEY,
			link                 TEXT UNIQUE NOT NULL,
			added_dt             DATE,
			last_update          DATE,
			expired              SMALLINT NOT NULL DEFAULT 0,
			expired_date         DATE,
			title                TEXT NOT NULL DEFAULT '',
			rent                 NUMERIC(10,2),
			additional_fees      NUMERIC(10,2),
			area                 NUMERIC(8,2),
			room_number          NUMERIC(4,1),
			floor                NUMERIC(4,1),
			building_height      NUMERIC(4,1),
			for_renovation       SMALLINT NOT NULL DEFAULT 0,
			heating              TEXT NOT NULL DEFAULT '',
			balcony              SMALLINT NOT NULL DEFAULT 0,
			terrace              SMALLINT NOT NULL DEFAULT 0,
			garden               SMALLINT NOT NULL DEFAULT 0,
			parking_space        SMALLINT NOT NULL DEFAULT 0,
			separate_kitchen     SMALLINT NOT NULL DEFAULT 0,
			utility_room         SMALLINT NOT NULL DEFAULT 0,
			basement             SMALLINT NOT NULL DEFAULT 0,
			elevator             SMALLINT NOT NULL DEFAULT 0,
			building_type        TEXT NOT NULL DEFAULT '',
			building_age         NUMERIC(5,1),
			gated_community      SMALLINT NOT NULL DEFAULT 0,
			security_monitoring  SMALLINT NOT NULL DEFAULT 0,
			alarm_system         SMALLINT NOT NULL DEFAULT 0,
			cable_tv             SMALLINT NOT NULL DEFAULT 0,
			internet             SMALLINT NOT NULL DEFAULT 0,
			dishwasher           SMALLINT NOT NULL DEFAULT 0,
			air_conditioning     SMALLINT NOT NULL DEFAULT 0,
			district             TEXT NOT NULL DEFAULT '',
			latitude             DOUBLE PRECISION,
			longitude            DOUBLE PRECISION,
			subway_distance      DOUBLE PRECISION,
			center_distance      DOUBLE PRECISION,
			avg_price_sqm_nearby DOUBLE PRECISION,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_features_district ON listing_features(district);
		CREATE INDEX IF NOT EXISTS idx_features_rent     ON listing_features(rent);
		CREATE INDEX IF NOT EXISTS idx_features_added    ON listing_features(added_dt);
		CREATE INDEX IF NOT EXISTS idx_features_expired  ON listing_features(expired);
	`)
	return err
}

// Clear deletes all stored feature rows; each run writes a full snapshot.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM listing_features")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the feature table, clearing the previous snapshot first.
func (pw *PostgresWriter) Write(rows []*models.FeatureRecord) error {
	if len(rows) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := pw.insertBatch(rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

const featureColCount = 37

func (pw *PostgresWriter) insertBatch(batch []*models.FeatureRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*featureColCount)

	for idx, r := range batch {
		base := idx * featureColCount
		ph := make([]string, featureColCount)
		for i := range ph {
			ph[i] = fmt.Sprintf("$%d", base+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			r.Link, nullDate(r.Added), nullDate(r.LastUpdate), r.Expired,
			nullDate(r.ExpiredDate), r.Title,
			nullFloat(r.Rent), nullFloat(r.AdditionalFees), nullFloat(r.Area),
			nullFloat(r.RoomNumber), nullFloat(r.Floor), nullFloat(r.BuildingHeight),
			r.ForRenovation, r.Heating,
			r.Balcony, r.Terrace, r.Garden, r.ParkingSpace, r.SeparateKitchen,
			r.UtilityRoom, r.Basement, r.Elevator, r.BuildingType,
			nullFloat(r.BuildingAge),
			r.GatedCommunity, r.SecurityMonitoring, r.AlarmSystem,
			r.CableTV, r.Internet, r.Dishwasher, r.AirConditioning,
			r.District, nullFloat(r.Latitude), nullFloat(r.Longitude),
			nullFloat(r.SubwayDistance), nullFloat(r.CenterDistance),
			r.AvgPriceSqmNearby,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO listing_features (
			link, added_dt, last_update, expired, expired_date, title,
			rent, additional_fees, area, room_number, floor, building_height,
			for_renovation, heating,
			balcony, terrace, garden, parking_space, separate_kitchen,
			utility_room, basement, elevator, building_type, building_age,
			gated_community, security_monitoring, alarm_system,
			cable_tv, internet, dishwasher, air_conditioning,
			district, latitude, longitude, subway_distance, center_distance,
			avg_price_sqm_nearby
		)
		VALUES %s
		ON CONFLICT (link) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// FetchAll reads the stored feature snapshot back, in insertion order. NULLs
// come back as NaN / zero time, matching the in-memory missing-value
// conventions.
func (pw *PostgresWriter) FetchAll() ([]*models.FeatureRecord, error) {
	rows, err := pw.db.Query(`
		SELECT link, added_dt, last_update, expired, expired_date, title,
		       rent, additional_fees, area, room_number, floor, building_height,
		       for_renovation, heating,
		       balcony, terrace, garden, parking_space, separate_kitchen,
		       utility_room, basement, elevator, building_type, building_age,
		       gated_community, security_monitoring, alarm_system,
		       cable_tv, internet, dishwasher, air_conditioning,
		       district, latitude, longitude, subway_distance, center_distance,
		       avg_price_sqm_nearby
		FROM listing_features
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []*models.FeatureRecord
	for rows.Next() {
		var r models.FeatureRecord
		var added, lastUpdate, expiredDate sql.NullTime
		var rent, fees, area, roomNum, floor, height, age sql.NullFloat64
		var lat, lon, subway, center sql.NullFloat64

		if err := rows.Scan(
			&r.Link, &added, &lastUpdate, &r.Expired, &expiredDate, &r.Title,
			&rent, &fees, &area, &roomNum, &floor, &height,
			&r.ForRenovation, &r.Heating,
			&r.Balcony, &r.Terrace, &r.Garden, &r.ParkingSpace, &r.SeparateKitchen,
			&r.UtilityRoom, &r.Basement, &r.Elevator, &r.BuildingType, &age,
			&r.GatedCommunity, &r.SecurityMonitoring, &r.AlarmSystem,
			&r.CableTV, &r.Internet, &r.Dishwasher, &r.AirConditioning,
			&r.District, &lat, &lon, &subway, &center,
			&r.AvgPriceSqmNearby,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan feature row: %w", err)
		}

		r.Added = timeOrZero(added)
		r.LastUpdate = timeOrZero(lastUpdate)
		r.ExpiredDate = timeOrZero(expiredDate)
		r.Rent = floatOrNaN(rent)
		r.AdditionalFees = floatOrNaN(fees)
		r.Area = floatOrNaN(area)
		r.RoomNumber = floatOrNaN(roomNum)
		r.Floor = floatOrNaN(floor)
		r.BuildingHeight = floatOrNaN(height)
		r.BuildingAge = floatOrNaN(age)
		r.Latitude = floatOrNaN(lat)
		r.Longitude = floatOrNaN(lon)
		r.SubwayDistance = floatOrNaN(subway)
		r.CenterDistance = floatOrNaN(center)

		out = append(out, &r)
	}
	return out, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func timeOrZero(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
