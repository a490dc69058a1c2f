package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"otodom-pipeline/models"
)

// RawCSVWriter writes raw (unprocessed) scrape batches to a CSV file.
// It is safe for concurrent use.
type RawCSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

var rawHeader = []string{
	"link", "title", "location", "announcement_date",
	"rent_price", "additional_fees", "area_room_num", "floor",
	"building_type", "extra_space", "flat_condition", "advertiser_type",
	"students_allowed", "furnishings", "elevator", "parking_space",
	"year_of_construction", "additional_information", "heating",
	"security", "safeguards", "equipment", "utilities",
	"available_from", "deposit", "latitude", "longitude",
	"approximate_coordinates", "adv_description", "scraped_at",
}

// NewRawCSVWriter creates (or truncates) the batch file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewRawCSVWriter(path string) (*RawCSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(rawHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &RawCSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends the observations of one scrape batch.
func (c *RawCSVWriter) WriteRaw(obs []*models.RawObservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range obs {
		row := []string{
			o.Link, o.Title, o.Location, o.AnnouncementDate,
			o.RentPrice, o.AdditionalFees, o.AreaRoomNum, o.Floor,
			o.BuildingType, o.ExtraSpace, o.FlatCondition, o.AdvertiserType,
			o.StudentsAllowed, o.Furnishings, o.Elevator, o.Parking,
			o.YearConstructed, o.AdditionalInfo, o.Heating,
			o.Security, o.Safeguards, o.Equipment, o.Utilities,
			o.AvailableFrom, o.Deposit, o.Latitude, o.Longitude,
			strconv.FormatBool(o.ApproximateCoord), o.Description,
			o.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write raw row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *RawCSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
