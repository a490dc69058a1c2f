package services

import (
	"math"
	"testing"

	"otodom-pipeline/models"
)

func TestPrepareBuildsRecords(t *testing.T) {
	p := NewPreparer(newTestLogger())

	raw := []*models.RawObservation{
		{
			Link:             " https://otodom.pl/a ",
			Title:            "Mieszkanie 2 pok.",
			Location:         "ul. Puławska, Mokotów, Warszawa",
			AnnouncementDate: "'Aktualizacja: 15.01.2025'\nDodano: 10.01.2025",
			RentPrice:        "3 500 zł/miesiąc",
			Latitude:         "52.1935",
			Longitude:        "21.0450",
		},
		{
			Link:     "https://otodom.pl/b",
			Title:    "Dom pod Krakowem",
			Location: "Zielonki, małopolskie",
		},
	}

	records := p.Prepare(raw)
	if len(records) != 1 {
		t.Fatalf("expected 1 record (non-Warsaw dropped), got %d", len(records))
	}

	r := records[0]
	if r.Link != "https://otodom.pl/a" {
		t.Errorf("Link = %q; want trimmed link", r.Link)
	}
	if r.District != "Mokotów" {
		t.Errorf("District = %q; want Mokotów", r.District)
	}
	if r.AddedRaw != "10.01.2025" || r.LastUpdateRaw != "15.01.2025" {
		t.Errorf("dates = (%q, %q); want (10.01.2025, 15.01.2025)", r.AddedRaw, r.LastUpdateRaw)
	}
	if r.Expired != 0 {
		t.Errorf("Expired = %d; want 0 for a fresh record", r.Expired)
	}
	if r.Latitude != 52.1935 || r.Longitude != 21.0450 {
		t.Errorf("coordinates = (%v, %v)", r.Latitude, r.Longitude)
	}
}

func TestPrepareMissingCoordinatesBecomeNaN(t *testing.T) {
	p := NewPreparer(newTestLogger())

	raw := []*models.RawObservation{
		{Link: "l1", Location: "Wola, Warszawa", Latitude: "", Longitude: "approx"},
	}

	records := p.Prepare(raw)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !math.IsNaN(records[0].Latitude) || !math.IsNaN(records[0].Longitude) {
		t.Errorf("coordinates = (%v, %v); want NaN for unparseable values",
			records[0].Latitude, records[0].Longitude)
	}
}
