package services

import (
	"fmt"
	"testing"
	"time"

	"otodom-pipeline/models"
)

func TestFilterExpiredDurationWindow(t *testing.T) {
	f := NewLifecycleFilter(newTestLogger())

	added := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expiredAfter := func(days int) *models.Record {
		return &models.Record{
			Link:        fmt.Sprintf("l%d", days),
			Expired:     1,
			Added:       added,
			ExpiredDate: added.AddDate(0, 0, days),
		}
	}

	tests := []struct {
		name   string
		record *models.Record
		kept   bool
	}{
		{"inside window", expiredAfter(19), true},
		{"lower bound inclusive", expiredAfter(1), true},
		{"upper bound inclusive", expiredAfter(28), true},
		{"past upper bound", expiredAfter(29), false},
		{"same day", expiredAfter(0), false},
		{"still active", &models.Record{Link: "active", Expired: 0, Added: added}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.FilterExpired([]*models.Record{tt.record}, 1, 28)
			if err != nil {
				t.Fatalf("FilterExpired: %v", err)
			}
			if kept := len(out) == 1; kept != tt.kept {
				t.Errorf("kept = %v; want %v", kept, tt.kept)
			}
		})
	}
}

func TestFilterExpiredParsesRawDate(t *testing.T) {
	f := NewLifecycleFilter(newTestLogger())

	r := &models.Record{
		Link:           "l1",
		Expired:        1,
		Added:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiredDateRaw: "2025_01_15",
	}

	out, err := f.FilterExpired([]*models.Record{r}, 1, 28)
	if err != nil {
		t.Fatalf("FilterExpired: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected record retained, got %d records", len(out))
	}
}

func TestMarkExpiredFlipsVanishedActiveListings(t *testing.T) {
	f := NewLifecycleFilter(newTestLogger())

	records := []*models.Record{
		{Link: "l1", Expired: 0},
		{Link: "l2", Expired: 0},
		// already expired: the original expiration date must survive the sweep
		{Link: "l3", Expired: 1, ExpiredDateRaw: "05.01.2025"},
	}
	gone := map[string]bool{"l1": true, "l3": true}

	marked := f.MarkExpired(records, gone, "20.01.2025")
	if marked != 1 {
		t.Fatalf("marked = %d; want 1", marked)
	}

	if records[0].Expired != 1 || records[0].ExpiredDateRaw != "20.01.2025" {
		t.Errorf("vanished listing not marked: expired=%d date=%q",
			records[0].Expired, records[0].ExpiredDateRaw)
	}
	if records[0].ExpiredDate.IsZero() {
		t.Error("parsed expiration date not set")
	}
	if records[1].Expired != 0 {
		t.Errorf("still-online listing marked expired")
	}
	if records[2].ExpiredDateRaw != "05.01.2025" {
		t.Errorf("already-expired listing restamped to %q", records[2].ExpiredDateRaw)
	}
}

func TestFilterExpiredUnparseableDateIsError(t *testing.T) {
	f := NewLifecycleFilter(newTestLogger())

	r := &models.Record{
		Link:           "l1",
		Expired:        1,
		Added:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpiredDateRaw: "kiedyś",
	}

	if _, err := f.FilterExpired([]*models.Record{r}, 1, 28); err == nil {
		t.Fatal("expected error for unparseable expired date, got nil")
	}
}
