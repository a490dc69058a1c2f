package services

import (
	"math"
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1 234,50 zł", 1234.50},
		{"52,28 m²", 52.28},
		{"3500", 3500},
		{"brak danych", math.NaN()},
		{"", math.NaN()},
		{"m²", math.NaN()},
	}

	for _, tt := range tests {
		got := ParseNumber(tt.raw)
		if math.IsNaN(tt.want) {
			if !math.IsNaN(got) {
				t.Errorf("ParseNumber(%q) = %v; want NaN", tt.raw, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseFloor(t *testing.T) {
	tests := []struct {
		raw        string
		wantFloor  int
		floorNil   bool
		wantHeight int
		heightNil  bool
	}{
		{"parter/4", 1, false, 4, false},
		{">10/12", 10, false, 12, false},
		{"", 0, true, 0, true},
		{"3", 3, false, 0, true},
		{"7/10", 7, false, 10, false},
		{"poddasze/3", 0, true, 3, false},
		{"2/suterena", 2, false, 0, true},
		{"-1", 0, true, 0, true},
		{"+3", 0, true, 0, true},
	}

	for _, tt := range tests {
		floor, height := ParseFloor(tt.raw)
		if (floor == nil) != tt.floorNil {
			t.Errorf("ParseFloor(%q) floor nil = %v; want %v", tt.raw, floor == nil, tt.floorNil)
		} else if floor != nil && *floor != tt.wantFloor {
			t.Errorf("ParseFloor(%q) floor = %d; want %d", tt.raw, *floor, tt.wantFloor)
		}
		if (height == nil) != tt.heightNil {
			t.Errorf("ParseFloor(%q) height nil = %v; want %v", tt.raw, height == nil, tt.heightNil)
		} else if height != nil && *height != tt.wantHeight {
			t.Errorf("ParseFloor(%q) height = %d; want %d", tt.raw, *height, tt.wantHeight)
		}
	}
}

func TestParseRentInfo(t *testing.T) {
	info := ParseRentInfo("3 500 zł/miesiąc + Czynsz 600 zł")
	if info.Rent == nil || *info.Rent != 3500 {
		t.Errorf("Rent = %v; want 3500", info.Rent)
	}
	if info.Currency != "zł" {
		t.Errorf("Currency = %q; want zł", info.Currency)
	}
	if info.AdditionalFees != 600 {
		t.Errorf("AdditionalFees = %d; want 600", info.AdditionalFees)
	}
	if info.FeesCurrency != "zł" {
		t.Errorf("FeesCurrency = %q; want zł", info.FeesCurrency)
	}
	if info.PaymentFrequency != "miesiąc" {
		t.Errorf("PaymentFrequency = %q; want miesiąc", info.PaymentFrequency)
	}
}

func TestParseRentInfoNoFees(t *testing.T) {
	info := ParseRentInfo("2 800 zł")
	if info.Rent == nil || *info.Rent != 2800 {
		t.Errorf("Rent = %v; want 2800", info.Rent)
	}
	if info.AdditionalFees != 0 {
		t.Errorf("AdditionalFees = %d; want 0 when absent", info.AdditionalFees)
	}
	if info.FeesCurrency != "" {
		t.Errorf("FeesCurrency = %q; want empty when absent", info.FeesCurrency)
	}
}

func TestParseRentInfoForeignCurrency(t *testing.T) {
	info := ParseRentInfo("1 200 EUR/miesiąc")
	if info.Currency != "EUR" {
		t.Errorf("Currency = %q; want EUR", info.Currency)
	}
}

func TestExtractAnnouncementDates(t *testing.T) {
	blob := "('Aktualizacja: 15.01.2025'\\nDodano: 10.01.2025"
	if got := ExtractLastUpdate(blob); got != "15.01.2025" {
		t.Errorf("ExtractLastUpdate = %q; want 15.01.2025", got)
	}
	if got := ExtractAddedDate(blob); got != "10.01.2025" {
		t.Errorf("ExtractAddedDate = %q; want 10.01.2025", got)
	}
}

func TestExtractAnnouncementDatesMissingMarker(t *testing.T) {
	if got := ExtractLastUpdate("Dodano: 10.01.2025"); got != "" {
		t.Errorf("ExtractLastUpdate = %q; want empty when marker absent", got)
	}
	if got := ExtractAddedDate(""); got != "" {
		t.Errorf("ExtractAddedDate = %q; want empty for empty blob", got)
	}
}

func TestExtractAreaAndRooms(t *testing.T) {
	if got := ExtractArea("52.28m² 2 pok."); got != 52.28 {
		t.Errorf("ExtractArea = %v; want 52.28", got)
	}
	if got := ExtractRooms("52.28m² 2 pok."); got != 2 {
		t.Errorf("ExtractRooms = %v; want 2", got)
	}
	if got := ExtractArea("no area here"); !math.IsNaN(got) {
		t.Errorf("ExtractArea = %v; want NaN", got)
	}
	if got := ExtractRooms("studio"); !math.IsNaN(got) {
		t.Errorf("ExtractRooms = %v; want NaN", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"17.01.2025", time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)},
		{"2025_01_17", time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
		{"", time.Time{}},
		{"2025-01-17", time.Time{}},
	}

	for _, tt := range tests {
		if got := ParseDate(tt.raw); !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Praga-Południe", "Praga_Poludnie"},
		{"Śródmieście", "Srodmiescie"},
		{"Żoliborz", "Zoliborz"},
		{"Wola", "Wola"},
	}

	for _, tt := range tests {
		if got := StripDiacritics(tt.raw); got != tt.want {
			t.Errorf("StripDiacritics(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
