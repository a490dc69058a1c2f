package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// rentRegexp captures the leading amount and its currency token
	rentRegexp = regexp.MustCompile(`(\d[\d\s\x{00A0}]*)\s*([A-Za-zł]+)`)
	// feesRegexp captures the "+ Czynsz <amount> <currency>" service-charge phrase
	feesRegexp = regexp.MustCompile(`\+ Czynsz (\d[\d\s\x{00A0}]*)\s*([A-Za-zł]+)`)
	// freqRegexp captures the payment frequency token after the slash
	freqRegexp = regexp.MustCompile(`/(\p{L}+)`)
	// areaRegexp captures the floor area in square meters (dot or comma decimal)
	areaRegexp = regexp.MustCompile(`(\d+(?:[.,]\d+)?)m²`)
	// roomsRegexp captures the room count ("2 pok.", "3 pokoje")
	roomsRegexp = regexp.MustCompile(`(\d+)\s*pok`)
)

// diacriticReplacer maps Polish diacritics to ASCII and hyphens to
// underscores. Every input character maps to exactly one output character.
var diacriticReplacer = strings.NewReplacer(
	"ł", "l", "Ł", "L", "ą", "a", "Ą", "A", "ć", "c", "Ć", "C", "ę", "e", "Ę", "E",
	"ń", "n", "Ń", "N", "ó", "o", "Ó", "O", "ś", "s", "Ś", "S", "ż", "z", "Ż", "Z",
	"ź", "z", "Ź", "Z", "-", "_",
)

// ParseNumber extracts a single numeric value from arbitrary text. Digits and
// one comma (decimal separator) are retained, every other character including
// the m² glyph is ignored. Returns NaN when nothing numeric is found.
func ParseNumber(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(b.String(), ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return val
}

// ParseFloor parses otodom floor descriptions. Supported forms:
//
//	"3"        → floor 3, no height
//	"parter/4" → floor 1 (ground floor), height 4
//	">10/12"   → floor 10, height 12
//
// Unknown parts come back as nil.
func ParseFloor(raw string) (floor, height *int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if !strings.Contains(raw, "/") {
		if isDigits(raw) {
			n, _ := strconv.Atoi(raw)
			return &n, nil
		}
		return nil, nil
	}

	parts := strings.SplitN(raw, "/", 2)
	floorPart := strings.TrimSpace(parts[0])
	switch {
	case isDigits(floorPart):
		n, _ := strconv.Atoi(floorPart)
		floor = &n
	case floorPart == "parter":
		n := 1
		floor = &n
	case strings.HasPrefix(floorPart, ">"):
		if n, err := strconv.Atoi(strings.TrimSpace(floorPart[1:])); err == nil {
			floor = &n
		}
	}

	heightPart := strings.TrimSpace(parts[1])
	if isDigits(heightPart) {
		n, _ := strconv.Atoi(heightPart)
		height = &n
	}

	return floor, height
}

// RentInfo is the structured breakdown of a raw rent-price string.
type RentInfo struct {
	Rent             *int
	Currency         string
	AdditionalFees   int
	FeesCurrency     string
	PaymentFrequency string
}

// ParseRentInfo extracts rent amount, currency, the "+ Czynsz" service charge
// (0 when absent) and the payment frequency from a raw price string like
// "3 500 zł/miesiąc + Czynsz 600 zł".
func ParseRentInfo(raw string) RentInfo {
	info := RentInfo{}

	if m := rentRegexp.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(stripSpaces(m[1]))
		if err == nil {
			info.Rent = &n
		}
		info.Currency = m[2]
	}

	if m := feesRegexp.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(stripSpaces(m[1])); err == nil {
			info.AdditionalFees = n
		}
		info.FeesCurrency = m[2]
	}

	if m := freqRegexp.FindStringSubmatch(raw); m != nil {
		info.PaymentFrequency = m[1]
	}

	return info
}

// ExtractLastUpdate returns the stripped value of the "Aktualizacja:" line of
// an announcement-date blob, or "" when the marker is absent.
func ExtractLastUpdate(blob string) string {
	return extractDateLine(blob, "Aktualizacja:")
}

// ExtractAddedDate returns the stripped value of the "Dodano:" line of an
// announcement-date blob, or "" when the marker is absent.
func ExtractAddedDate(blob string) string {
	return extractDateLine(blob, "Dodano:")
}

// The blob may be a verbatim browser dump with real newlines or a stringified
// form carrying literal backslash-n escapes; both are handled.
func extractDateLine(blob, marker string) string {
	blob = strings.ReplaceAll(blob, `\n`, "\n")
	for _, line := range strings.Split(blob, "\n") {
		if idx := strings.Index(line, marker); idx >= 0 {
			val := line[idx+len(marker):]
			return strings.Trim(val, " \t'()\"")
		}
	}
	return ""
}

// ExtractArea pulls the floor area in m² out of a combined "52 m² 2 pok."
// field. NaN when absent.
func ExtractArea(raw string) float64 {
	if m := areaRegexp.FindStringSubmatch(stripSpaces(raw)); m != nil {
		val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err == nil {
			return val
		}
	}
	return math.NaN()
}

// ExtractRooms pulls the room count out of a combined area+rooms field.
// NaN when absent.
func ExtractRooms(raw string) float64 {
	if m := roomsRegexp.FindStringSubmatch(raw); m != nil {
		val, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return val
		}
	}
	return math.NaN()
}

// dateLayouts covers the two formats the site has used over time.
var dateLayouts = []string{"02.01.2006", "2.1.2006", "2006_01_02", "2006_1_2"}

// ParseDate normalizes a raw date string in either DD.MM.YYYY or YYYY_MM_DD
// form. A zero time means the value could not be parsed; this is recovered,
// never fatal.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// StripDiacritics replaces Polish diacritic characters with their ASCII
// counterparts and hyphens with underscores ("Praga-Południe" → "Praga_Poludnie").
func StripDiacritics(s string) string {
	return diacriticReplacer.Replace(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), " ", "")
}
