package services

import (
	"fmt"
	"strings"
)

// warsawDistricts is the full set of the 18 Warsaw districts the dataset is
// limited to. Listings whose location resolves to none of these are outside
// the city and get dropped during preparation.
var warsawDistricts = []string{
	"Bemowo", "Białołęka", "Bielany", "Mokotów", "Ochota",
	"Praga-Południe", "Praga-Północ", "Rembertów", "Śródmieście",
	"Targówek", "Ursus", "Ursynów", "Wawer", "Wesoła",
	"Wilanów", "Włochy", "Wola", "Żoliborz",
}

// districtSurfaceForms maps each canonical district name to the surface forms
// accepted in location strings: the native spelling and its ASCII-folded
// variant, which older scrape batches carried.
var districtSurfaceForms = map[string][]string{}

func init() {
	for _, d := range warsawDistricts {
		forms := []string{d}
		if folded := StripDiacritics(d); folded != d {
			// the fold turns hyphens into underscores; location strings keep them
			forms = append(forms, strings.ReplaceAll(folded, "_", "-"))
		}
		districtSurfaceForms[d] = forms
	}
	if err := validateSurfaceForms(); err != nil {
		panic(err)
	}
}

// validateSurfaceForms checks the surface-form mapping for completeness
// against the known district set.
func validateSurfaceForms() error {
	for _, d := range warsawDistricts {
		forms, ok := districtSurfaceForms[d]
		if !ok || len(forms) == 0 {
			return fmt.Errorf("districts: no surface forms for %q", d)
		}
	}
	if len(districtSurfaceForms) != len(warsawDistricts) {
		return fmt.Errorf("districts: surface-form mapping has %d entries, want %d",
			len(districtSurfaceForms), len(warsawDistricts))
	}
	return nil
}

// FindDistrict scans a comma-separated location string for a Warsaw district
// name. The first part matching any accepted surface form wins; the canonical
// (diacritic) spelling is returned. ok is false when no part matches.
func FindDistrict(location string) (district string, ok bool) {
	for _, part := range strings.Split(location, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, d := range warsawDistricts {
			for _, form := range districtSurfaceForms[d] {
				if part == form {
					return d, true
				}
			}
		}
	}
	return "", false
}
