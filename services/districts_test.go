package services

import "testing"

func TestFindDistrict(t *testing.T) {
	tests := []struct {
		location string
		want     string
		ok       bool
	}{
		{"ul. Puławska 12, Mokotów, Warszawa", "Mokotów", true},
		{"Grochowska, Praga-Południe, Warszawa, mazowieckie", "Praga-Południe", true},
		// ASCII-folded spellings from older batches resolve to the native one
		{"Zoliborz, Warszawa", "Żoliborz", true},
		{"Praga-Polnoc, Warszawa", "Praga-Północ", true},
		{"Centrum, Kraków", "", false},
		{"", "", false},
		// a district name embedded in a longer part is not a match
		{"osiedle Mokotówek, Warszawa", "", false},
	}

	for _, tt := range tests {
		got, ok := FindDistrict(tt.location)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FindDistrict(%q) = (%q, %v); want (%q, %v)",
				tt.location, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDistrictSurfaceFormsComplete(t *testing.T) {
	if err := validateSurfaceForms(); err != nil {
		t.Fatal(err)
	}
	if len(warsawDistricts) != 18 {
		t.Fatalf("expected the 18 Warsaw districts, got %d", len(warsawDistricts))
	}
}
