package languages

import (
	"testing"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

func TestDetermineTargets(t *testing.T) {
	cases := map[string][2]string{
		"pl":   {"en", "de"},
		"en":   {"pl", "de"},
		" DE ": {"pl", "en"},
	}
	for source, want := range cases {
		t1, t2, err := DetermineTargets(source)
		if err != nil {
			t.Fatalf("DetermineTargets(%q) returned error: %v", source, err)
		}
		if t1 != want[0] || t2 != want[1] {
			t.Fatalf("DetermineTargets(%q) = %s,%s want %s,%s", source, t1, t2, want[0], want[1])
		}
		if err := ValidateSelection(source, t1, t2); err != nil {
			t.Fatalf("targets for %q failed validation: %v", source, err)
		}
	}

	if _, _, err := DetermineTargets("fr"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for fr, got %v", err)
	}
}

func TestValidateSelection(t *testing.T) {
	cases := []struct {
		source, t1, t2 string
		ok             bool
	}{
		{"pl", "en", "de", true},
		{"de", "pl", "en", true},
		{"pl", "pl", "de", false},
		{"pl", "en", "en", false},
		{"en", "de", "en", false},
		{"pl", "en", "fr", false},
		{"", "en", "de", false},
	}
	for _, tc := range cases {
		err := ValidateSelection(tc.source, tc.t1, tc.t2)
		if tc.ok && err != nil {
			t.Fatalf("ValidateSelection(%s,%s,%s) unexpected error: %v", tc.source, tc.t1, tc.t2, err)
		}
		if !tc.ok && !apperr.IsValidation(err) {
			t.Fatalf("ValidateSelection(%s,%s,%s) expected validation error, got %v", tc.source, tc.t1, tc.t2, err)
		}
	}
}

func TestLocale(t *testing.T) {
	if got := Locale("pl"); got != "pl-PL" {
		t.Fatalf("expected pl-PL, got %q", got)
	}
	if got := Locale("EN"); got != "en-US" {
		t.Fatalf("expected en-US, got %q", got)
	}
	if got := Locale("fr"); got != "" {
		t.Fatalf("expected empty locale for unsupported code, got %q", got)
	}
	if Name("de") != "German" {
		t.Fatalf("unexpected name for de")
	}
}
