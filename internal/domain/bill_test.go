package domain

import (
	"errors"
	"testing"
)

func TestParseBillIdentifierCanonicalizes(t *testing.T) {
	cases := []struct {
		raw        string
		wantType   BillType
		wantNumber string
	}{
		{"HB 150", BillTypeHB, "00150"},
		{"HB150", BillTypeHB, "00150"},
		{"hb 150", BillTypeHB, "00150"},
		{"HB  150", BillTypeHB, "00150"},
		{"  sb45  ", BillTypeSB, "00045"},
		{"SJR 9", BillTypeSJR, "00009"},
		{"hjr12345", BillTypeHJR, "12345"},
	}

	for _, tc := range cases {
		id, err := ParseBillIdentifier(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: unexpected error %v", tc.raw, err)
		}
		if id.Type != tc.wantType {
			t.Fatalf("parse %q: type %q, want %q", tc.raw, id.Type, tc.wantType)
		}
		if id.Number != tc.wantNumber {
			t.Fatalf("parse %q: number %q, want %q", tc.raw, id.Number, tc.wantNumber)
		}
	}
}

func TestParseBillIdentifierEquivalentInputsShareCanonicalForm(t *testing.T) {
	variants := []string{"HB150", "hb 150", "HB  150", " Hb 150 "}
	for _, raw := range variants {
		id, err := ParseBillIdentifier(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got := id.String(); got != "HB00150" {
			t.Fatalf("parse %q: canonical %q, want HB00150", raw, got)
		}
	}
}

func TestParseBillIdentifierRejectsInvalidInput(t *testing.T) {
	invalid := []string{"", "150", "XY12", "HB", "HB 123456", "HQ 12", "H B 150", "HB 15a"}
	for _, raw := range invalid {
		id, err := ParseBillIdentifier(raw)
		if err == nil {
			t.Fatalf("parse %q: expected error, got %+v", raw, id)
		}
		if !errors.Is(err, ErrInvalidBillFormat) {
			t.Fatalf("parse %q: expected ErrInvalidBillFormat, got %v", raw, err)
		}
		if !id.IsZero() {
			t.Fatalf("parse %q: expected zero identifier on failure, got %+v", raw, id)
		}
	}
}
