package service

import "testing"

func TestIsFiscallyRelevant(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"appropriation", "An act making an APPROPRIATION for highway repair.", true},
		{"cost inside sentence", "The estimated cost to local governments is unknown.", true},
		{"million", "authorizes bonds of up to $40 million", true},
		{"mixed case keyword", "relating to school FUNDING formulas", true},
		{"no keywords", "An act designating the bluebonnet trail as a scenic route.", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsFiscallyRelevant(tc.text); got != tc.want {
				t.Fatalf("IsFiscallyRelevant(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}
