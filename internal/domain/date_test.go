package domain_test

import (
	"testing"

	"github.com/stewardapp/steward-go/internal/domain"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"iso date", "2024-03-15", "2024-03-15", true},
		{"day month year", "15/03/2024", "2024-03-15", true},
		{"rfc3339", "2024-03-15T10:30:00Z", "2024-03-15", true},
		{"rfc3339 with offset", "2024-03-15T23:30:00+02:00", "2024-03-15", true},
		{"leading whitespace", "  2024-03-15 ", "2024-03-15", true},
		{"empty", "", "", false},
		{"garbage", "not-a-date", "not-a-date", false},
		{"us format rejected", "03/25/2024", "03/25/2024", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := domain.NormalizeDate(tc.input)
			if ok != tc.ok {
				t.Fatalf("NormalizeDate(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tm, ok := domain.ParseDate("01/02/2024")
	if !ok {
		t.Fatal("expected parseable date")
	}
	if tm.Year() != 2024 || tm.Month() != 2 || tm.Day() != 1 {
		t.Errorf("expected 2024-02-01, got %v", tm)
	}

	if _, ok := domain.ParseDate("soon"); ok {
		t.Error("expected parse failure for garbage input")
	}
}

func TestLaterDate(t *testing.T) {
	if got := domain.LaterDate("2024-01-01", "2024-02-01"); got != "2024-02-01" {
		t.Errorf("expected later date, got %q", got)
	}
	if got := domain.LaterDate("", "2024-02-01"); got != "2024-02-01" {
		t.Errorf("empty should lose, got %q", got)
	}
	if got := domain.LaterDate("2024-02-01", ""); got != "2024-02-01" {
		t.Errorf("empty should lose, got %q", got)
	}
}
