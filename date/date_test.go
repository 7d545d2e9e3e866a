package date

import (
	"encoding/json"
	"slices"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	tests := []struct {
		y    int
		m    time.Month
		d    int
		want string
	}{
		{2025, 13, 1, "2026-01-01"},
		{2025, 0, 1, "2024-12-01"},
		{2026, 2, 29, "2026-03-01"},
		{2024, 2, 29, "2024-02-29"},
	}
	for _, tt := range tests {
		if got := New(tt.y, tt.m, tt.d).String(); got != tt.want {
			t.Errorf("New(%d, %d, %d) = %s, want %s", tt.y, tt.m, tt.d, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2026-01-27", "2026-01-27", false},
		{"2026-1-7", "2026-01-07", false},
		{"2026-02-30", "", true},
		{"not a date", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	d := MustParse("2026-01-31")
	if got := d.AddMonths(1).String(); got != "2026-02-01" {
		t.Errorf("AddMonths(1) = %s", got)
	}
	if got := d.AddMonths(-13).String(); got != "2024-12-01" {
		t.Errorf("AddMonths(-13) = %s", got)
	}
}

func TestJSON(t *testing.T) {
	d := MustParse("2026-01-26")
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2026-01-26"` {
		t.Errorf("Marshal = %s", b)
	}
	var got Date
	if err := json.Unmarshal([]byte(`"2026-1-26"`), &got); err != nil {
		t.Fatal(err)
	}
	if got != d {
		t.Errorf("Unmarshal = %s, want %s", got, d)
	}
}

func TestRange(t *testing.T) {
	r := Range{From: MustParse("2025-12-27"), To: MustParse("2026-01-26")}
	if !r.Contains(MustParse("2026-01-01")) || r.Contains(MustParse("2026-01-27")) {
		t.Errorf("Contains is wrong for %s", r)
	}
	if got := r.Len(); got != 31 {
		t.Errorf("Len() = %d, want 31", got)
	}
	days := slices.Collect(r.Days())
	if len(days) != 31 || days[0] != r.From || days[30] != r.To {
		t.Errorf("Days() = %v", days)
	}
}
