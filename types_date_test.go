package divtrack

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewDate_Normalizes(t *testing.T) {
	testCases := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  string
	}{
		{"plain", 2025, time.March, 7, "2025-03-07"},
		{"month overflow", 2025, time.Month(13), 1, "2026-01-01"},
		{"day overflow", 2025, time.January, 32, "2025-02-01"},
		{"day zero is previous month end", 2025, time.March, 0, "2025-02-28"},
		{"leap february", 2024, time.February, 29, "2024-02-29"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewDate(tc.year, tc.month, tc.day).String(); got != tc.want {
				t.Errorf("NewDate(%d, %d, %d) = %s, want %s", tc.year, tc.month, tc.day, got, tc.want)
			}
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := day("2025-03-07")

	if got := d.Add(30).String(); got != "2025-04-06" {
		t.Errorf("Add(30) = %s, want 2025-04-06", got)
	}
	if got := d.Add(-7).String(); got != "2025-02-28" {
		t.Errorf("Add(-7) = %s, want 2025-02-28", got)
	}
	if got := d.AddMonth(3).String(); got != "2025-06-07" {
		t.Errorf("AddMonth(3) = %s, want 2025-06-07", got)
	}
	if got := d.Sub(day("2025-01-01")); got != 65 {
		t.Errorf("Sub = %d, want 65", got)
	}
	if got := day("2025-01-01").Sub(d); got != -65 {
		t.Errorf("Sub reversed = %d, want -65", got)
	}
}

func TestDate_StartEndOf(t *testing.T) {
	testCases := []struct {
		date      string
		period    Period
		wantStart string
		wantEnd   string
	}{
		{"2025-03-07", Daily, "2025-03-07", "2025-03-07"},
		{"2025-03-07", Weekly, "2025-03-03", "2025-03-09"}, // a friday, monday..sunday week
		{"2025-03-07", Monthly, "2025-03-01", "2025-03-31"},
		{"2025-03-07", Quarterly, "2025-01-01", "2025-03-31"},
		{"2025-03-07", Yearly, "2025-01-01", "2025-12-31"},
		{"2025-11-15", Quarterly, "2025-10-01", "2025-12-31"},
	}
	for _, tc := range testCases {
		d := day(tc.date)
		if got := d.StartOf(tc.period).String(); got != tc.wantStart {
			t.Errorf("%s StartOf(%s) = %s, want %s", tc.date, tc.period, got, tc.wantStart)
		}
		if got := d.EndOf(tc.period).String(); got != tc.wantEnd {
			t.Errorf("%s EndOf(%s) = %s, want %s", tc.date, tc.period, got, tc.wantEnd)
		}
	}
}

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-03-07", want: "2025-03-07"},
		{in: "2025-7-1", want: "2025-07-01"}, // lenient single digit
		{in: " 2025-03-07 ", want: "2025-03-07"},
		{in: "07/03/2025", wantErr: true},
		{in: "2025-13-01", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) expected an error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDate_Relative(t *testing.T) {
	// Relative dates move with today, so only invariants are checked.
	if got := MustParseDate("0d"); got != Today() {
		t.Errorf("ParseDate(0d) = %s, want today %s", got, Today())
	}
	if got := MustParseDate("-1d"); got != Today().Add(-1) {
		t.Errorf("ParseDate(-1d) = %s, want %s", got, Today().Add(-1))
	}
	if got := MustParseDate("-2w"); got != Today().Add(-14) {
		t.Errorf("ParseDate(-2w) = %s, want %s", got, Today().Add(-14))
	}
	if got := MustParseDate("+1m"); got != Today().AddMonth(1) {
		t.Errorf("ParseDate(+1m) = %s, want %s", got, Today().AddMonth(1))
	}
}

func TestDate_JSON(t *testing.T) {
	d := day("2025-03-07")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `"2025-03-07"`; string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}

	if err := json.Unmarshal([]byte(`"-1d"`), &back); err == nil {
		t.Error("relative dates must be rejected in data files")
	}
}
