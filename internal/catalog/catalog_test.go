package catalog

import (
	"testing"
	"time"

	"arb-scanner/pkg/types"
)

var fixedNow = time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)

func TestExpandPolySlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		date    time.Time
		want    string
	}{
		{"highest-temperature-in-nyc-on-{month}-{day}", fixedNow, "highest-temperature-in-nyc-on-august-25"},
		{"fed-decision-in-{month}", fixedNow, "fed-decision-in-august"},
		{"nba-champion-{year}", fixedNow, "nba-champion-2026"},
		{
			"highest-temperature-in-nyc-on-{month}-{day}",
			time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
			"highest-temperature-in-nyc-on-january-3", // day unpadded
		},
	}
	for _, tt := range tests {
		if got := ExpandPolySlug(tt.pattern, tt.date); got != tt.want {
			t.Errorf("ExpandPolySlug(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestExpandKalshiTicker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		date    time.Time
		want    string
	}{
		{"KXHIGHNY-{yy}{MON}{dd}", fixedNow, "KXHIGHNY-26AUG25"},
		{
			"KXHIGHNY-{yy}{MON}{dd}",
			time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
			"KXHIGHNY-26JAN03", // day zero-padded
		},
		{"KXFEDDECISION-{yy}{MON}", fixedNow, "KXFEDDECISION-26AUG"},
	}
	for _, tt := range tests {
		if got := ExpandKalshiTicker(tt.pattern, tt.date); got != tt.want {
			t.Errorf("ExpandKalshiTicker(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestGenerateDaysWindow(t *testing.T) {
	t.Parallel()

	dynamic := []DynamicMapping{{
		Name:          "NYC high temperature",
		Category:      types.CategoryWeather,
		PolyPattern:   "highest-temperature-in-nyc-on-{month}-{day}",
		KalshiPattern: "KXHIGHNY-{yy}{MON}{dd}",
		KalshiSeries:  "KXHIGHNY",
	}}
	g := New(3,
		WithMappings(nil, dynamic),
		WithClock(func() time.Time { return fixedNow }),
	)

	entries := g.Generate()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	wantTickers := []string{"KXHIGHNY-26AUG25", "KXHIGHNY-26AUG26", "KXHIGHNY-26AUG27"}
	for i, want := range wantTickers {
		e := entries[i]
		if e.KalshiTicker != want {
			t.Errorf("entry %d ticker = %q, want %q", i, e.KalshiTicker, want)
		}
		if e.Type != types.EntryDynamic {
			t.Errorf("entry %d type = %q, want dynamic", i, e.Type)
		}
		if e.Category != types.CategoryWeather {
			t.Errorf("entry %d category = %q, want weather", i, e.Category)
		}
		if e.Date.IsZero() {
			t.Errorf("entry %d has zero date", i)
		}
	}
}

func TestGenerateYearly(t *testing.T) {
	t.Parallel()

	yearly := []YearlyMapping{{
		Name:          "NBA Championship",
		Category:      types.CategorySports,
		PolyPattern:   "nba-champion-{year}",
		KalshiPattern: "KXNBASERIES-{yy}",
		KalshiSeries:  "KXNBASERIES",
	}}
	g := New(3,
		WithMappings(yearly, nil),
		WithClock(func() time.Time { return fixedNow }),
	)

	entries := g.Generate()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.PolySlug != "nba-champion-2026" {
		t.Errorf("slug = %q", e.PolySlug)
	}
	if e.KalshiTicker != "KXNBASERIES-26" {
		t.Errorf("ticker = %q", e.KalshiTicker)
	}
	if e.Type != types.EntryStatic {
		t.Errorf("type = %q, want static", e.Type)
	}
}

func TestGenerateDefaultsCarryCategories(t *testing.T) {
	t.Parallel()

	g := New(2, WithClock(func() time.Time { return fixedNow }))
	for _, e := range g.Generate() {
		if e.Category == "" {
			t.Errorf("entry %q has no category", e.Name)
		}
		if e.PolySlug == "" || e.KalshiTicker == "" {
			t.Errorf("entry %q has empty identifiers", e.Name)
		}
	}
}

func TestParseNBAEventTicker(t *testing.T) {
	t.Parallel()

	away, home, date, ok := ParseNBAEventTicker("KXNBAGAME-26AUG25BOSLAL")
	if !ok {
		t.Fatal("parse failed")
	}
	if away != "BOS" || home != "LAL" {
		t.Errorf("teams = %q/%q", away, home)
	}
	want := time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("date = %v, want %v", date, want)
	}

	if _, _, _, ok := ParseNBAEventTicker("KXNBAGAME-garbage"); ok {
		t.Error("expected failure on malformed ticker")
	}
	if _, _, _, ok := ParseNBAEventTicker("noseparator"); ok {
		t.Error("expected failure without separator")
	}
}

func TestNBAGameEntry(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)
	e := NBAGameEntry("BOS", "LAL", "KXNBAGAME-26AUG25BOSLAL", date)

	if e.PolySlug != "nba-bos-lal-2026-08-25" {
		t.Errorf("slug = %q", e.PolySlug)
	}
	if e.KalshiTicker != "KXNBAGAME-26AUG25BOSLAL" {
		t.Errorf("ticker = %q", e.KalshiTicker)
	}
	if e.Category != types.CategoryNBAGame {
		t.Errorf("category = %q", e.Category)
	}
	if e.KalshiSeries != NBAGameSeries {
		t.Errorf("series = %q", e.KalshiSeries)
	}
}
