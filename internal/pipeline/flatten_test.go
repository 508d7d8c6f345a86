package pipeline

import (
	"strings"
	"testing"

	"github.com/warta-labs/quotewire/internal/roster"
	"github.com/warta-labs/quotewire/internal/types"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	ros, err := roster.Load(strings.NewReader(
		"nama,jabatan,category,alias\nZainal Arifin,Gubernur,Pemprov,zainal\n"))
	if err != nil {
		t.Fatalf("roster.Load() error: %v", err)
	}
	return ros
}

func result(quotes, speakers []string) types.ParseResult {
	return types.ParseResult{
		ID:     "7",
		Date:   "2025-01-02",
		Source: "https://example.com/a",
		Extraction: types.Extraction{
			Quotes:   quotes,
			Speakers: speakers,
			Province: "Jawa Tengah",
			City:     "Semarang",
		},
	}
}

func TestFlattenNoQuotesYieldsPlaceholderRow(t *testing.T) {
	rows := Flatten([]types.ParseResult{result(nil, nil)}, testRoster(t))

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Quote != "" || r.Speaker != "" {
		t.Errorf("placeholder row carries quote/speaker: %q/%q", r.Quote, r.Speaker)
	}
	if r.Province != "Jawa Tengah" || r.City != "Semarang" {
		t.Errorf("placeholder row lost location: %q/%q", r.Province, r.City)
	}
	if r.FullName != "" || r.Role != "" {
		t.Errorf("placeholder row should have no roster match: %+v", r)
	}
}

func TestFlattenOneRowPerQuote(t *testing.T) {
	rows := Flatten([]types.ParseResult{
		result([]string{"a", "b", "c"}, []string{"Zainal", "Budi", "Citra"}),
	}, testRoster(t))

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range []string{"a", "b", "c"} {
		if rows[i].Quote != want {
			t.Errorf("rows[%d].Quote = %q, want %q", i, rows[i].Quote, want)
		}
	}
	if rows[0].FullName != "Zainal Arifin" || rows[0].Role != "Gubernur" {
		t.Errorf("rows[0] roster match = %q/%q", rows[0].FullName, rows[0].Role)
	}
	if rows[1].FullName != "" {
		t.Errorf("rows[1] should be unmatched, got %q", rows[1].FullName)
	}
}

func TestFlattenOutOfRangeSpeakerIsEmpty(t *testing.T) {
	rows := Flatten([]types.ParseResult{
		result([]string{"a", "b"}, []string{"Zainal"}),
	}, testRoster(t))

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1].Speaker != "" {
		t.Errorf("rows[1].Speaker = %q, want empty for missing positional speaker", rows[1].Speaker)
	}
	if !rowRosterZero(rows[1]) {
		t.Errorf("rows[1] should have no roster match: %+v", rows[1])
	}
}

func TestFlattenTimeoutYieldsSentinelRow(t *testing.T) {
	res := types.ParseResult{
		ID:     "9",
		Date:   "2025-01-02",
		Source: "https://example.com/b",
		Extraction: types.Extraction{
			Quotes:   []string{},
			Speakers: []string{},
			Province: types.TimeoutSentinel,
			City:     types.TimeoutSentinel,
			Err:      types.ExtractionTimeout,
		},
	}
	rows := Flatten([]types.ParseResult{res}, testRoster(t))

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	for field, got := range map[string]string{
		"Quote": r.Quote, "Speaker": r.Speaker, "Province": r.Province, "City": r.City,
	} {
		if got != types.TimeoutSentinel {
			t.Errorf("%s = %q, want %q", field, got, types.TimeoutSentinel)
		}
	}
	if !rowRosterZero(r) {
		t.Errorf("timeout row should have no roster match: %+v", r)
	}
}

func TestFlattenNilRoster(t *testing.T) {
	rows := Flatten([]types.ParseResult{
		result([]string{"a"}, []string{"Zainal"}),
	}, nil)

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !rowRosterZero(rows[0]) {
		t.Errorf("nil roster should leave identity columns empty: %+v", rows[0])
	}
	if rows[0].Speaker != "Zainal" {
		t.Errorf("Speaker = %q, want the reported name kept", rows[0].Speaker)
	}
}

func TestFlattenPreservesResultOrder(t *testing.T) {
	results := []types.ParseResult{
		{ID: "1", Extraction: types.Extraction{Quotes: []string{"q1"}, Speakers: []string{"x"}}},
		{ID: "2", Extraction: types.EmptyExtraction()},
		{ID: "3", Extraction: types.Extraction{Quotes: []string{"q3a", "q3b"}, Speakers: []string{"y", "z"}}},
	}
	rows := Flatten(results, nil)

	want := []string{"1", "2", "3", "3"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, id := range want {
		if rows[i].ID != id {
			t.Errorf("rows[%d].ID = %q, want %q", i, rows[i].ID, id)
		}
	}
}

func rowRosterZero(r types.Row) bool {
	return r.Role == "" && r.Category == "" && r.Alias == "" && r.FullName == ""
}
