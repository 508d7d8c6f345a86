package roster

import (
	"strings"
	"testing"
)

const testWhitelist = `nama,jabatan,category,alias
Zainal Arifin,Gubernur,Pemprov,"zainal arifin, zainal"
Amalia Putri,Kepala BPS,BPS,amalia
Zainal Abidin,Walikota,Pemkot,zainal abidin
`

func mustLoad(t *testing.T, csv string) *Roster {
	t.Helper()
	ros, err := Load(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return ros
}

func TestLoad(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	if ros.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ros.Len())
	}
}

func TestLoadToleratesBOM(t *testing.T) {
	ros := mustLoad(t, "\uFEFF"+testWhitelist)
	if ros.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ros.Len())
	}
}

func TestLoadSkipsRowsWithoutAlias(t *testing.T) {
	ros := mustLoad(t, "nama,jabatan,category,alias\nTanpa Alias,Staf,X,\n")
	if ros.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ros.Len())
	}
}

func TestLoadMissingColumn(t *testing.T) {
	if _, err := Load(strings.NewReader("nama,jabatan\nA,B\n")); err == nil {
		t.Error("Load() = nil error, want missing-column failure")
	}
}

func TestMatchShortNameAgainstLongAlias(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	got := ros.Match("Zainal")
	if got.FullName != "Zainal Arifin" {
		t.Errorf("Match(Zainal) = %q, want Zainal Arifin", got.FullName)
	}
}

func TestMatchLongNameAgainstShortAlias(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	got := ros.Match("Amalia Putri Widodo")
	if got.FullName != "Amalia Putri" {
		t.Errorf("Match() = %q, want Amalia Putri", got.FullName)
	}
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	got := ros.Match("AMALIA")
	if got.FullName != "Amalia Putri" {
		t.Errorf("Match(AMALIA) = %q, want Amalia Putri", got.FullName)
	}
}

func TestMatchFirstEntryWins(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	// Both Zainal entries contain "zainal"; file order decides.
	got := ros.Match("zainal")
	if got.FullName != "Zainal Arifin" {
		t.Errorf("Match(zainal) = %q, want the first entry", got.FullName)
	}
}

func TestMatchMissReturnsZeroEntry(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	got := ros.Match("Joko")
	if !got.IsZero() {
		t.Errorf("Match(Joko) = %+v, want zero entry", got)
	}
}

func TestMatchEmptySpeaker(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	if got := ros.Match("  "); !got.IsZero() {
		t.Errorf("Match(blank) = %+v, want zero entry", got)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	ros := mustLoad(t, testWhitelist)
	first := ros.Match("zainal")
	for i := 0; i < 10; i++ {
		if got := ros.Match("zainal"); got != first {
			t.Fatalf("Match() changed between calls: %+v vs %+v", got, first)
		}
	}
}
