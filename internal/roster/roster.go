/*
Package roster loads the reference list of known speakers and resolves the
short names the model reports against it.
*/
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/warta-labs/quotewire/internal/types"
)

// Roster is an ordered list of known speakers. Order matters: when several
// entries could match a reported name, the first one in file order wins, so
// resolution is deterministic across runs.
type Roster struct {
	entries []entry
}

type entry struct {
	rec     types.RosterEntry
	aliases []string // split on commas, lower-cased and trimmed at load time
}

// Load reads a roster CSV with columns nama, jabatan, category, alias.
// Column order follows the header, a UTF-8 BOM on the first header cell is
// tolerated, and rows without an alias are skipped since nothing could ever
// match them. The alias column is a comma-separated list and is lower-cased
// on load, both for matching and for what gets written back out.
func Load(r io.Reader) (*Roster, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading roster header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	idx := map[string]int{}
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"nama", "alias"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("roster is missing column %q", col)
		}
	}

	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ros := &Roster{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading roster row: %w", err)
		}

		rec := types.RosterEntry{
			FullName: field(row, "nama"),
			Role:     field(row, "jabatan"),
			Category: field(row, "category"),
			Alias:    strings.ToLower(field(row, "alias")),
		}
		if rec.Alias == "" {
			continue
		}

		var aliases []string
		for _, a := range strings.Split(rec.Alias, ",") {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}

		ros.entries = append(ros.entries, entry{rec: rec, aliases: aliases})
	}

	return ros, nil
}

// Len reports how many usable entries were loaded.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Match resolves a speaker name reported by the model against the roster.
// Each alias is compared case-insensitively by substring containment in
// either direction, so "Zainal" matches alias "zainal arifin" and vice versa.
// A miss returns the zero entry, which flattens to empty output columns.
func (r *Roster) Match(speaker string) types.RosterEntry {
	s := strings.ToLower(strings.TrimSpace(speaker))
	if s == "" {
		return types.RosterEntry{}
	}

	for _, e := range r.entries {
		for _, alias := range e.aliases {
			if strings.Contains(s, alias) || strings.Contains(alias, s) {
				return e.rec
			}
		}
	}
	return types.RosterEntry{}
}
