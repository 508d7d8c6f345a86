package pipeline

import (
	"github.com/warta-labs/quotewire/internal/roster"
	"github.com/warta-labs/quotewire/internal/types"
)

// Flatten turns parse results into output rows. Every article yields at
// least one row so downstream joins never lose an input: quoteless articles
// keep a placeholder row carrying whatever location was found, timed-out
// extractions surface one all-sentinel row, and each quote otherwise gets its
// positionally aligned speaker resolved against the roster. ros may be nil
// when no whitelist is available; every speaker then resolves to the zero
// entry.
func Flatten(results []types.ParseResult, ros *roster.Roster) []types.Row {
	var rows []types.Row
	for _, res := range results {
		rows = append(rows, flattenOne(res, ros)...)
	}
	return rows
}

func flattenOne(res types.ParseResult, ros *roster.Roster) []types.Row {
	base := types.Row{
		ID:     res.ID,
		Date:   res.Date,
		Source: res.Source,
	}
	ext := res.Extraction

	if ext.Err == types.ExtractionTimeout {
		row := base
		row.Quote = types.TimeoutSentinel
		row.Speaker = types.TimeoutSentinel
		row.Province = types.TimeoutSentinel
		row.City = types.TimeoutSentinel
		return []types.Row{row}
	}

	if len(ext.Quotes) == 0 {
		row := base
		row.Province = ext.Province
		row.City = ext.City
		return []types.Row{row}
	}

	rows := make([]types.Row, 0, len(ext.Quotes))
	for i, quote := range ext.Quotes {
		row := base
		row.Quote = quote
		if i < len(ext.Speakers) {
			row.Speaker = ext.Speakers[i]
		}
		row.Province = ext.Province
		row.City = ext.City

		match := types.RosterEntry{}
		if ros != nil {
			match = ros.Match(row.Speaker)
		}
		row.Role = match.Role
		row.Category = match.Category
		row.Alias = match.Alias
		row.FullName = match.FullName

		rows = append(rows, row)
	}
	return rows
}
