/*
Package feed reads and writes the CSV feeds the pipeline stages exchange:
the link input feed, the intermediate article feed and the final quote rows.
*/
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/warta-labs/quotewire/internal/types"
)

// Column contracts. Downstream consumers key on these headers, so they are
// fixed even where the struct field names differ.
var (
	linkColumns    = []string{"ID", "date", "source"}
	articleColumns = []string{"ID", "date_article", "ingestion_time", "source", "content"}
	rowColumns     = []string{
		"id", "date", "source",
		"quote", "spoke_person",
		"province", "city",
		"jabatan", "category", "alias", "fullname",
	}
)

// ReadLinks parses the link input feed. Rows whose source is not an HTTP(S)
// URL are dropped, after stripping stray quote characters spreadsheet exports
// leave around URLs. A UTF-8 BOM on the header is tolerated.
func ReadLinks(r io.Reader) ([]types.InputRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading links header: %w", err)
	}
	idx, err := columnIndex(header, linkColumns)
	if err != nil {
		return nil, err
	}

	var records []types.InputRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading links row: %w", err)
		}

		url := strings.Trim(strings.TrimSpace(cell(row, idx["source"])), `'"`)
		if !strings.HasPrefix(url, "http") {
			continue
		}
		records = append(records, types.InputRecord{
			ID:   strings.TrimSpace(cell(row, idx["ID"])),
			Date: strings.TrimSpace(cell(row, idx["date"])),
			URL:  url,
		})
	}
	return records, nil
}

// WriteArticles writes the intermediate article feed consumed by the parse
// stage.
func WriteArticles(w io.Writer, articles []types.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(articleColumns); err != nil {
		return fmt.Errorf("writing article header: %w", err)
	}
	for _, a := range articles {
		err := cw.Write([]string{a.ID, a.Date, a.IngestionTime, a.URL, a.Text})
		if err != nil {
			return fmt.Errorf("writing article %s: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadArticles parses the intermediate article feed back into records. Only
// the columns the parse stage needs are required; ingestion_time is optional
// because user-supplied content feeds never carry it.
func ReadArticles(r io.Reader) ([]types.Article, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading articles header: %w", err)
	}
	idx, err := columnIndex(header, []string{"ID", "date_article", "source", "content"})
	if err != nil {
		return nil, err
	}

	ingestionCol, hasIngestion := idx["ingestion_time"]

	var articles []types.Article
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading articles row: %w", err)
		}
		art := types.Article{
			ID:   strings.TrimSpace(cell(row, idx["ID"])),
			Date: strings.TrimSpace(cell(row, idx["date_article"])),
			URL:  strings.TrimSpace(cell(row, idx["source"])),
			Text: cell(row, idx["content"]),
		}
		if hasIngestion {
			art.IngestionTime = strings.TrimSpace(cell(row, ingestionCol))
		}
		articles = append(articles, art)
	}
	return articles, nil
}

// WriteRows writes the final flattened quote feed.
func WriteRows(w io.Writer, rows []types.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rowColumns); err != nil {
		return fmt.Errorf("writing output header: %w", err)
	}
	for _, r := range rows {
		err := cw.Write([]string{
			r.ID, r.Date, r.Source,
			r.Quote, r.Speaker,
			r.Province, r.City,
			r.Role, r.Category, r.Alias, r.FullName,
		})
		if err != nil {
			return fmt.Errorf("writing output row for %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// columnIndex maps required column names to their position in the header,
// tolerating a UTF-8 BOM on the first cell and extra columns anywhere.
func columnIndex(header, required []string) (map[string]int, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	idx := map[string]int{}
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("feed is missing column %q", col)
		}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
