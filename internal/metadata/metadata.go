// Package metadata reads and writes the dataset's tabular metadata in the
// formats the toolkit moves between: CSV/TSV files, spreadsheets, and a
// single-table SQLite database.
package metadata

import (
	"errors"
	"strconv"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
)

// Sentinel errors for common cases
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumn     = errors.New("missing column")
	ErrEmptyFile         = errors.New("empty file")
)

// Columns is the canonical column order for dataset metadata. Readers
// preserve whatever header a file carries; writers producing a fresh file
// use this order.
var Columns = []string{
	"id",
	"file_name",
	"attributes",
	"category",
	"composition",
	"human_description",
	"issue",
	"mood",
	"notes",
	"palette",
	"quality",
	"llm_description",
	"style_match",
	"triage",
}

// Resequence renumbers the id column 1..N in row order, so IDs stay
// sequential after deletions or merges. If the header lacks an id column
// one is appended; the returned header is the one writers should use.
func Resequence(header []string, rows []caption.Row) []string {
	for i, row := range rows {
		row["id"] = strconv.Itoa(i + 1)
	}
	for _, col := range header {
		if col == "id" {
			return header
		}
	}
	return append(header, "id")
}
