package metadata

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// ReadRows loads a metadata table, dispatching on the file extension.
// It returns the header in file order and one Row per data row.
func ReadRows(path string) ([]string, []caption.Row, error) {
	switch {
	case hasExt(path, ".csv"):
		return readDelimited(path, ',')
	case hasExt(path, ".tsv"):
		return readDelimited(path, '\t')
	case hasExt(path, ".xlsx"), hasExt(path, ".xls"):
		return readExcel(path)
	case hasExt(path, ".db"), hasExt(path, ".sqlite"), hasExt(path, ".sqlite3"):
		return readSQLite(path)
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

func hasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

func readDelimited(path string, comma rune) ([]string, []caption.Row, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = comma
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return tableFromRecords(path, records)
}

func readExcel(path string) ([]string, []caption.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheet, err := dataSheet(f)
	if err != nil {
		return nil, nil, err
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return tableFromRecords(path, records)
}

// dataSheet picks the sheet holding the table, skipping the prose sheets
// spreadsheet exports often carry. If every sheet looks like prose the last
// one wins.
func dataSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrEmptyFile)
	}
	skip := map[string]bool{
		"info":     true,
		"metadata": true,
		"about":    true,
		"readme":   true,
		"notes":    true,
	}
	for _, sheet := range sheets {
		if !skip[strings.ToLower(sheet)] {
			return sheet, nil
		}
	}
	return sheets[len(sheets)-1], nil
}

func readSQLite(path string) ([]string, []caption.Row, error) {
	// sql.Open would create a missing database file.
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	result, err := db.Query(`SELECT * FROM metadata`)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", filepath.Base(path), err)
	}
	defer result.Close()

	header, err := result.Columns()
	if err != nil {
		return nil, nil, err
	}

	var rows []caption.Row
	vals := make([]sql.NullString, len(header))
	ptrs := make([]interface{}, len(header))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for result.Next() {
		if err := result.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(caption.Row, len(header))
		for i, col := range header {
			row[col] = vals[i].String
		}
		rows = append(rows, row)
	}
	return header, rows, result.Err()
}

// tableFromRecords turns raw records into header + rows, padding short
// records and dropping cells beyond the header.
func tableFromRecords(path string, records [][]string) ([]string, []caption.Row, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyFile)
	}
	header := records[0]
	rows := make([]caption.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(caption.Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
