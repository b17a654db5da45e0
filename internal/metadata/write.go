package metadata

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
)

// WriteRows writes a metadata table, dispatching on the file extension.
// Parent directories are created as needed. An existing file or table is
// replaced wholesale.
func WriteRows(path string, header []string, rows []caption.Row) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	switch {
	case hasExt(path, ".csv"):
		return writeDelimited(path, ',', header, rows)
	case hasExt(path, ".tsv"):
		return writeDelimited(path, '\t', header, rows)
	case hasExt(path, ".db"), hasExt(path, ".sqlite"), hasExt(path, ".sqlite3"):
		return writeSQLite(path, header, rows)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

func writeDelimited(path string, comma rune, header []string, rows []caption.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = comma
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeSQLite(path string, header []string, rows []caption.Row) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cols := make([]string, len(header))
	quoted := make([]string, len(header))
	marks := make([]string, len(header))
	for i, col := range header {
		cols[i] = `"` + col + `" TEXT`
		quoted[i] = `"` + col + `"`
		marks[i] = "?"
	}

	if _, err := tx.Exec(`DROP TABLE IF EXISTS metadata`); err != nil {
		return err
	}
	if _, err := tx.Exec(`CREATE TABLE metadata (` + strings.Join(cols, ", ") + `)`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO metadata (` + strings.Join(quoted, ", ") + `) VALUES (` + strings.Join(marks, ", ") + `)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(header))
	for _, row := range rows {
		for i, col := range header {
			args[i] = row[col]
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
