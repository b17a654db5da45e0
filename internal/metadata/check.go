package metadata

import (
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxPathLen flags paths long enough to break downstream tooling.
const maxPathLen = 230

var oddNameChars = regexp.MustCompile(`[^A-Za-z0-9._\- ]`)

// numericColumns must hold integer-like values when non-empty.
var numericColumns = []string{"id", "quality", "style_match"}

// Issue is one finding, anchored to the 1-based file line of the row
// (the header is line 1).
type Issue struct {
	Line   int
	Detail string
}

// CheckReport summarizes a metadata scan.
type CheckReport struct {
	RowsScanned int
	BadPaths    []Issue
	LongPaths   []Issue
	BadChars    []Issue
	BadNumbers  []Issue
}

// OK reports whether the table is usable: rows resolve to files that exist
// under the images prefix. Long paths, odd characters and numeric issues
// are warnings only.
func (r *CheckReport) OK() bool {
	return len(r.BadPaths) == 0
}

// Check scans a metadata table for the problems that break dataset viewers
// and training runs: empty or misplaced file_name values, files missing on
// disk, overlong paths, suspicious filename characters, and non-integer
// values in numeric columns.
func Check(metaPath, imagesDir string) (*CheckReport, error) {
	header, rows, err := ReadRows(metaPath)
	if err != nil {
		return nil, err
	}
	if !hasColumn(header, "file_name") {
		return nil, fmt.Errorf("%w: file_name", ErrMissingColumn)
	}

	report := &CheckReport{}
	for i, row := range rows {
		line := i + 2
		report.RowsScanned++

		fn := strings.ReplaceAll(strings.TrimSpace(row["file_name"]), `\`, "/")
		if fn == "" {
			report.BadPaths = append(report.BadPaths, Issue{line, "empty file_name"})
			continue
		}
		if !strings.HasPrefix(fn, "images/") {
			report.BadPaths = append(report.BadPaths, Issue{line, "not under images/: " + fn})
		}

		name := path.Base(fn)
		full := filepath.Join(imagesDir, name)
		if _, err := os.Stat(full); err != nil {
			report.BadPaths = append(report.BadPaths, Issue{line, "missing file: " + fn})
		}

		if n := utf8.RuneCountInString(full); n > maxPathLen {
			report.LongPaths = append(report.LongPaths, Issue{line, fmt.Sprintf("(%d chars) %s", n, name)})
		}
		if oddNameChars.MatchString(name) {
			report.BadChars = append(report.BadChars, Issue{line, name})
		}

		for _, col := range numericColumns {
			v := strings.TrimSpace(row[col])
			if v != "" && !intLike(v) {
				report.BadNumbers = append(report.BadNumbers, Issue{line, col + " = " + v})
			}
		}
	}
	return report, nil
}

func hasColumn(header []string, name string) bool {
	for _, col := range header {
		if col == name {
			return true
		}
	}
	return false
}

// intLike accepts anything that parses as a finite number, so "3" and
// "3.0" both pass while "high" and "nan" do not.
func intLike(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
