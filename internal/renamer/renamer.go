// Package renamer shortens unsafe image filenames and rewrites the
// metadata table to match. New names are lowercase ASCII slugs with a
// deterministic hash suffix, so reruns produce the same names and
// collisions between shortened stems cannot happen.
package renamer

import (
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/logging"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/metadata"
)

// defaultMaxLen is a safe basename length for archives and dataset viewers.
const defaultMaxLen = 64

const hashLen = 8

var (
	nonSlugRuns    = regexp.MustCompile(`[^a-z0-9._-]+`)
	underscoreRuns = regexp.MustCompile(`_+`)

	// NFKD first, so accented letters decompose and keep their base rune.
	asciiOnly = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
)

// Options configures a rename run. Every image named by the metadata table
// is expected directly under ImagesDir.
type Options struct {
	MetadataPath string
	ImagesDir    string
	MaxLen       int
	DryRun       bool
}

// Rename is one planned or applied filename change.
type Rename struct {
	OldName string
	NewName string
}

// Report summarizes a run. Renames holds every name that would change;
// Renamed counts the ones actually applied on disk.
type Report struct {
	RowsScanned int
	Renames     []Rename
	Renamed     int
	Missing     int
	BackupPath  string
	MappingPath string
}

// Run scans the metadata table, renames images whose basenames are not
// already in slug-hash form, and rewrites file_name for every surviving
// row. Before overwriting the table it saves a timestamped backup and a
// rename_mapping.csv next to it. With DryRun nothing on disk changes.
func Run(opts Options) (*Report, error) {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	if _, err := os.Stat(opts.ImagesDir); err != nil {
		return nil, err
	}

	header, rows, err := metadata.ReadRows(opts.MetadataPath)
	if err != nil {
		return nil, err
	}
	if !hasColumn(header, "file_name") {
		return nil, fmt.Errorf("%w: file_name", metadata.ErrMissingColumn)
	}

	rep := &Report{RowsScanned: len(rows)}
	for _, row := range rows {
		rel := strings.TrimSpace(strings.ReplaceAll(row["file_name"], `\`, "/"))
		if rel == "" {
			continue
		}

		name := path.Base(rel)
		src := filepath.Join(opts.ImagesDir, name)
		if _, err := os.Stat(src); err != nil {
			rep.Missing++
			continue
		}

		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		next := newName(stem, ext, src, maxLen)

		if next != name {
			rep.Renames = append(rep.Renames, Rename{OldName: name, NewName: next})
			if !opts.DryRun {
				if err := os.Rename(src, filepath.Join(opts.ImagesDir, next)); err != nil {
					return rep, err
				}
				rep.Renamed++
			}
		}
		row["file_name"] = "images/" + next
	}

	logging.Info().
		Int("rows", rep.RowsScanned).
		Int("to_rename", len(rep.Renames)).
		Int("missing", rep.Missing).
		Msg("scan complete")

	if opts.DryRun {
		logging.Info().Msg("dry run, nothing renamed and metadata not rewritten")
		return rep, nil
	}

	if err := writeBackup(opts.MetadataPath, rep); err != nil {
		return rep, err
	}
	if err := writeMapping(opts.MetadataPath, rep); err != nil {
		return rep, err
	}

	// Fill in ids only where missing; existing ids stay untouched.
	if hasColumn(header, "id") {
		for i, row := range rows {
			if row["id"] == "" {
				row["id"] = strconv.Itoa(i + 1)
			}
		}
	}
	if err := metadata.WriteRows(opts.MetadataPath, header, rows); err != nil {
		return rep, err
	}

	logging.Info().
		Int("renamed", rep.Renamed).
		Str("metadata", filepath.Base(opts.MetadataPath)).
		Msg("rename complete")
	return rep, nil
}

// newName builds the slug-hash basename. The hash is derived from the
// source path, so the result is stable across runs but unique per file.
func newName(stem, ext, salt string, maxLen int) string {
	sum := sha1.Sum([]byte(salt))
	h := hex.EncodeToString(sum[:])[:hashLen]

	room := maxLen - 1 - hashLen
	if room < 1 {
		room = 1
	}
	base := asciiSlug(stem)
	if len(base) > room {
		base = base[:room]
	}
	return base + "-" + h + strings.ToLower(ext)
}

// asciiSlug lowers a stem to [a-z0-9._-], dropping anything outside ASCII
// and collapsing the rest into single underscores.
func asciiSlug(s string) string {
	folded, _, err := transform.String(asciiOnly, s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugRuns.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "img"
	}
	return s
}

func writeBackup(metaPath string, rep *Report) error {
	orig, err := os.ReadFile(metaPath)
	if err != nil {
		return err
	}
	stamp := time.Now().Format("20060102-150405")
	backup := filepath.Join(filepath.Dir(metaPath), "metadata.backup-"+stamp+".csv")
	if err := os.WriteFile(backup, orig, 0o644); err != nil {
		return err
	}
	rep.BackupPath = backup
	return nil
}

func writeMapping(metaPath string, rep *Report) error {
	mapPath := filepath.Join(filepath.Dir(metaPath), "rename_mapping.csv")
	f, err := os.Create(mapPath)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"old_name", "new_name"}); err != nil {
		f.Close()
		return err
	}
	for _, m := range rep.Renames {
		if err := w.Write([]string{m.OldName, m.NewName}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	rep.MappingPath = mapPath
	return nil
}

func hasColumn(header []string, name string) bool {
	for _, col := range header {
		if col == name {
			return true
		}
	}
	return false
}
