package vision

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/logging"
)

const defaultPace = 200 * time.Millisecond

// BatchOptions configures a batch run. Glob selects the images, OutCSV is
// the two-column (file_path, reverse_prompt) results file. Images already
// present in OutCSV are skipped, so an interrupted run resumes where it
// stopped.
type BatchOptions struct {
	Glob   string
	OutCSV string
	Pace   time.Duration
}

// BatchSummary counts what a batch run did.
type BatchSummary struct {
	Matched int `json:"matched"`
	Skipped int `json:"skipped"`
	Written int `json:"written"`
	Failed  int `json:"failed"`
}

// RunBatch describes every image matching the glob and appends one CSV row
// per result. Rows are flushed as they are written; a failed image is
// logged and counted, never fatal.
func (c *Client) RunBatch(ctx context.Context, opts BatchOptions) (BatchSummary, error) {
	var sum BatchSummary

	files, err := filepath.Glob(opts.Glob)
	if err != nil {
		return sum, err
	}
	sort.Strings(files)
	sum.Matched = len(files)

	done := loadDoneSet(opts.OutCSV)

	_, statErr := os.Stat(opts.OutCSV)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(opts.OutCSV, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write([]string{"file_path", "reverse_prompt"}); err != nil {
			return sum, err
		}
		w.Flush()
	}

	pace := opts.Pace
	if pace <= 0 {
		pace = defaultPace
	}

	for _, path := range files {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if done[path] {
			sum.Skipped++
			logging.Debug().Str("image", filepath.Base(path)).Msg("already described, skipping")
			continue
		}

		prompt, err := c.Describe(ctx, path)
		if err != nil {
			sum.Failed++
			logging.Warn().Err(err).Str("image", filepath.Base(path)).Msg("describe failed")
			continue
		}

		if err := w.Write([]string{path, prompt}); err != nil {
			sum.Failed++
			logging.Error().Err(err).Str("image", filepath.Base(path)).Msg("write failed")
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			sum.Failed++
			logging.Error().Err(err).Str("image", filepath.Base(path)).Msg("flush failed")
			continue
		}

		sum.Written++
		c.sleep(pace)
	}

	logging.Info().
		Int("matched", sum.Matched).
		Int("skipped", sum.Skipped).
		Int("written", sum.Written).
		Int("failed", sum.Failed).
		Str("out", opts.OutCSV).
		Msg("batch complete")
	return sum, nil
}

// loadDoneSet reads the file paths already present in an output CSV. A
// missing or unreadable file just means nothing is done yet.
func loadDoneSet(path string) map[string]bool {
	done := make(map[string]bool)

	f, err := os.Open(path)
	if err != nil {
		return done
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first := true
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if first {
			first = false
			continue
		}
		if len(rec) > 0 && rec[0] != "" {
			done[rec[0]] = true
		}
	}
	return done
}
