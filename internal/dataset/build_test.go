package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/pipeline"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

func testGenerator(t *testing.T) *caption.Generator {
	t.Helper()
	index := terms.NewIndex([]terms.Term{
		{Term: "blue", Weight: 1.4},
	}, terms.CollisionMaxWeight)
	return caption.New(caption.Options{
		DescriptionFields: []string{"llm_description", "human_description"},
		Index:             index,
		Trigger:           "trig",
		WeightPolicy:      pipeline.PolicyAnnotate,
	})
}

func buildFixture(t *testing.T, csvContent string, imageNames ...string) Options {
	t.Helper()
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range imageNames {
		if err := os.WriteFile(filepath.Join(imagesDir, name), []byte("img-"+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	metaPath := filepath.Join(dir, "metadata.csv")
	if err := os.WriteFile(metaPath, []byte(csvContent), 0o644); err != nil {
		t.Fatal(err)
	}
	// file_name values carry the images/ prefix, so the images root is the
	// directory that contains the images folder.
	return Options{
		MetadataPath: metaPath,
		ImagesDir:    dir,
		OutDir:       filepath.Join(dir, "out"),
		MinStyle:     3,
		MinQuality:   3,
		Generator:    testGenerator(t),
	}
}

const buildCSV = "file_name,llm_description,human_description,quality,style_match,triage\n" +
	"images/a.png,a blue sky,,4,5,\n" +
	"images/a.png,whatever,,4,4,Skip\n" +
	"images/a.png,too poor,,1,5,\n" +
	"images/zz.png,missing pic,,4,4,\n" +
	"images/b.png,,,4,4,\n"

func TestRunCounts(t *testing.T) {
	opts := buildFixture(t, buildCSV, "a.png", "b.png")

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	c := report.Counts
	if c.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", c.TotalRows)
	}
	if c.SkippedTriage != 1 {
		t.Errorf("SkippedTriage = %d, want 1", c.SkippedTriage)
	}
	if c.PassedFilters != 3 {
		t.Errorf("PassedFilters = %d, want 3", c.PassedFilters)
	}
	if c.MissingImages != 1 {
		t.Errorf("MissingImages = %d, want 1", c.MissingImages)
	}
	if c.EmptyDescriptions != 1 {
		t.Errorf("EmptyDescriptions = %d, want 1", c.EmptyDescriptions)
	}
	if c.AnnotationsWritten != 1 {
		t.Errorf("AnnotationsWritten = %d, want 1", c.AnnotationsWritten)
	}
	if c.ImagesCopied != 1 {
		t.Errorf("ImagesCopied = %d, want 1", c.ImagesCopied)
	}
	if c.CopyErrors != 0 || c.WriteErrors != 0 {
		t.Errorf("unexpected errors: copy=%d write=%d", c.CopyErrors, c.WriteErrors)
	}
}

func TestRunWritesCaptionAndImage(t *testing.T) {
	opts := buildFixture(t, buildCSV, "a.png", "b.png")

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(opts.OutDir, "images", "a.txt"))
	if err != nil {
		t.Fatalf("caption file: %v", err)
	}
	want := "trig A blue (blue:1.4) sky."
	if string(data) != want {
		t.Errorf("caption = %q, want %q", data, want)
	}

	img, err := os.ReadFile(filepath.Join(opts.OutDir, "images", "a.png"))
	if err != nil {
		t.Fatalf("image copy: %v", err)
	}
	if string(img) != "img-a.png" {
		t.Errorf("image content = %q", img)
	}
}

func TestRunWritesReport(t *testing.T) {
	opts := buildFixture(t, buildCSV, "a.png", "b.png")

	got, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got.RunID) != 26 {
		t.Errorf("RunID = %q, want a 26-char ULID", got.RunID)
	}
	if len(got.Examples) != 1 {
		t.Fatalf("Examples = %+v, want 1", got.Examples)
	}
	if !strings.Contains(got.Examples[0].DescriptionPreview, "blue") {
		t.Errorf("preview = %q", got.Examples[0].DescriptionPreview)
	}

	data, err := os.ReadFile(filepath.Join(opts.OutDir, "report.json"))
	if err != nil {
		t.Fatalf("report.json: %v", err)
	}
	var fromDisk Report
	if err := json.Unmarshal(data, &fromDisk); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if fromDisk.RunID != got.RunID {
		t.Errorf("report RunID = %q, want %q", fromDisk.RunID, got.RunID)
	}
	if fromDisk.Counts.AnnotationsWritten != 1 {
		t.Errorf("report AnnotationsWritten = %d, want 1", fromDisk.Counts.AnnotationsWritten)
	}
}

func TestRunDryRun(t *testing.T) {
	opts := buildFixture(t, buildCSV, "a.png", "b.png")
	opts.DryRun = true

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Counts.PassedFilters != 3 {
		t.Errorf("PassedFilters = %d, want 3", report.Counts.PassedFilters)
	}
	if report.Counts.AnnotationsWritten != 0 || report.Counts.ImagesCopied != 0 {
		t.Errorf("dry run wrote: %+v", report.Counts)
	}
	if len(report.Examples) != 1 {
		t.Errorf("dry run should still sample examples, got %d", len(report.Examples))
	}
	if _, err := os.Stat(opts.OutDir); !os.IsNotExist(err) {
		t.Error("dry run created the output directory")
	}
}

func TestRunRequireTerm(t *testing.T) {
	csvContent := "file_name,llm_description,quality,style_match,triage\n" +
		"images/a.png,a blue sky,4,5,\n" +
		"images/b.png,a red desert,4,5,\n"
	opts := buildFixture(t, csvContent, "a.png", "b.png")
	opts.RequireTerm = true
	opts.Terms = []terms.Term{{Term: "blue", Weight: 1.4}}

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Counts.PassedFilters != 1 {
		t.Errorf("PassedFilters = %d, want 1", report.Counts.PassedFilters)
	}
	if report.Counts.AnnotationsWritten != 1 {
		t.Errorf("AnnotationsWritten = %d, want 1", report.Counts.AnnotationsWritten)
	}
}

func TestRunExtraFilters(t *testing.T) {
	csvContent := "file_name,llm_description,category,quality,style_match,triage\n" +
		"images/a.png,a blue sky,landscape,4,5,\n" +
		"images/b.png,a blue sea,portrait,4,5,\n"
	opts := buildFixture(t, csvContent, "a.png", "b.png")
	opts.Filters = map[string][]string{"category": {"landscape"}}

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Counts.PassedFilters != 1 {
		t.Errorf("PassedFilters = %d, want 1", report.Counts.PassedFilters)
	}
}

func TestRunManyWorkers(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("file_name,llm_description,quality,style_match,triage\n")
	names := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("img%02d.png", i)
		names = append(names, name)
		fmt.Fprintf(&sb, "images/%s,a blue frame %d,4,5,\n", name, i)
	}
	opts := buildFixture(t, sb.String(), names...)
	opts.Workers = 8

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Counts.TotalRows != 25 {
		t.Errorf("TotalRows = %d, want 25", report.Counts.TotalRows)
	}
	if report.Counts.AnnotationsWritten != 25 || report.Counts.ImagesCopied != 25 {
		t.Errorf("counts = %+v, want 25 written and copied", report.Counts)
	}
	if len(report.Examples) != maxExamples {
		t.Errorf("Examples = %d, want %d", len(report.Examples), maxExamples)
	}
	for _, name := range names {
		txt := strings.TrimSuffix(name, ".png") + ".txt"
		if _, err := os.Stat(filepath.Join(opts.OutDir, "images", txt)); err != nil {
			t.Errorf("missing caption %s: %v", txt, err)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	opts := buildFixture(t, buildCSV, "a.png", "b.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Counts.TotalRows != 0 {
		t.Errorf("TotalRows = %d, want 0 after cancel", report.Counts.TotalRows)
	}
}

func TestRunNilGenerator(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Error("expected error for nil generator")
	}
}

func TestCopyFileKeepsModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	if err := os.WriteFile(src, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), stamp)
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", 200)
	if got := preview(long); len([]rune(got)) != maxPreviewLen {
		t.Errorf("preview length = %d, want %d", len([]rune(got)), maxPreviewLen)
	}
	if got := preview("short"); got != "short" {
		t.Errorf("preview = %q", got)
	}
}
