package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func checkFixture(t *testing.T, csvContent string, imageNames ...string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range imageNames {
		if err := os.WriteFile(filepath.Join(imagesDir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	metaPath := filepath.Join(dir, "metadata.csv")
	if err := os.WriteFile(metaPath, []byte(csvContent), 0o644); err != nil {
		t.Fatal(err)
	}
	return metaPath, imagesDir
}

func TestCheckCleanTable(t *testing.T) {
	metaPath, imagesDir := checkFixture(t,
		"id,file_name,quality,style_match\n"+
			"1,images/a.png,4,5\n"+
			"2,images/b.png,3.0,4\n",
		"a.png", "b.png")

	report, err := Check(metaPath, imagesDir)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.OK() {
		t.Errorf("OK() = false, bad paths: %v", report.BadPaths)
	}
	if report.RowsScanned != 2 {
		t.Errorf("RowsScanned = %d, want 2", report.RowsScanned)
	}
	if n := len(report.LongPaths) + len(report.BadChars) + len(report.BadNumbers); n != 0 {
		t.Errorf("clean table produced %d warnings: %+v", n, report)
	}
}

func TestCheckFindsProblems(t *testing.T) {
	metaPath, imagesDir := checkFixture(t,
		"id,file_name,quality,style_match\n"+
			"1,images/a.png,4,5\n"+
			"2,,3,3\n"+
			"3,a.png,3,3\n"+
			"4,images/missing.png,3,3\n"+
			"5,images/weird#name.png,high,3\n",
		"a.png", "weird#name.png")

	report, err := Check(metaPath, imagesDir)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if report.OK() {
		t.Error("OK() = true for a broken table")
	}
	if report.RowsScanned != 5 {
		t.Errorf("RowsScanned = %d, want 5", report.RowsScanned)
	}

	if len(report.BadPaths) != 3 {
		t.Fatalf("BadPaths = %+v, want 3 issues", report.BadPaths)
	}
	if report.BadPaths[0].Line != 3 || report.BadPaths[0].Detail != "empty file_name" {
		t.Errorf("BadPaths[0] = %+v", report.BadPaths[0])
	}
	if report.BadPaths[1].Line != 4 || report.BadPaths[1].Detail != "not under images/: a.png" {
		t.Errorf("BadPaths[1] = %+v", report.BadPaths[1])
	}
	if report.BadPaths[2].Line != 5 || report.BadPaths[2].Detail != "missing file: images/missing.png" {
		t.Errorf("BadPaths[2] = %+v", report.BadPaths[2])
	}

	if len(report.BadChars) != 1 || report.BadChars[0].Detail != "weird#name.png" {
		t.Errorf("BadChars = %+v", report.BadChars)
	}
	if len(report.BadNumbers) != 1 || report.BadNumbers[0].Detail != "quality = high" {
		t.Errorf("BadNumbers = %+v", report.BadNumbers)
	}
}

func TestCheckEmptyFileNameSkipsOtherChecks(t *testing.T) {
	metaPath, imagesDir := checkFixture(t,
		"id,file_name,quality\n1,,oops\n")

	report, err := Check(metaPath, imagesDir)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(report.BadPaths) != 1 || len(report.BadNumbers) != 0 {
		t.Errorf("report = %+v, want only the empty file_name issue", report)
	}
}

func TestCheckBackslashPaths(t *testing.T) {
	metaPath, imagesDir := checkFixture(t,
		"id,file_name\n1,images\\a.png\n",
		"a.png")

	report, err := Check(metaPath, imagesDir)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !report.OK() {
		t.Errorf("backslash path flagged: %+v", report.BadPaths)
	}
}

func TestCheckMissingFileNameColumn(t *testing.T) {
	metaPath, imagesDir := checkFixture(t, "id,notes\n1,hello\n")

	if _, err := Check(metaPath, imagesDir); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestIntLike(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"3", true},
		{"3.7", true},
		{"-2", true},
		{"1e3", true},
		{"abc", false},
		{"nan", false},
		{"inf", false},
		{"", false},
	}
	for _, c := range cases {
		if got := intLike(c.in); got != c.want {
			t.Errorf("intLike(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
