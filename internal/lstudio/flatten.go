// Package lstudio moves data across the annotation-tool boundary: it builds
// import task files from a folder tree of images, and converts the tool's
// JSON exports back into metadata rows.
package lstudio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/logging"
)

// DefaultExts are the image extensions included when none are configured.
var DefaultExts = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// Task is one import entry: an image reference plus the folder-derived label.
type Task struct {
	ImageURI string
	Label    string
	RelDir   string
}

// FlattenOptions configures Flatten. LabelDepth is how many directory
// levels under the root form the label; at depth 0 every image gets
// RootLabel.
type FlattenOptions struct {
	Exts          []string
	LabelDepth    int
	RootLabel     string
	AbsolutePaths bool
	OutputPrefix  string
	DryRun        bool
}

// FlattenResult reports what was scanned and, unless dry-running, where the
// import files were written.
type FlattenResult struct {
	Tasks      []Task
	ByLabel    map[string]int
	JSONPath   string
	CSVPath    string
	LabelsPath string
}

type taskData struct {
	Image string `json:"image"`
}

type taskMeta struct {
	FolderLabel string `json:"folder_label"`
	RelDir      string `json:"rel_dir"`
}

type importTask struct {
	Data taskData `json:"data"`
	Meta taskMeta `json:"meta"`
}

// Flatten scans a nested image tree and produces annotation-tool import
// files next to the root: <prefix>.json task list, <prefix>.csv, and
// <prefix>.labels.txt with the distinct labels.
func Flatten(root string, opts FlattenOptions) (*FlattenResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	if opts.RootLabel == "" {
		opts.RootLabel = "__root__"
	}

	exts := extSet(opts.Exts)
	images, err := findImages(root, exts)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		logging.Warn().Str("root", root).Msg("no images found with given extensions")
	}

	result := &FlattenResult{ByLabel: make(map[string]int)}
	for _, img := range images {
		rel, err := filepath.Rel(root, img)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		dirs := strings.Split(rel, "/")
		dirs = dirs[:len(dirs)-1]

		t := Task{
			ImageURI: rel,
			Label:    labelFromDirs(dirs, opts.LabelDepth, opts.RootLabel),
			RelDir:   strings.Join(dirs, "/"),
		}
		if opts.AbsolutePaths {
			t.ImageURI = fileURI(img)
		}
		result.Tasks = append(result.Tasks, t)
		result.ByLabel[t.Label]++
	}

	logging.Info().
		Str("root", root).
		Int("files_matched", len(images)).
		Int("label_depth", opts.LabelDepth).
		Bool("absolute_paths", opts.AbsolutePaths).
		Msg("image tree scanned")
	logLabelDistribution(result.ByLabel)

	if opts.DryRun {
		return result, nil
	}

	prefix := opts.OutputPrefix
	if prefix == "" {
		prefix = strings.ReplaceAll(filepath.Base(root), " ", "_")
	}
	parent := filepath.Dir(root)
	result.JSONPath = filepath.Join(parent, prefix+".json")
	result.CSVPath = filepath.Join(parent, prefix+".csv")
	result.LabelsPath = filepath.Join(parent, prefix+".labels.txt")

	if err := writeTaskJSON(result.JSONPath, result.Tasks); err != nil {
		return nil, err
	}
	if err := writeTaskCSV(result.CSVPath, result.Tasks); err != nil {
		return nil, err
	}
	if err := writeLabels(result.LabelsPath, result.Tasks); err != nil {
		return nil, err
	}
	return result, nil
}

// extSet normalizes extensions to lowercase dotted form.
func extSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		exts = DefaultExts
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

func findImages(root string, exts map[string]bool) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if exts[strings.ToLower(filepath.Ext(path))] {
			images = append(images, path)
		}
		return nil
	})
	return images, err
}

func labelFromDirs(dirs []string, depth int, fallback string) string {
	if depth <= 0 {
		return fallback
	}
	if len(dirs) >= depth {
		return strings.Join(dirs[:depth], "/")
	}
	if len(dirs) > 0 {
		return strings.Join(dirs, "/")
	}
	return fallback
}

func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func logLabelDistribution(byLabel map[string]int) {
	type labelCount struct {
		label string
		count int
	}
	dist := make([]labelCount, 0, len(byLabel))
	for label, count := range byLabel {
		dist = append(dist, labelCount{label, count})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].count != dist[j].count {
			return dist[i].count > dist[j].count
		}
		return dist[i].label < dist[j].label
	})
	if len(dist) > 20 {
		dist = dist[:20]
	}
	for _, lc := range dist {
		logging.Debug().Str("label", lc.label).Int("count", lc.count).Msg("label distribution")
	}
}

func writeTaskJSON(path string, tasks []Task) error {
	payload := make([]importTask, len(tasks))
	for i, t := range tasks {
		payload[i] = importTask{
			Data: taskData{Image: t.ImageURI},
			Meta: taskMeta{FolderLabel: t.Label, RelDir: t.RelDir},
		}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeTaskCSV(path string, tasks []Task) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"image", "label", "rel_dir"}); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := w.Write([]string{t.ImageURI, t.Label, t.RelDir}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeLabels(path string, tasks []Task) error {
	seen := make(map[string]bool)
	var labels []string
	for _, t := range tasks {
		if t.Label == "" || seen[t.Label] {
			continue
		}
		seen[t.Label] = true
		labels = append(labels, t.Label)
	}
	sort.Strings(labels)

	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
