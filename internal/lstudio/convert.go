package lstudio

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/internal/metadata"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
)

// fieldAliases maps each metadata column to the from_name keys annotators
// have used for it, in fallback order.
var fieldAliases = map[string][]string{
	"attributes":        {"attributes", "attrs"},
	"category":          {"category", "class", "label"},
	"composition":       {"composition", "comp"},
	"human_description": {"human_description", "description", "desc", "human_desc"},
	"issue":             {"issue", "issues", "quality_issue"},
	"mood":              {"mood", "vibe"},
	"notes":             {"notes", "note", "comment", "comments"},
	"palette":           {"palette", "color_palette", "colors"},
	"quality":           {"quality", "score", "rating", "aesthetic", "stars"},
	"llm_description":   {"llm_description", "reverse_prompt", "rev_prompt", "revprompt", "prompt_reverse"},
	"style_match":       {"style_match", "style", "match"},
	"triage":            {"triage", "flag", "status"},
}

var localFilesPrefix = regexp.MustCompile(`^/data/local-files/\?d=`)

type exportedTask struct {
	Data        map[string]interface{} `json:"data"`
	Annotations []taskAnnotation       `json:"annotations"`
	Completions []taskAnnotation       `json:"completions"`
}

type taskAnnotation struct {
	Result []annotationResult `json:"result"`
}

type annotationResult struct {
	FromName string                 `json:"from_name"`
	Type     string                 `json:"type"`
	Value    map[string]interface{} `json:"value"`
}

// results returns the first annotation's result list, falling back to the
// older completions key.
func (t exportedTask) results() []annotationResult {
	if len(t.Annotations) > 0 {
		return t.Annotations[0].Result
	}
	if len(t.Completions) > 0 {
		return t.Completions[0].Result
	}
	return nil
}

// Convert parses an annotation-tool JSON export into metadata rows in the
// canonical column order. Image references are resolved to paths under
// imagesRoot; IDs are assigned 1..N in task order.
func Convert(exportPath, imagesRoot string) ([]string, []caption.Row, error) {
	data, err := os.ReadFile(exportPath)
	if err != nil {
		return nil, nil, err
	}
	var tasks []exportedTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, nil, fmt.Errorf("parse %s: expected a task list: %w", filepath.Base(exportPath), err)
	}

	rows := make([]caption.Row, 0, len(tasks))
	for i, task := range tasks {
		row := make(caption.Row, len(metadata.Columns))
		for _, col := range metadata.Columns {
			row[col] = ""
		}
		row["id"] = strconv.Itoa(i + 1)
		row["file_name"] = recoverFileName(task.Data, imagesRoot)

		results := task.results()
		for col, candidates := range fieldAliases {
			val := pickFromResults(results, candidates)
			if val == "" {
				val = dataFallback(task.Data, candidates)
			}
			row[col] = val
		}
		rows = append(rows, row)
	}

	header := make([]string, len(metadata.Columns))
	copy(header, metadata.Columns)
	return header, rows, nil
}

// recoverFileName rebuilds the relative image path from however the tool
// stored the reference: URL-encoded, behind the local-files prefix, or with
// Windows separators. The basename is located under imagesRoot; when the
// file is not there the basename alone is used.
func recoverFileName(data map[string]interface{}, imagesRoot string) string {
	raw := stringify(data["image"])
	if raw == "" {
		raw = stringify(data["img"])
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	raw = localFilesPrefix.ReplaceAllString(raw, "")
	raw = strings.ReplaceAll(raw, `\`, "/")

	name := path.Base(raw)
	if name == "." || name == "/" {
		name = ""
	}

	rel := findUnder(imagesRoot, name)
	if rel == "" {
		rel = name
	}
	return "images/" + rel
}

// findUnder walks imagesRoot for the first file with the given basename and
// returns its slash-separated relative path, or "".
func findUnder(imagesRoot, name string) string {
	if name == "" {
		return ""
	}
	var rel string
	filepath.WalkDir(imagesRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Name() != name {
			return nil
		}
		if r, rerr := filepath.Rel(imagesRoot, p); rerr == nil {
			rel = filepath.ToSlash(r)
		}
		return filepath.SkipAll
	})
	return rel
}

// pickFromResults extracts the value of the first result whose from_name is
// one of the candidates. The first match decides, even when its value is
// empty; callers fall back to task data in that case.
func pickFromResults(results []annotationResult, candidates []string) string {
	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[strings.ToLower(c)] = true
	}
	for _, r := range results {
		if !want[strings.ToLower(r.FromName)] {
			continue
		}
		switch strings.ToLower(r.Type) {
		case "textarea":
			val := firstString(r.Value["text"])
			if strings.Contains(val, "<") {
				val = stripMarkup(val)
			}
			return val
		case "choices":
			return strings.Join(stringList(r.Value["choices"]), "; ")
		case "number", "rating":
			v, ok := r.Value["number"]
			if !ok {
				v = r.Value["rating"]
			}
			return stringify(v)
		case "text":
			if s, ok := r.Value["text"].(string); ok {
				return s
			}
			return firstString(r.Value["text"])
		}
		raw, err := json.Marshal(r.Value)
		if err != nil {
			return ""
		}
		return string(raw)
	}
	return ""
}

// dataFallback pulls the first non-empty candidate straight from task data.
func dataFallback(data map[string]interface{}, candidates []string) string {
	for _, c := range candidates {
		v, ok := data[c]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func firstString(v interface{}) string {
	list, ok := v.([]interface{})
	if !ok || len(list) == 0 {
		return ""
	}
	return stringify(list[0])
}

func stringList(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, stringify(item))
	}
	return out
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stripMarkup reduces an HTML fragment to its text content.
func stripMarkup(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
