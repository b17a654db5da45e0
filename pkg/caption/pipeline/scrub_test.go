package pipeline

import (
	"strings"
	"testing"
)

func TestScrubDropsIssueSentences(t *testing.T) {
	q := NewQualityScrubber([]string{"blur", "watermark"})
	got, removed := q.Scrub("A clear shot. Slightly blurry image. Nice palette.")
	want := "A clear shot. Nice palette."
	if got != want {
		t.Errorf("Scrub = %q, want %q", got, want)
	}
	if !removed {
		t.Error("removed = false, want true")
	}
}

func TestScrubNoIssues(t *testing.T) {
	q := NewQualityScrubber([]string{"blur"})
	got, removed := q.Scrub("A clean image. Sharp focus.")
	if got != "A clean image. Sharp focus." {
		t.Errorf("Scrub = %q, want unchanged", got)
	}
	if removed {
		t.Error("removed = true, want false")
	}
}

func TestScrubSingleSentence(t *testing.T) {
	q := NewQualityScrubber([]string{"banding"})
	got, removed := q.Scrub("gradient banding everywhere")
	if got != "" || !removed {
		t.Errorf("Scrub = (%q, %v), want (\"\", true)", got, removed)
	}
}

func TestScrubCaseInsensitive(t *testing.T) {
	q := NewQualityScrubber([]string{"watermark"})
	got, removed := q.Scrub("Has a WATERMARK stamp. Clean edge.")
	if got != "Clean edge." || !removed {
		t.Errorf("Scrub = (%q, %v), want (%q, true)", got, removed, "Clean edge.")
	}
}

func TestScrubEllipsisStaysTogether(t *testing.T) {
	q := NewQualityScrubber([]string{"noise"})
	got, _ := q.Scrub("Wait... noise everywhere. Fine.")
	if got != "Wait... Fine." {
		t.Errorf("Scrub = %q, want %q", got, "Wait... Fine.")
	}
}

func TestScrubSurvivorsNeverContainIssues(t *testing.T) {
	issue := []string{"blur", "noise", "watermark"}
	q := NewQualityScrubber(issue)
	inputs := []string{
		"",
		"blur",
		"No problems here.",
		"blurry start. clean middle. watermark end.",
		"One noise sentence only",
		"Mixed! blurry bit? all good.",
	}
	for _, in := range inputs {
		got, _ := q.Scrub(in)
		lower := strings.ToLower(got)
		for _, term := range issue {
			if strings.Contains(lower, term) {
				t.Errorf("Scrub(%q) = %q still contains %q", in, got, term)
			}
		}
	}
}

func TestScrubEmptyText(t *testing.T) {
	got, removed := NewQualityScrubber([]string{"x"}).Scrub("")
	if got != "" || removed {
		t.Errorf("Scrub = (%q, %v), want (\"\", false)", got, removed)
	}
}

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a. b! c? d", []string{"a.", "b!", "c?", "d"}},
		{"no terminator", []string{"no terminator"}},
		{"trailing dot.", []string{"trailing dot."}},
		{"Hi... there. Bye.", []string{"Hi...", "there.", "Bye."}},
		{"a.b stays whole.", []string{"a.b stays whole."}},
	}
	for _, c := range cases {
		got := splitSentences(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitSentences(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitSentences(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}
