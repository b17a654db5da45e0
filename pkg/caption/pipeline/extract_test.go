package pipeline

import "testing"

func TestExtractDedupAcrossFields(t *testing.T) {
	e := NewTermExtractor(nil, false)
	got := e.Extract([]string{"Stone_ocean, blue", "stone ocean; BLUE, gold"})
	want := "Stone ocean blue gold"
	if got != want {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtractPreservesOrder(t *testing.T) {
	e := NewTermExtractor(nil, false)
	if got := e.Extract([]string{"c, b", "a"}); got != "c b a" {
		t.Errorf("Extract = %q, want %q", got, "c b a")
	}
}

func TestExtractReadableForm(t *testing.T) {
	e := NewTermExtractor(nil, false)
	got := e.Extract([]string{"golden_hour, Wide_Angle"})
	want := "golden hour Wide Angle"
	if got != want {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtractFilterIssueTokens(t *testing.T) {
	e := NewTermExtractor([]string{"blur", "watermark"}, true)
	got := e.Extract([]string{"blurry, sharp focus, watermarked"})
	if got != "sharp focus" {
		t.Errorf("Extract = %q, want %q", got, "sharp focus")
	}
}

func TestExtractFilterOff(t *testing.T) {
	e := NewTermExtractor([]string{"blur"}, false)
	if got := e.Extract([]string{"blurry, sharp"}); got != "blurry sharp" {
		t.Errorf("Extract = %q, want %q", got, "blurry sharp")
	}
}

func TestExtractSemicolonSplit(t *testing.T) {
	e := NewTermExtractor(nil, false)
	if got := e.Extract([]string{"dune; ridge;crest"}); got != "dune ridge crest" {
		t.Errorf("Extract = %q, want %q", got, "dune ridge crest")
	}
}

func TestExtractEmptyValues(t *testing.T) {
	e := NewTermExtractor(nil, true)
	if got := e.Extract([]string{"", " , ; ", ""}); got != "" {
		t.Errorf("Extract = %q, want empty", got)
	}
	if got := e.Extract(nil); got != "" {
		t.Errorf("Extract(nil) = %q, want empty", got)
	}
}
