package pipeline

import (
	"testing"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

func TestPipelineRunAnnotate(t *testing.T) {
	idx := terms.NewIndex([]terms.Term{{Term: "blue", Weight: 1.4}}, terms.CollisionMaxWeight)
	p := NewPipeline(
		NewTermExtractor([]string{"blur"}, true),
		NewWeighter(idx, PolicyAnnotate, ""),
		NewQualityScrubber([]string{"blur"}),
		NewJunkStripper([]string{"other category"}),
		NewInjector("trig", "stone ocean"),
	)

	out := p.Run(
		[]string{"", "a wide shot of blue pyramids"},
		[]string{"Stone_ocean, blurry", "other category"},
	)

	want := "trig A wide shot of blue (blue:1.4) pyramids. Stone ocean"
	if out.Text != want {
		t.Errorf("Run = %q, want %q", out.Text, want)
	}
	if out.Empty {
		t.Error("Empty = true, want false")
	}
	if out.QualityScrubbed {
		t.Error("QualityScrubbed = true, want false")
	}
}

func TestPipelineRunEmpty(t *testing.T) {
	idx := terms.NewIndex(nil, terms.CollisionMaxWeight)
	p := NewPipeline(
		NewTermExtractor([]string{"blur"}, true),
		NewWeighter(idx, PolicyAnnotate, ""),
		NewQualityScrubber([]string{"blur"}),
		NewJunkStripper(nil),
		NewInjector("trig", "concept"),
	)

	out := p.Run([]string{"nan", ""}, []string{"blurry"})
	if !out.Empty {
		t.Fatal("Empty = false, want true")
	}
	if out.Text != "" {
		t.Errorf("Text = %q, want empty (no trigger injection on empty captions)", out.Text)
	}
}

func TestPipelineScrubFlag(t *testing.T) {
	idx := terms.NewIndex(nil, terms.CollisionMaxWeight)
	p := NewPipeline(
		NewTermExtractor([]string{"watermark"}, false),
		NewWeighter(idx, PolicyAnnotate, ""),
		NewQualityScrubber([]string{"watermark"}),
		NewJunkStripper(nil),
		NewInjector("", ""),
	)

	out := p.Run([]string{"A nice shot. has a watermark. Great color."}, nil)
	want := "A nice shot. Great color."
	if out.Text != want {
		t.Errorf("Run = %q, want %q", out.Text, want)
	}
	if !out.QualityScrubbed {
		t.Error("QualityScrubbed = false, want true")
	}
}

func TestPipelineTermsOnlyCaption(t *testing.T) {
	idx := terms.NewIndex(nil, terms.CollisionMaxWeight)
	p := NewPipeline(
		NewTermExtractor(nil, false),
		NewWeighter(idx, PolicyAnnotate, ""),
		NewQualityScrubber(nil),
		NewJunkStripper(nil),
		NewInjector("trig", ""),
	)

	out := p.Run(nil, []string{"dune, ridge"})
	if out.Text != "trig dune ridge" {
		t.Errorf("Run = %q, want %q", out.Text, "trig dune ridge")
	}
}

func TestPipelineFirstDescriptionWins(t *testing.T) {
	idx := terms.NewIndex(nil, terms.CollisionMaxWeight)
	p := NewPipeline(
		NewTermExtractor(nil, false),
		NewWeighter(idx, PolicyAnnotate, ""),
		NewQualityScrubber(nil),
		NewJunkStripper(nil),
		NewInjector("", ""),
	)

	out := p.Run([]string{"preferred text", "fallback text"}, nil)
	if out.Text != "Preferred text." {
		t.Errorf("Run = %q, want %q", out.Text, "Preferred text.")
	}

	out = p.Run([]string{"nan", "fallback text"}, nil)
	if out.Text != "Fallback text." {
		t.Errorf("Run = %q, want %q", out.Text, "Fallback text.")
	}
}
