package pipeline

import "strings"

// Pipeline runs the caption stages in their fixed order:
// sanitize → extract → weight → quality scrub → junk strip → inject → finalize.
// Every stage is pure; the pipeline holds only immutable configuration and
// is safe for concurrent use across rows.
type Pipeline struct {
	extractor *TermExtractor
	weighter  *Weighter
	scrubber  *QualityScrubber
	junk      *JunkStripper
	injector  *Injector
}

// NewPipeline assembles a pipeline from its stages.
func NewPipeline(extractor *TermExtractor, weighter *Weighter, scrubber *QualityScrubber, junk *JunkStripper, injector *Injector) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		weighter:  weighter,
		scrubber:  scrubber,
		junk:      junk,
		injector:  injector,
	}
}

// Output is the result of one row's caption computation.
type Output struct {
	Text            string
	QualityScrubbed bool
	Empty           bool
}

// Run computes one caption. The first description value that sanitizes
// non-empty becomes the base text; harvested terms are appended to it before
// weighting. Empty reports that every stage input emptied out, so the caller
// can count the row instead of writing a blank caption.
func (p *Pipeline) Run(descriptions, termValues []string) Output {
	var desc string
	for _, v := range descriptions {
		if s := Sanitize(v); s != "" {
			desc = s
			break
		}
	}

	extra := p.extractor.Extract(termValues)
	combined := desc
	if extra != "" {
		combined = strings.TrimSpace(desc + " " + extra)
	}

	text := p.weighter.Apply(combined)
	text, scrubbed := p.scrubber.Scrub(text)
	text = p.junk.Strip(text)
	if text == "" {
		return Output{QualityScrubbed: scrubbed, Empty: true}
	}
	text = p.injector.Inject(text)

	return Output{Text: Finalize(text), QualityScrubbed: scrubbed}
}
