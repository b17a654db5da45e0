// Package config holds the caption-generation configuration surface and
// builds ready Generators from it.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/pipeline"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

// Config is the full caption configuration. Every behavior knob of the
// pipeline is an explicit field here so multiple configurations can coexist
// in one process.
type Config struct {
	// DescriptionFields are tried in order; the first that sanitizes
	// non-empty becomes the caption's base text.
	DescriptionFields []string `yaml:"description_fields"`
	// TermFields are harvested for short descriptive tokens, in order.
	TermFields  []string     `yaml:"term_fields"`
	StrongTerms []terms.Term `yaml:"strong_terms"`
	IssueTerms  []string     `yaml:"issue_terms"`
	JunkPhrases []string     `yaml:"junk_phrases"`
	Trigger     string       `yaml:"trigger"`
	Concept     string       `yaml:"concept"`
	// WeightPolicy is "replace" or "annotate".
	WeightPolicy pipeline.Policy `yaml:"weight_policy"`
	// WeightTagFormat is an fmt string taking the token then the weight,
	// e.g. "(%s:%.1f)".
	WeightTagFormat string `yaml:"weight_tag_format"`
	FilterExtracted bool   `yaml:"filter_extracted"`
	// CollisionPolicy is "first-seen" or "max-weight".
	CollisionPolicy terms.CollisionPolicy `yaml:"collision_policy"`
}

// Default returns the stock configuration: the standard field order and
// cleaning lists, annotate weighting, extraction-time filtering on, and no
// strong terms or injections.
func Default() Config {
	return Config{
		DescriptionFields: []string{"llm_description", "human_description"},
		TermFields: []string{
			"category", "attributes", "tags", "composition", "mood", "palette", "notes",
		},
		IssueTerms: []string{
			"blur", "blurry", "blurred", "blur_noise", "noise", "noisy",
			"artifact", "artifacts", "artifacting", "watermark", "watermarked",
			"watermark_text", "cropped", "crop", "duplicate", "duplicated",
			"jpeg", "compression", "banding", "pixelation", "pixelated",
		},
		JunkPhrases: []string{
			"other category", "other tags", "other attributes",
			"other mood", "other palette", "other composition",
			"misc", "miscellaneous", "bad quality",
		},
		WeightPolicy:    pipeline.PolicyAnnotate,
		WeightTagFormat: pipeline.DefaultTagFormat,
		FilterExtracted: true,
		CollisionPolicy: terms.CollisionMaxWeight,
	}
}

// Load reads a YAML file on top of the defaults, so absent keys keep their
// stock values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse caption config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the policy switches and strong-term weights.
func (c Config) Validate() error {
	switch c.WeightPolicy {
	case pipeline.PolicyReplace, pipeline.PolicyAnnotate:
	default:
		return fmt.Errorf("unknown weight_policy %q", c.WeightPolicy)
	}
	switch c.CollisionPolicy {
	case terms.CollisionFirstSeen, terms.CollisionMaxWeight:
	default:
		return fmt.Errorf("unknown collision_policy %q", c.CollisionPolicy)
	}
	for _, t := range c.StrongTerms {
		if strings.TrimSpace(t.Term) == "" {
			return fmt.Errorf("strong term with empty name")
		}
		if t.Weight <= 0 {
			return fmt.Errorf("strong term %q: weight must be positive, got %v", t.Term, t.Weight)
		}
	}
	return nil
}
