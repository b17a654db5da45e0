package config

import (
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption"
	"github.com/stevenhalverson/sslq-v1-600-dataset-scripts/pkg/caption/terms"
)

// Build compiles the configuration into a ready Generator. The term index
// is built once here; the returned Generator is immutable and safe to share
// across workers.
func (c Config) Build() (*caption.Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return caption.New(caption.Options{
		DescriptionFields: c.DescriptionFields,
		TermFields:        c.TermFields,
		Index:             terms.NewIndex(c.StrongTerms, c.CollisionPolicy),
		IssueTerms:        c.IssueTerms,
		JunkPhrases:       c.JunkPhrases,
		Trigger:           c.Trigger,
		Concept:           c.Concept,
		WeightPolicy:      c.WeightPolicy,
		WeightTagFormat:   c.WeightTagFormat,
		FilterExtracted:   c.FilterExtracted,
	}), nil
}
