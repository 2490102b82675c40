// Package retriever finds reference passages for a story theme by nearest
// neighbour search over a small, fixed corpus of seed narratives.
package retriever

import (
	_ "embed"
	"fmt"

	"github.com/tatianab/story-adventure/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// Corpus is the fixed set of themes and seed narratives.
type Corpus struct {
	Themes []models.Theme `yaml:"themes"`
	Seeds  []models.Seed  `yaml:"seeds"`
}

// DefaultCorpus returns the built-in Thai corpus.
func DefaultCorpus() (*Corpus, error) {
	return ParseCorpus(defaultCorpus)
}

// ParseCorpus reads a corpus from YAML.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse corpus YAML: %w", err)
	}
	if len(c.Seeds) == 0 {
		return nil, fmt.Errorf("corpus has no seed narratives")
	}
	return &c, nil
}

// Theme looks up a theme by id.
func (c *Corpus) Theme(id string) (models.Theme, bool) {
	for _, t := range c.Themes {
		if t.ID == id {
			return t, true
		}
	}
	return models.Theme{}, false
}
