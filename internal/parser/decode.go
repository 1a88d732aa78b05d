package parser

import (
	"errors"

	"github.com/starford/labjournal/internal/models"
)

// ErrMissingID is returned by DecodeExperiment when the frontmatter does not
// declare an id.
var ErrMissingID = errors.New("frontmatter has no id")

// DecodeExperiment maps frontmatter onto an Experiment. Keys other than the
// experiment fields are ignored. LeadsTo is left empty for the index
// builder to fill.
func DecodeExperiment(fm Frontmatter) (models.Experiment, error) {
	if !fm.Has("id") {
		return models.Experiment{}, ErrMissingID
	}
	return models.Experiment{
		ID:             fm.String("id"),
		Slug:           fm.String("slug"),
		Type:           fm.String("type"),
		Status:         fm.String("status"),
		ConclusionType: fm.String("conclusion_type"),
		Conclusion:     fm.String("conclusion"),
		DependsOn:      fm.List("depends_on"),
		Tags:           fm.List("tags"),
		Created:        fm.String("created"),
		LeadsTo:        []string{},
	}, nil
}
