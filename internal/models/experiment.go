// Package models defines the domain types for the lab journal.
package models

// Experiment types accepted by the scaffolder. Parsed documents may carry
// any free-text type.
const (
	TypeHypothesis   = "hypothesis"
	TypeOptimization = "optimization"
	TypeExploration  = "exploration"
)

// Experiment is one indexed experiment document.
//
// LeadsTo is derived during an index rebuild and is never read from a
// document.
type Experiment struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	ConclusionType string   `json:"conclusion_type"`
	Conclusion     string   `json:"conclusion"`
	DependsOn      []string `json:"depends_on"`
	Tags           []string `json:"tags"`
	Created        string   `json:"created"`
	LeadsTo        []string `json:"leads_to"`

	// Source is the document path relative to the journal root.
	Source string `json:"-"`
}

// JournalIndex is the consolidated summary written to the index file.
type JournalIndex struct {
	Project     string       `json:"project"`
	Experiments []Experiment `json:"experiments"`
}

// Find returns the first experiment with the given id.
func (j *JournalIndex) Find(id string) (Experiment, bool) {
	for _, e := range j.Experiments {
		if e.ID == id {
			return e, true
		}
	}
	return Experiment{}, false
}

// DocumentMetadata is a lightweight representation of an experiment file
// returned by list operations.
type DocumentMetadata struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
