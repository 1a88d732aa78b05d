// Package scaffold allocates experiment ids and renders new experiment
// documents.
package scaffold

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/labjournal/internal/models"
)

// DefaultSlug is used when a new experiment is created without a slug.
const DefaultSlug = "untitled"

// Params describes a new experiment document.
type Params struct {
	Slug      string
	Type      string
	DependsOn []string
	Created   time.Time
}

// Validate validates the parameters, filling defaults for empty fields.
func (p *Params) Validate() error {
	if p.Slug == "" {
		p.Slug = DefaultSlug
	}
	if p.Type == "" {
		p.Type = models.TypeExploration
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.Slug, validation.By(noPathSeparator)),
		validation.Field(&p.Type, validation.In(
			models.TypeHypothesis, models.TypeOptimization, models.TypeExploration)),
	)
}

func noPathSeparator(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("must not contain path separators")
	}
	return nil
}

// NextID returns the id following the highest numeric file name prefix in
// names, zero-padded to three digits. Names without a numeric prefix are
// ignored; with none at all the first id is "001".
func NextID(names []string) string {
	highest := 0
	for _, name := range names {
		end := 0
		for end < len(name) && name[end] >= '0' && name[end] <= '9' {
			end++
		}
		if end == 0 {
			continue
		}
		n, err := strconv.Atoi(name[:end])
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%03d", highest+1)
}

// FileName returns the document file name for id and slug.
func FileName(id, slug string) string {
	return id + "-" + slug + ".md"
}

// Render returns the document for a new experiment. p should be validated.
func Render(id string, p Params) []byte {
	quoted := make([]string, len(p.DependsOn))
	for i, d := range p.DependsOn {
		quoted[i] = `"` + d + `"`
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %q\n", id)
	fmt.Fprintf(&b, "slug: %s\n", p.Slug)
	fmt.Fprintf(&b, "type: %s\n", p.Type)
	b.WriteString("status: pending\n")
	fmt.Fprintf(&b, "created: %s\n", p.Created.Format(time.DateOnly))
	b.WriteString("concluded:\n")
	fmt.Fprintf(&b, "depends_on: [%s]\n", strings.Join(quoted, ", "))
	b.WriteString("conclusion_type:\n")
	b.WriteString("conclusion:\n")
	b.WriteString("tags: []\n")
	b.WriteString("commit:\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s: %s\n", id, p.Slug)
	for _, section := range []string{"Question", "Method", "Evidence", "Interpretation", "Next"} {
		fmt.Fprintf(&b, "\n## %s\n\n", section)
	}
	return []byte(b.String())
}
