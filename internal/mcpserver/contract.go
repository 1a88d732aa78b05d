package mcpserver

// ExperimentFormat describes the experiment document layout that LLM
// consumers should follow when editing experiments.
const ExperimentFormat = `# Lab Journal Experiment Format

Each experiment is one Markdown file in ` + "`" + `experiments/` + "`" + ` named
` + "`" + `<id>-<slug>.md` + "`" + `, where id is a zero-padded number such as ` + "`" + `007` + "`" + `.
Create new files with the ` + "`" + `new_experiment` + "`" + ` tool so ids stay unique.

## Structure

` + "```" + `markdown
---
id: "007"
slug: tokenizer-ablation
type: hypothesis
status: pending
created: 2025-01-15
concluded:
depends_on: ["003", "005"]
conclusion_type:
conclusion:
tags: [tokenizer, ablation]
commit:
---

# 007: tokenizer-ablation

## Question
## Method
## Evidence
## Interpretation
## Next
` + "```" + `

## Rules

1. The frontmatter opens with ` + "`" + `---` + "`" + ` on the first line and closes with a
   line that is exactly ` + "`" + `---` + "`" + `. Files without it are skipped by the index.
2. Every line is ` + "`" + `key: value` + "`" + `. No nesting, no block lists, no multi-line values.
3. Lists are inline: ` + "`" + `[a, "b", 'c']` + "`" + `. ` + "`" + `[]` + "`" + ` is the empty list.
4. Values may be wrapped in matching single or double quotes; the quotes are removed.
   No escape sequences are processed.
5. ` + "`" + `id` + "`" + ` is required for an experiment to be indexed.
6. ` + "`" + `type` + "`" + ` is one of ` + "`" + `hypothesis` + "`" + `, ` + "`" + `optimization` + "`" + ` or
   ` + "`" + `exploration` + "`" + `.
7. Text after ` + "`" + `#` + "`" + ` on a frontmatter line is part of the value, not a comment.
8. ` + "`" + `leads_to` + "`" + ` is never written by hand. It is derived from the
   ` + "`" + `depends_on` + "`" + ` lists of other experiments when the index is rebuilt.
9. Call ` + "`" + `build_index` + "`" + ` after editing documents to refresh ` + "`" + `index.json` + "`" + `.
`
