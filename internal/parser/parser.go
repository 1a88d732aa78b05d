// Package parser extracts the restricted frontmatter block and title from
// experiment documents.
//
// The frontmatter grammar is a small YAML-like subset:
//
//	---
//	id: "001"
//	slug: warmup-schedule
//	depends_on: ["000", '002']
//	tags: []
//	---
//
// Each line is a single key: value pair. Values are flat string lists in
// square brackets, quoted strings, or raw text. Nested structures,
// multi-line values and escape sequences are not supported. Parsing never
// fails: malformed lines are ignored.
package parser

import (
	"strings"
)

const delim = "---"

// Value is a parsed frontmatter value: either a scalar string or a flat
// list of strings.
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// Frontmatter maps keys to parsed values. Duplicate keys keep the last
// occurrence.
type Frontmatter map[string]Value

// Has reports whether key was declared, even with an empty value.
func (fm Frontmatter) Has(key string) bool {
	_, ok := fm[key]
	return ok
}

// String returns the scalar value for key. Lists are joined with ", ".
// Missing keys yield the empty string.
func (fm Frontmatter) String(key string) string {
	v, ok := fm[key]
	if !ok {
		return ""
	}
	if v.IsList {
		return strings.Join(v.List, ", ")
	}
	return v.Text
}

// List returns the list value for key. A non-empty scalar becomes a
// one-element list. The result is never nil.
func (fm Frontmatter) List(key string) []string {
	v, ok := fm[key]
	switch {
	case !ok:
		return []string{}
	case v.IsList:
		out := make([]string, len(v.List))
		copy(out, v.List)
		return out
	case v.Text == "":
		return []string{}
	default:
		return []string{v.Text}
	}
}

// Result holds the output of parsing a document.
type Result struct {
	Frontmatter Frontmatter // nil when the document has no frontmatter block
	Body        string
	Title       string
}

// Parse splits data into frontmatter and body and derives a title from the
// first H1 heading of the body.
func Parse(data []byte) *Result {
	fm, body, _ := Split(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(body),
	}
}

// Extract returns the frontmatter of data. The boolean is false when no
// delimited block opens the document.
func Extract(data []byte) (Frontmatter, bool) {
	fm, _, ok := Split(data)
	return fm, ok
}

// Split separates the frontmatter block from the markdown body. If no
// complete block opens the document, the whole content is returned as body
// and ok is false.
func Split(data []byte) (fm Frontmatter, body string, ok bool) {
	text := strings.TrimLeft(string(data), " \t\r\n")

	first, rest, found := strings.Cut(text, "\n")
	if !found || !isDelim(first) {
		return nil, string(data), false
	}

	var block []string
	for {
		line, next, more := strings.Cut(rest, "\n")
		if isDelim(line) {
			return parseBlock(block), strings.TrimLeft(next, "\r\n"), true
		}
		if !more {
			// No closing delimiter.
			return nil, string(data), false
		}
		block = append(block, line)
		rest = next
	}
}

func isDelim(line string) bool {
	return strings.TrimRight(line, " \t\r") == delim
}

func parseBlock(lines []string) Frontmatter {
	fm := make(Frontmatter, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fm[strings.TrimSpace(key)] = parseValue(raw)
	}
	return fm
}

func parseValue(raw string) Value {
	v := strings.TrimSpace(raw)
	switch {
	case wrapped(v, '[', ']'):
		return Value{IsList: true, List: parseList(v[1 : len(v)-1])}
	case wrapped(v, '"', '"'), wrapped(v, '\'', '\''):
		return Value{Text: v[1 : len(v)-1]}
	default:
		return Value{Text: v}
	}
}

// parseList splits an inline list body on commas. Items lose surrounding
// whitespace and one layer of quotes; empty items are dropped.
func parseList(inner string) []string {
	out := []string{}
	for _, item := range strings.Split(inner, ",") {
		item = strings.TrimSpace(item)
		if wrapped(item, '"', '"') || wrapped(item, '\'', '\'') {
			item = item[1 : len(item)-1]
		}
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func wrapped(s string, open, close byte) bool {
	return len(s) >= 2 && s[0] == open && s[len(s)-1] == close
}

// deriveTitle returns the first H1 heading of body, or empty string.
func deriveTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
