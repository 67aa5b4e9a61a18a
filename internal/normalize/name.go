// Package normalize turns free-text invitee input into CRM-ready values.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameParser splits a full name into first and last name.
type NameParser struct {
	honorifics map[string]bool
}

// NewNameParser creates a parser that drops the given title tokens
// (matched case-insensitively, trailing dot ignored).
func NewNameParser(honorifics []string) *NameParser {
	p := &NameParser{honorifics: make(map[string]bool, len(honorifics))}
	for _, h := range honorifics {
		if k := titleKey(h); k != "" {
			p.honorifics[k] = true
		}
	}
	return p
}

// Parse returns the first and last name of full. Middle names stay with the
// first name; the final token is the last name. A single token is a first
// name with an empty last name.
func (p *NameParser) Parse(full string) (first, last string) {
	var tokens []string
	for _, tok := range strings.Fields(full) {
		if p.honorifics[titleKey(tok)] {
			continue
		}
		tokens = append(tokens, tok)
	}

	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	}
	return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
}

func titleKey(s string) string {
	return cases.Fold().String(strings.TrimSuffix(strings.TrimSpace(s), "."))
}
