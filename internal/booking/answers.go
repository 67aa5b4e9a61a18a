package booking

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Answer is one custom question answered by the invitee.
type Answer struct {
	Label string `json:"question_label"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts non-string values (numbers, lists of choices) and
// renders them as text.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label string          `json:"question_label"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Label = raw.Label
	a.Value = answerText(raw.Value)
	return nil
}

func answerText(v json.RawMessage) string {
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var list []any
	if err := json.Unmarshal(v, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	}
	return string(v)
}

// Answers is the ordered list of answers from the booking form.
type Answers []Answer

// Keywords matches answer labels that contain any of its entries,
// ignoring case.
type Keywords []string

// Match reports whether label contains one of the keywords.
func (k Keywords) Match(label string) bool {
	folded := cases.Fold().String(label)
	for _, kw := range k {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(folded, cases.Fold().String(kw)) {
			return true
		}
	}
	return false
}

// Lookup returns the trimmed value of the first answer whose label matches.
// found is false when no label matches; a matching answer may still have an
// empty value.
func (a Answers) Lookup(k Keywords) (value string, found bool) {
	for _, ans := range a {
		if k.Match(ans.Label) {
			return strings.TrimSpace(ans.Value), true
		}
	}
	return "", false
}
