package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Field labels, in the order the model is asked to emit them.
const (
	labelNarrative  = "NARRATIVE:"
	labelDirections = "DIRECTIONS:"
	labelObjects    = "OBJECTS:"
	labelHint       = "HINT:"
	labelInventory  = "INVENTORY:"
)

var labels = []string{labelNarrative, labelDirections, labelObjects, labelHint, labelInventory}

// ParsedTurn is the model's answer split into fields. An empty Inventory
// means the model reported nothing, not that the bag is empty.
type ParsedTurn struct {
	Narrative  string
	Directions []string
	Objects    []string
	Hint       string
	Inventory  []string
}

// ParseTurn reads labelled lines out of a model response. It never fails:
// unknown lines are skipped and missing fields stay empty.
func ParseTurn(response string) ParsedTurn {
	p := ParsedTurn{
		Directions: []string{},
		Objects:    []string{},
		Inventory:  []string{},
	}
	for _, line := range strings.Split(response, "\n") {
		label, value, ok := matchLabel(line)
		if !ok {
			continue
		}
		switch label {
		case labelNarrative:
			p.Narrative = value
		case labelDirections:
			p.Directions = splitList(value)
		case labelObjects:
			p.Objects = splitList(value)
		case labelHint:
			p.Hint = value
		case labelInventory:
			if isNoItems(value) {
				p.Inventory = []string{}
			} else {
				p.Inventory = dedupe(splitList(value))
			}
		}
	}
	return p
}

func matchLabel(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)
	// Models sometimes bold the label: **NARRATIVE:** text
	if strings.HasPrefix(line, "**") {
		stripped := strings.TrimPrefix(line, "**")
		for _, l := range labels {
			if strings.HasPrefix(stripped, l) {
				rest := strings.TrimPrefix(stripped[len(l):], "**")
				return l, strings.TrimSpace(rest), true
			}
		}
	}
	for _, l := range labels {
		if strings.HasPrefix(line, l) {
			return l, strings.TrimSpace(line[len(l):]), true
		}
	}
	return "", "", false
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// fold normalizes s for case-insensitive comparison. Casers are stateful, so
// each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func isNoItems(s string) bool {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return true
	}
	f := fold(s)
	return f == fold(EmptyInventory) || f == "none"
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
