// internal/normalize/instructions.go

package normalize

import (
	"strings"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

type entryKind int

const (
	entryUnknown entryKind = iota
	entryText              // plain string
	entrySection           // HowToSection with itemListElement
	entryStep              // object with text
	entryNamed             // object with name only
)

// classifyEntry resolves an instruction entry to its kind. Discriminating
// fields are checked in a fixed order: section, text, name.
func classifyEntry(item interface{}) (entryKind, string, []interface{}) {
	switch v := item.(type) {
	case string:
		if text := strings.TrimSpace(v); text != "" {
			return entryText, text, nil
		}
	case map[string]interface{}:
		if v["@type"] == "HowToSection" {
			if nested, ok := v["itemListElement"].([]interface{}); ok {
				return entrySection, "", nested
			}
		}
		if text, ok := v["text"].(string); ok && strings.TrimSpace(text) != "" {
			return entryStep, strings.TrimSpace(text), nil
		}
		if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
			return entryNamed, strings.TrimSpace(name), nil
		}
	}
	return entryUnknown, "", nil
}

// ParseInstructions flattens recipeInstructions into ordered steps. Sections
// are expanded in place at any depth; unrecognized entries are skipped.
// The result is never nil.
func ParseInstructions(v interface{}) []types.Instruction {
	out := []types.Instruction{}
	switch list := v.(type) {
	case []interface{}:
		out = appendInstructions(out, list)
	case []string:
		for _, s := range list {
			if text := strings.TrimSpace(s); text != "" {
				out = append(out, types.Instruction{Text: text})
			}
		}
	}
	return out
}

func appendInstructions(out []types.Instruction, list []interface{}) []types.Instruction {
	for _, item := range list {
		kind, text, nested := classifyEntry(item)
		switch kind {
		case entrySection:
			out = appendInstructions(out, nested)
		case entryText, entryStep, entryNamed:
			out = append(out, types.Instruction{Text: text})
		}
	}
	return out
}
