package key

import (
	"fmt"
	"strings"
)

// NameMapper resolves a canonical key name to the platform codes that
// produce it. A platform backend implements this; tests use a fake.
type NameMapper interface {
	// MapName returns every code that produces the named key.
	// Returns an error wrapping ErrInvalidName for unknown names.
	MapName(name string) ([]Code, error)
}

// Choice is one key within a step: a canonical name plus every code
// that satisfies it.
type Choice struct {
	// Name is the canonical key name.
	Name string

	// Codes are the platform codes resolved for Name. May be empty when
	// the backend cannot map the name; matching then falls back to
	// alias comparison.
	Codes []Code
}

// Matches reports whether the event satisfies this choice, either by
// code or by alias name.
func (c Choice) Matches(e *Event) bool {
	for _, code := range c.Codes {
		if e.Code == code {
			return true
		}
	}
	return e.HasName(c.Name)
}

// Step is one chord within a hotkey: the set of keys that must be
// down simultaneously. Every step is non-empty after parsing.
type Step []Choice

// Contains reports whether the event matches any key of the step.
func (s Step) Contains(e *Event) bool {
	for _, c := range s {
		if c.Matches(e) {
			return true
		}
	}
	return false
}

// String returns the canonical "a+b" form of the step.
func (s Step) String() string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return strings.Join(names, "+")
}

// ParseHotkey parses a hotkey specification into its steps. Steps are
// separated by ",", keys within a step by "+"; whitespace is ignored
// and names are canonicalized. Every malformed or unknown name fails
// parsing with a descriptive error.
func ParseHotkey(spec string, mapper NameMapper) ([]Step, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, ErrEmptySpec
	}

	var steps []Step
	for _, stepSpec := range splitSpec(spec, ',') {
		if strings.TrimSpace(stepSpec) == "" {
			return nil, fmt.Errorf("%w: empty step in %q", ErrInvalidName, spec)
		}

		var step Step
		for _, name := range splitSpec(stepSpec, '+') {
			choice, err := resolveChoice(name, mapper)
			if err != nil {
				return nil, err
			}
			step = append(step, choice)
		}
		if len(step) == 0 {
			return nil, fmt.Errorf("%w: empty step in %q", ErrInvalidName, spec)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// ParseStep parses a single-chord specification such as "ctrl+a".
// Multi-step specifications are rejected with ErrMultiStep.
func ParseStep(spec string, mapper NameMapper) (Step, error) {
	steps, err := ParseHotkey(spec, mapper)
	if err != nil {
		return nil, err
	}
	if len(steps) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrMultiStep, spec)
	}
	return steps[0], nil
}

// resolveChoice canonicalizes one name and resolves its codes.
func resolveChoice(name string, mapper NameMapper) (Choice, error) {
	canonical := Normalize(name)
	if canonical == "" {
		return Choice{}, fmt.Errorf("%w: empty key name", ErrInvalidName)
	}

	choice := Choice{Name: canonical}
	if mapper != nil {
		codes, err := mapper.MapName(canonical)
		if err != nil {
			return Choice{}, fmt.Errorf("resolving %q: %w", canonical, err)
		}
		choice.Codes = codes
	}
	return choice, nil
}

// splitSpec splits on sep while preserving a sep character that is
// itself a key name: "ctrl+," is a chord of ctrl and the comma key,
// "a, ,, b" contains a bare comma step.
func splitSpec(spec string, sep rune) []string {
	var parts []string
	var cur strings.Builder

	runes := []rune(strings.TrimSpace(spec))
	for i, r := range runes {
		if r != sep {
			cur.WriteRune(r)
			continue
		}

		trimmed := strings.TrimSpace(cur.String())
		switch {
		case sep == ',' && strings.HasSuffix(trimmed, "+"):
			// Comma key inside a chord ("ctrl+,"); keep for the
			// later "+" split.
			cur.WriteRune(r)
		case trimmed == "" && nextIsBoundary(runes, i, sep):
			// Separator standing alone between separators or at the
			// spec edge is the literal key.
			cur.WriteRune(r)
		default:
			parts = append(parts, trimmed)
			cur.Reset()
		}
	}
	parts = append(parts, strings.TrimSpace(cur.String()))
	return parts
}

// nextIsBoundary reports whether position i is followed (ignoring
// spaces) by sep or the end of the spec, meaning runes[i] is a literal
// key character rather than a separator.
func nextIsBoundary(runes []rune, i int, sep rune) bool {
	for j := i + 1; j < len(runes); j++ {
		if runes[j] == ' ' {
			continue
		}
		return runes[j] == sep
	}
	return true
}
