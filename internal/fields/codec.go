// Package fields implements the bidirectional mapping between the internal
// snake_case attribute naming (matching the database columns) and the
// client-facing camelCase convention, plus the projection that filters
// internal-only attributes out of client views.
package fields

import "strings"

// ToInternal converts a client-facing camelCase key to its internal
// snake_case form. The conversion is mechanical: unknown keys convert the
// same way as known ones.
func ToInternal(external string) string {
	var b strings.Builder
	b.Grow(len(external) + 4)
	for i, r := range external {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToExternal converts an internal snake_case key to its client-facing
// camelCase form.
func ToExternal(internal string) string {
	parts := strings.Split(internal, "_")
	var b strings.Builder
	b.Grow(len(internal))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// Project produces a client-facing view of an internal attribute map:
// excluded keys are dropped, the rest are renamed to external form, and nil
// values are replaced with the empty string. Applying Project to its own
// output is a no-op because camelCase keys contain no underscores and the
// exclusion set only names internal keys.
func Project(attributes map[string]any, excluded []string) map[string]any {
	skip := make(map[string]struct{}, len(excluded))
	for _, key := range excluded {
		skip[key] = struct{}{}
	}

	out := make(map[string]any, len(attributes))
	for key, value := range attributes {
		if _, ok := skip[key]; ok {
			continue
		}
		if value == nil {
			value = ""
		}
		out[ToExternal(key)] = value
	}
	return out
}
