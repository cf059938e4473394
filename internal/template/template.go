// Package template implements the small {name}-placeholder interpolator
// spec §9 calls for. This is intentionally standard-library only: the
// spec explicitly says not to pull in a general templating engine, so
// there is no third-party dependency to ground this on — see DESIGN.md.
package template

import "strings"

// Render replaces every {key} placeholder in s with its string value
// from data. A placeholder whose key is not present in data is left
// verbatim, per spec §3.5 ("unresolved placeholders are left verbatim").
func Render(s string, data map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		open := strings.IndexByte(s[i:], '{')
		if open == -1 {
			b.WriteString(s[i:])
			break
		}
		open += i
		b.WriteString(s[i:open])

		close := strings.IndexByte(s[open:], '}')
		if close == -1 {
			// No matching close brace; emit the rest verbatim.
			b.WriteString(s[open:])
			break
		}
		close += open

		key := s[open+1 : close]
		if val, ok := data[key]; ok {
			b.WriteString(val)
		} else {
			b.WriteString(s[open : close+1])
		}
		i = close + 1
	}
	return b.String()
}
