package llm

import "strings"

// StripFences removes markdown code fences and a leading language tag
// from a model response. Generated text arrives wrapped in ``` blocks
// often enough that every structured consumer must tolerate it.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, tag := range []string{"```json", "```sql", "```"} {
		s = strings.TrimPrefix(s, tag)
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSON returns the outermost {...} object embedded in a model
// response, tolerating code fences and surrounding prose. Returns ""
// when no braces are found.
func ExtractJSON(s string) string {
	s = StripFences(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
