package appgen

import "strings"

// ExtractCodeBlock pulls the code out of a markdown response. A
// ```python fence wins over a generic fence; text without fences is
// returned as-is.
func ExtractCodeBlock(text string) string {
	return extractFenced(text, "```python")
}

// ExtractYAMLBlock pulls the YAML out of a markdown response.
func ExtractYAMLBlock(text string) string {
	return extractFenced(text, "```yaml")
}

func extractFenced(text, fence string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, fence); idx != -1 {
		start := idx + len(fence)
		if end := strings.Index(text[start:], "```"); end != -1 {
			return strings.TrimSpace(text[start : start+end])
		}
	} else if idx := strings.Index(text, "```"); idx != -1 {
		start := idx + 3
		// Skip the language identifier on the fence line, if any.
		if nl := strings.Index(text[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(text[start:], "```"); end != -1 {
			return strings.TrimSpace(text[start : start+end])
		}
	}

	return text
}
