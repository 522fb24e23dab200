package ai

import (
	"regexp"
	"strings"
)

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// CleanModelJSON recovers a JSON payload from a model response. Fenced code
// blocks are unwrapped and trailing commas, the most common model
// formatting slip, are repaired. The result still needs unmarshalling and
// validation by the caller.
func CleanModelJSON(raw string) string {
	text := raw
	if strings.Contains(text, "```json") {
		if _, after, ok := strings.Cut(text, "```json"); ok {
			if inner, _, ok := strings.Cut(after, "```"); ok {
				text = strings.TrimSpace(inner)
			}
		}
	} else if strings.Contains(text, "```") {
		if _, after, ok := strings.Cut(text, "```"); ok {
			if inner, _, ok := strings.Cut(after, "```"); ok {
				text = strings.TrimSpace(inner)
			}
		}
	}
	text = trailingCommaObject.ReplaceAllString(text, "}")
	text = trailingCommaArray.ReplaceAllString(text, "]")
	return strings.TrimSpace(text)
}
