package ai

import (
	"fmt"
	"regexp"
	"strings"
)

var boldMarkdown = regexp.MustCompile(`\*\*(.*?)\*\*`)

// TruncationNotice is appended when speech text exceeds the synthesis limit.
const TruncationNotice = "... The rest of the content has been truncated for processing."

// PrepareSpeech turns a markdown explanation into text safe for synthesis.
// Bold markers are unwrapped, stray asterisks removed, blank text replaced
// by a per-page placeholder, and overlong text truncated to maxLen runes
// with a spoken notice.
func PrepareSpeech(explanation string, page, maxLen int) string {
	text := boldMarkdown.ReplaceAllString(explanation, "$1")
	text = strings.ReplaceAll(text, "*", "")
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("Page %d content could not be processed properly.", page)
	}
	if maxLen > 0 {
		if runes := []rune(text); len(runes) > maxLen {
			text = string(runes[:maxLen]) + TruncationNotice
		}
	}
	return text
}
