package orchestration

import (
	"regexp"
	"strings"
)

// Reasoning traces arrive inline with response text, wrapped in markup
// delimiters. None of it is user-facing speech, so it is stripped before any
// text reaches the synthesizer. Unterminated segments drop everything from
// the opening delimiter on, since a reply cut mid-reasoning has no speakable
// tail.
var (
	reasoningSegmentPattern   = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)
	unterminatedTracePattern  = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*$`)
	collapseWhitespacePattern = regexp.MustCompile(`[ \t]{2,}`)
)

// sanitizeForSpeech strips reasoning/markup segments from model output so
// only user-facing text is spoken.
func sanitizeForSpeech(text string) string {
	text = reasoningSegmentPattern.ReplaceAllString(text, " ")
	text = unterminatedTracePattern.ReplaceAllString(text, "")
	text = collapseWhitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
