package markdown

import (
	"regexp"
	"strings"
)

var (
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	quoteMarkerRe = regexp.MustCompile(`(?m)^>\s*`)
	listMarkerRe  = regexp.MustCompile(`(?m)^(\s*)(?:[-*•]|\d+\.)\s+`)
	multiNewline  = regexp.MustCompile(`\n{2,}`)
)

// StripForSpeech removes the dialect's syntax markers from text and collapses
// paragraph breaks into sentence punctuation, producing clean prose suitable
// for narration by a speech synthesizer.
func StripForSpeech(text string) string {
	s := linkRe.ReplaceAllString(text, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = quoteMarkerRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")
	s = multiNewline.ReplaceAllString(s, ". ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
