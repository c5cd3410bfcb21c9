package markdown

import "regexp"

// maxInlineLen bounds the amount of assistant-generated text the inline parser
// will scan for styling. Longer runs are emitted as a single plain span.
const maxInlineLen = 1 << 16

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
)

// parseInline splits text into styled spans. Bold spans (**...**) are
// extracted first; the text around them is scanned for italic spans (*...*).
// Unterminated or malformed markers fall through as literal text.
func parseInline(text string) []Span {
	if text == "" {
		return nil
	}
	if len(text) > maxInlineLen {
		return []Span{{Style: SpanPlain, Text: text}}
	}

	var spans []Span
	rest := text
	for rest != "" {
		loc := boldRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			spans = append(spans, parseItalic(rest)...)
			break
		}
		spans = append(spans, parseItalic(rest[:loc[0]])...)
		spans = append(spans, Span{Style: SpanBold, Text: rest[loc[2]:loc[3]]})
		rest = rest[loc[1]:]
	}
	return spans
}

// parseItalic scans text that no longer contains bold spans for *...* runs.
func parseItalic(text string) []Span {
	var spans []Span
	rest := text
	for rest != "" {
		loc := italicRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			spans = append(spans, Span{Style: SpanPlain, Text: rest})
			break
		}
		if loc[0] > 0 {
			spans = append(spans, Span{Style: SpanPlain, Text: rest[:loc[0]]})
		}
		spans = append(spans, Span{Style: SpanItalic, Text: rest[loc[2]:loc[3]]})
		rest = rest[loc[1]:]
	}
	return spans
}
