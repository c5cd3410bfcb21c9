package markdown

import (
	"regexp"
	"strings"
)

var orderedItemRe = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)

// unorderedMarkers are the accepted list bullets, each followed by a space.
var unorderedMarkers = []string{"- ", "* ", "• "}

// Render converts text in the restricted markdown dialect into a sequence of
// content nodes. It never fails: unrecognized or malformed lines become plain
// paragraphs. Empty input yields an empty sequence.
func Render(text string) []Node {
	var nodes []Node

	// Items collected for an in-progress list, flushed when a non-item line
	// or a list of the other type is encountered.
	var pending [][]Span
	pendingOrdered := false

	flush := func() {
		if len(pending) == 0 {
			return
		}
		nodes = append(nodes, Node{Kind: NodeList, Ordered: pendingOrdered, Items: pending})
		pending = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			flush()

		case line == "---" || line == "***":
			flush()
			nodes = append(nodes, Node{Kind: NodeHorizontalRule})

		case strings.HasPrefix(line, "### "):
			flush()
			nodes = append(nodes, Node{Kind: NodeHeading, Level: 3, Spans: parseInline(line[4:])})

		case strings.HasPrefix(line, "## "):
			flush()
			nodes = append(nodes, Node{Kind: NodeHeading, Level: 2, Spans: parseInline(line[3:])})

		case strings.HasPrefix(line, "# "):
			flush()
			nodes = append(nodes, Node{Kind: NodeHeading, Level: 1, Spans: parseInline(line[2:])})

		case unorderedItem(line) != "":
			if len(pending) > 0 && pendingOrdered {
				flush()
			}
			pendingOrdered = false
			pending = append(pending, parseInline(unorderedItem(line)))

		case orderedItemRe.MatchString(line):
			if len(pending) > 0 && !pendingOrdered {
				flush()
			}
			pendingOrdered = true
			item := orderedItemRe.FindStringSubmatch(line)[2]
			pending = append(pending, parseInline(item))

		case isCitationLine(line):
			flush()
			nodes = append(nodes, citationNode(line))

		case strings.HasPrefix(line, ">"):
			flush()
			quoted := strings.TrimSpace(strings.TrimPrefix(line, ">"))
			nodes = append(nodes, Node{Kind: NodeBlockQuote, Spans: parseInline(quoted)})

		default:
			flush()
			nodes = append(nodes, Node{Kind: NodeParagraph, Spans: parseInline(line)})
		}
	}
	flush()

	return nodes
}

// unorderedItem returns the item text when line is an unordered list item,
// or "" when it is not.
func unorderedItem(line string) string {
	for _, marker := range unorderedMarkers {
		if strings.HasPrefix(line, marker) {
			return strings.TrimPrefix(line, marker)
		}
	}
	return ""
}

// citationNode builds a ScriptureCitation from a line opening with a book
// reference. A ">" separates the reference from quoted verse text; without
// one, the whole line is the reference.
func citationNode(line string) Node {
	if idx := strings.Index(line, ">"); idx >= 0 {
		return Node{
			Kind:      NodeCitation,
			Reference: strings.TrimSpace(line[:idx]),
			Spans:     parseInline(strings.TrimSpace(line[idx+1:])),
		}
	}
	return Node{Kind: NodeCitation, Reference: line}
}
