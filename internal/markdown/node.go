// Package markdown converts the assistant's restricted markdown dialect into a
// sequence of structured content nodes. Rendering is a pure function of the
// input text: no state is kept between calls and malformed input degrades to
// plain text instead of failing.
package markdown

// NodeKind identifies the block-level variant of a Node.
type NodeKind string

const (
	NodeHeading        NodeKind = "heading"
	NodeParagraph      NodeKind = "paragraph"
	NodeList           NodeKind = "list"
	NodeBlockQuote     NodeKind = "blockquote"
	NodeCitation       NodeKind = "citation"
	NodeHorizontalRule NodeKind = "rule"
)

// Node is one block of rendered content. Which fields are meaningful depends
// on Kind: Level for headings, Spans for heading/paragraph/blockquote text and
// the quoted part of a citation, Ordered and Items for lists, Reference for
// citations.
type Node struct {
	Kind      NodeKind `json:"kind"`
	Level     int      `json:"level,omitempty"`
	Spans     []Span   `json:"spans,omitempty"`
	Ordered   bool     `json:"ordered,omitempty"`
	Items     [][]Span `json:"items,omitempty"`
	Reference string   `json:"reference,omitempty"`
}

// SpanStyle identifies the inline styling of a Span.
type SpanStyle string

const (
	SpanPlain  SpanStyle = "plain"
	SpanBold   SpanStyle = "bold"
	SpanItalic SpanStyle = "italic"
)

// Span is one inline run of text with a single style.
type Span struct {
	Style SpanStyle `json:"style"`
	Text  string    `json:"text"`
}
