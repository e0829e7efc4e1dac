package help

import (
	"strings"

	gmast "github.com/yuin/goldmark/ast"
)

// renderSection renders one reference section as plain terminal text:
// an underlined title, paragraphs as written, code blocks indented,
// lists bulleted.
func renderSection(title string, nodes []gmast.Node, source []byte) string {
	var sb strings.Builder

	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len(title)))
	sb.WriteString("\n\n")

	for _, node := range nodes {
		renderBlock(&sb, node, source)
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func renderBlock(sb *strings.Builder, node gmast.Node, source []byte) {
	switch n := node.(type) {
	case *gmast.Heading:
		heading := extractText(n, source)
		sb.WriteString(heading)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", len(heading)))
		sb.WriteString("\n\n")

	case *gmast.Paragraph:
		// Keep the source's own line wrapping
		sb.WriteString(inlineText(n, source, "\n"))
		sb.WriteString("\n\n")

	case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		code := strings.TrimRight(extractCodeLines(node, source), "\n")
		for _, line := range strings.Split(code, "\n") {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

	case *gmast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			sb.WriteString("  - ")
			sb.WriteString(inlineText(item, source, " "))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

	case *gmast.ThematicBreak:
		// Nothing to draw

	default:
		if text := inlineText(node, source, " "); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}
}

// inlineText flattens a node's inline content to plain text, dropping
// emphasis and code-span markers. softBreak replaces soft line breaks.
func inlineText(node gmast.Node, source []byte, softBreak string) string {
	var sb strings.Builder
	walkInline(&sb, node, source, softBreak)
	return sb.String()
}

func walkInline(sb *strings.Builder, node gmast.Node, source []byte, softBreak string) {
	switch n := node.(type) {
	case *gmast.Text:
		sb.Write(n.Text(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			sb.WriteString(softBreak)
		}
	case *gmast.String:
		sb.Write(n.Value)
	default:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			walkInline(sb, child, source, softBreak)
		}
	}
}

// extractText extracts all text content from a node and its children.
func extractText(node gmast.Node, source []byte) string {
	return inlineText(node, source, " ")
}

// extractCodeLines extracts the raw content of a code block.
func extractCodeLines(node gmast.Node, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(source))
	}
	return sb.String()
}
