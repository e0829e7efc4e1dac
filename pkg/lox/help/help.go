// Package help serves the embedded Lox language reference. Topics are
// the sections of reference.md, looked up by slug; keywords and
// operators resolve to the section that documents them. Used by
// `golox docs` and the REPL's :docs command.
package help

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	lerrors "github.com/sambeau/golox/pkg/lox/errors"
)

//go:embed reference.md
var referenceSource []byte

// topicAliases routes keywords and operators to the section that
// documents them, so `golox docs while` works as well as
// `golox docs control-flow`.
var topicAliases = map[string]string{
	// Keywords
	"var":    "variables",
	"nil":    "types",
	"true":   "types",
	"false":  "types",
	"and":    "operators",
	"or":     "operators",
	"if":     "control-flow",
	"else":   "control-flow",
	"while":  "control-flow",
	"for":    "control-flow",
	"fun":    "functions",
	"return": "functions",
	"print":  "printing",
	"class":  "reserved-words",
	"super":  "reserved-words",
	"this":   "reserved-words",

	// Operators
	"=":  "operators",
	"==": "operators",
	"!=": "operators",
	"<":  "operators",
	"<=": "operators",
	">":  "operators",
	">=": "operators",
	"+":  "operators",
	"-":  "operators",
	"*":  "operators",
	"/":  "operators",
	"!":  "operators",

	// Common alternate names
	"number":   "numbers",
	"string":   "strings",
	"boolean":  "types",
	"bool":     "types",
	"scope":    "variables",
	"closure":  "functions",
	"closures": "functions",
	"keywords": "reserved-words",
	"clock":    "builtins",
	"natives":  "builtins",
}

var (
	loadOnce sync.Once
	sections map[string]string // slug -> rendered text
	order    []string          // slugs in document order
)

// Topics returns the slugs of every reference section, in document order.
func Topics() []string {
	loadOnce.Do(load)
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Describe returns the rendered reference section for a topic.
func Describe(topic string) (string, error) {
	loadOnce.Do(load)

	key := strings.ToLower(strings.TrimSpace(topic))
	if key == "" {
		return "", fmt.Errorf("no topic specified (try: %s)", strings.Join(order, ", "))
	}

	if alias, ok := topicAliases[key]; ok {
		key = alias
	}
	if body, ok := sections[key]; ok {
		return body, nil
	}

	return "", unknownTopicError(key)
}

// unknownTopicError generates a helpful error for unknown topics
func unknownTopicError(topic string) error {
	candidates := make([]string, 0, len(order)+len(topicAliases))
	candidates = append(candidates, order...)
	for alias := range topicAliases {
		candidates = append(candidates, alias)
	}

	if suggestion := lerrors.FindClosestMatch(topic, candidates); suggestion != "" {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, suggestion)
	}
	return fmt.Errorf("unknown topic: %s\nTry: %s", topic, strings.Join(order, ", "))
}

// load parses the embedded reference once and renders each level-2
// section to terminal text.
func load() {
	sections = make(map[string]string)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(referenceSource))

	var title string
	var body []gmast.Node

	flush := func() {
		if title == "" {
			return
		}
		slug := slugify(title)
		sections[slug] = renderSection(title, body, referenceSource)
		order = append(order, slug)
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*gmast.Heading); ok && h.Level == 2 {
			flush()
			title = extractText(h, referenceSource)
			body = nil
			continue
		}
		// Content before the first section heading is the document
		// intro, not a topic.
		if title != "" {
			body = append(body, node)
		}
	}
	flush()
}

// slugify turns a section title into its lookup key.
func slugify(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}
