// Package cursor classifies an edit position inside possibly-invalid XML.
package cursor

import (
	"strings"

	"github.com/relaxml/relaxml/internal/xmltree"
)

// Kind is the syntactic classification of a caret position.
type Kind int

const (
	Unknown Kind = iota
	// ElementOpen: caret right after '<', no name typed yet.
	ElementOpen
	// ElementHover: caret within an element name in an opening tag.
	ElementHover
	// AttributeName: caret where an attribute name may be typed.
	AttributeName
	// AttributeValue: caret inside an open quoted attribute value.
	AttributeValue
	// AttributeHover: caret on an attribute name followed by '='.
	AttributeHover
	// Content: caret in element content, outside any tag.
	Content
)

// Context describes what the caret position means.
type Context struct {
	Kind Kind
	// Element is the name in focus: the tag's own name for tag contexts,
	// the innermost enclosing element for content contexts.
	Element string
	// Ancestors are the enclosing element names, outermost first. For tag
	// contexts the tag itself is not included.
	Ancestors []string
	// Attribute is the attribute name in focus, for the attribute contexts.
	Attribute string
	// Prefix is a partially typed attribute name (AttributeName only).
	Prefix string
	// Attrs maps the attributes already present on the enclosing tag.
	Attrs map[string]string
}

// Resolve classifies the caret at offset within text.
func Resolve(text string, offset int) Context {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	if insideOpaqueBlock(text, offset) {
		return Context{Kind: Unknown}
	}

	lt := unmatchedOpenAngle(text, offset)
	if lt < 0 {
		stack := ancestorStack(text, offset)
		return Context{Kind: Content, Element: top(stack), Ancestors: stack}
	}

	end := tagEnd(text, lt+1)
	tag := text[lt:end]

	if strings.HasPrefix(tag, "</") || strings.HasPrefix(tag, "<?") || strings.HasPrefix(tag, "<!") {
		return Context{Kind: Unknown}
	}

	stack := ancestorStack(text, lt)
	name := scanName(text, lt+1)
	nameEnd := lt + 1 + len(name)

	if name == "" {
		return Context{Kind: ElementOpen, Element: top(stack), Ancestors: stack}
	}
	if offset <= nameEnd {
		return Context{Kind: ElementHover, Element: name, Ancestors: stack}
	}

	attrs := xmltree.AttrMap(tag)
	base := Context{Element: name, Ancestors: stack, Attrs: attrs}

	// Replay the tag text before the caret to see whether we are inside an
	// unterminated quoted value, and which attribute it belongs to.
	if attr, inValue := valueStateAt(text, nameEnd, offset); inValue {
		base.Kind = AttributeValue
		base.Attribute = attr
		return base
	}

	// Caret on a token that (possibly after more identifier characters) is
	// followed by '=': hovering an existing attribute name.
	wstart := offset
	for wstart > nameEnd && isNameChar(text[wstart-1]) {
		wstart--
	}
	wend := offset
	for wend < end && isNameChar(text[wend]) {
		wend++
	}
	if wstart < wend && nextNonSpace(text, wend) == '=' {
		base.Kind = AttributeHover
		base.Attribute = text[wstart:wend]
		return base
	}

	base.Kind = AttributeName
	base.Prefix = text[wstart:offset]
	return base
}

// insideOpaqueBlock reports whether offset falls inside a comment or CDATA
// section, i.e. a block opened before offset with no close delimiter in
// between.
func insideOpaqueBlock(text string, offset int) bool {
	for pos := 0; pos < offset; {
		ci := strings.Index(text[pos:offset], "<!--")
		di := strings.Index(text[pos:offset], "<![CDATA[")
		var open int
		var close string
		switch {
		case ci < 0 && di < 0:
			return false
		case di < 0 || (ci >= 0 && ci < di):
			open, close = pos+ci+4, "-->"
		default:
			open, close = pos+di+9, "]]>"
		}
		end := strings.Index(text[open:], close)
		if end < 0 || open+end+len(close) > offset {
			return true
		}
		pos = open + end + len(close)
	}
	return false
}

// unmatchedOpenAngle scans backward for the nearest '<' with no intervening
// '>'. Returns -1 when the caret is in element content.
func unmatchedOpenAngle(text string, offset int) int {
	for i := offset - 1; i >= 0; i-- {
		switch text[i] {
		case '>':
			return -1
		case '<':
			return i
		}
	}
	return -1
}

// tagEnd finds the offset just past the tag's '>', quote-aware.
func tagEnd(text string, from int) int {
	var quote byte
	for i := from; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}
	return len(text)
}

// valueStateAt replays tag text between from and offset and reports whether
// the caret sits inside an unterminated quoted value, and for which
// attribute.
func valueStateAt(text string, from, offset int) (attr string, inValue bool) {
	var quote byte
	var ident string
	var lastName string
	for i := from; i < offset; i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
		case c == '=':
			if ident != "" {
				lastName = ident
			}
			ident = ""
		case isNameChar(c):
			ident += string(c)
		default:
			ident = ""
		}
	}
	return lastName, quote != 0
}

// ancestorStack forward-scans tags up to the given offset with the same
// push/nearest-match-pop discipline the tree builder uses, without building
// a tree.
func ancestorStack(text string, upto int) []string {
	var stack []string
	sc := xmltree.NewScanner(text[:upto])
	for {
		tag, ok := sc.Next()
		if !ok {
			return stack
		}
		switch tag.Kind {
		case xmltree.TagOpen:
			stack = append(stack, tag.Name)
		case xmltree.TagClose:
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag.Name {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func top(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

func nextNonSpace(text string, from int) byte {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return text[i]
		}
	}
	return 0
}

func isNameStart(c byte) bool {
	return c == '_' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c == '-' || c == '.' || (c >= '0' && c <= '9')
}

func scanName(text string, from int) string {
	i := from
	for i < len(text) && isNameChar(text[i]) {
		i++
	}
	return text[from:i]
}
