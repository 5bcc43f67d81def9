// Package xmltree reconstructs element structure directly from document
// text. It is deliberately tolerant: the input is whatever the user has
// typed so far, which is usually not well-formed XML.
package xmltree

import (
	"regexp"
	"strings"
)

// TagKind classifies a recognized markup token.
type TagKind int

const (
	TagOpen TagKind = iota
	TagClose
	TagSelfClose
	TagPI      // <?...?>
	TagComment // <!--...-->
	TagDecl    // <!DOCTYPE ...>, <![CDATA[...]]> and other <! markup
)

// Tag is one markup token with its byte span in the document.
type Tag struct {
	Kind  TagKind
	Name  string // element name; empty for PI/comment/decl
	Start int    // offset of '<'
	End   int    // offset just past the final '>' (or len(text) if unterminated)
}

// NameStart returns the offset of the first character of the tag name.
func (t Tag) NameStart() int {
	if t.Kind == TagClose {
		return t.Start + 2
	}
	return t.Start + 1
}

// Scanner iterates markup tokens left to right.
type Scanner struct {
	text string
	pos  int
}

// NewScanner returns a scanner over text starting at offset 0.
func NewScanner(text string) *Scanner {
	return &Scanner{text: text}
}

// Next returns the next recognized tag. A bare '<' that does not begin a
// tag, comment, PI or CDATA section is skipped; well-formedness checking is
// a separate concern.
func (s *Scanner) Next() (Tag, bool) {
	for s.pos < len(s.text) {
		lt := strings.IndexByte(s.text[s.pos:], '<')
		if lt < 0 {
			s.pos = len(s.text)
			return Tag{}, false
		}
		start := s.pos + lt
		rest := s.text[start:]

		switch {
		case strings.HasPrefix(rest, "<?"):
			end := terminatedBy(s.text, start+2, "?>")
			s.pos = end
			return Tag{Kind: TagPI, Start: start, End: end}, true

		case strings.HasPrefix(rest, "<!--"):
			end := terminatedBy(s.text, start+4, "-->")
			s.pos = end
			return Tag{Kind: TagComment, Start: start, End: end}, true

		case strings.HasPrefix(rest, "<![CDATA["):
			end := terminatedBy(s.text, start+9, "]]>")
			s.pos = end
			return Tag{Kind: TagDecl, Start: start, End: end}, true

		case strings.HasPrefix(rest, "<!"):
			end := scanToGT(s.text, start+2)
			s.pos = end
			return Tag{Kind: TagDecl, Start: start, End: end}, true

		case strings.HasPrefix(rest, "</"):
			name := scanName(s.text, start+2)
			end := scanToGT(s.text, start+2)
			s.pos = end
			return Tag{Kind: TagClose, Name: name, Start: start, End: end}, true

		case len(rest) > 1 && isNameStart(rest[1]):
			name := scanName(s.text, start+1)
			end := scanToGT(s.text, start+1)
			kind := TagOpen
			if strings.HasSuffix(strings.TrimRight(s.text[start:end], ">"), "/") {
				kind = TagSelfClose
			}
			s.pos = end
			return Tag{Kind: kind, Name: name, Start: start, End: end}, true

		default:
			// Not a tag; step past the '<' and keep looking.
			s.pos = start + 1
		}
	}
	return Tag{}, false
}

// Scan returns all tags of text in document order.
func Scan(text string) []Tag {
	var tags []Tag
	sc := NewScanner(text)
	for {
		t, ok := sc.Next()
		if !ok {
			return tags
		}
		tags = append(tags, t)
	}
}

// terminatedBy returns the offset just past the closing delimiter, or
// len(text) when the construct is unterminated.
func terminatedBy(text string, from int, close string) int {
	if i := strings.Index(text[from:], close); i >= 0 {
		return from + i + len(close)
	}
	return len(text)
}

// scanToGT finds the end of a tag, ignoring '>' inside quoted attribute
// values. Returns the offset just past '>', or len(text) if unterminated.
func scanToGT(text string, from int) int {
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

// Attr is one attribute parsed from a tag's text.
type Attr struct {
	Name  string
	Value string
}

var attrPattern = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// ParseAttrs extracts the name="value" pairs of a tag. The input is the raw
// tag text (including the angle brackets); unterminated trailing attributes
// are ignored.
func ParseAttrs(tag string) []Attr {
	// Skip the tag name so it can never match as an attribute.
	i := 1
	for i < len(tag) && tag[i] != ' ' && tag[i] != '\t' && tag[i] != '\n' && tag[i] != '\r' && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	var attrs []Attr
	for _, m := range attrPattern.FindAllStringSubmatch(tag[i:], -1) {
		v := m[2]
		if v == "" && m[3] != "" {
			v = m[3]
		}
		attrs = append(attrs, Attr{Name: m[1], Value: v})
	}
	return attrs
}

// AttrMap is ParseAttrs as a name-to-value map.
func AttrMap(tag string) map[string]string {
	attrs := ParseAttrs(tag)
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}
