package validate

import (
	"regexp"
	"strings"
)

var entityPattern = regexp.MustCompile(`^&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]+|#x[0-9a-fA-F]+);`)

// WellFormed scans the raw character stream for markup defects that are
// independent of any schema: a bare '<' that does not begin a recognizable
// construct, and a bare '&' that does not begin a character or entity
// reference. Scanning continues past each defect.
func WellFormed(text string) []Diagnostic {
	var diags []Diagnostic

	for i := 0; i < len(text); {
		c := text[i]
		rest := text[i:]
		switch c {
		case '<':
			switch {
			case strings.HasPrefix(rest, "<!--"):
				i = skipPast(text, i+4, "-->")
			case strings.HasPrefix(rest, "<![CDATA["):
				i = skipPast(text, i+9, "]]>")
			case strings.HasPrefix(rest, "<?"):
				i = skipPast(text, i+2, "?>")
			case strings.HasPrefix(rest, "<!"):
				i = skipTag(text, i+2)
			case len(rest) > 1 && (rest[1] == '/' || isNameStart(rest[1])):
				i = skipTag(text, i+1)
			default:
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Start:    i,
					End:      i + 1,
					Message:  "'<' must start a tag; use &lt; for a literal '<'",
				})
				i++
			}
		case '&':
			if entityPattern.MatchString(rest) {
				i += len(entityPattern.FindString(rest))
			} else {
				diags = append(diags, Diagnostic{
					Severity: SeverityError,
					Start:    i,
					End:      i + 1,
					Message:  "'&' must start an entity reference; use &amp; for a literal '&'",
				})
				i++
			}
		default:
			i++
		}
	}

	return diags
}

// skipPast advances past the closing delimiter, or to end of text.
func skipPast(text string, from int, close string) int {
	if i := strings.Index(text[from:], close); i >= 0 {
		return from + i + len(close)
	}
	return len(text)
}

// skipTag advances past the tag's '>', honoring quoted attribute values.
func skipTag(text string, from int) int {
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
