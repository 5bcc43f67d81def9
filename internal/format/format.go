// Package format rewrites document text into a normalized layout in a
// single left-to-right pass.
package format

import (
	"strings"

	"github.com/relaxml/relaxml/internal/xmltree"
)

// Options configure the pretty-printer.
type Options struct {
	// Indent is the indentation unit. Defaults to two spaces.
	Indent string
	// SectionContainers lists element names whose children are separated
	// by blank lines, in addition to the document root's children.
	SectionContainers []string
	// Preserved lists element names whose content is copied byte-for-byte.
	Preserved []string
}

// DefaultOptions returns the stock formatting configuration.
func DefaultOptions() Options {
	return Options{
		Indent:            "  ",
		SectionContainers: []string{"Section"},
		Preserved:         []string{"Expression"},
	}
}

// scope tracks sibling bookkeeping for one nesting level. It is reset (a
// fresh scope is pushed) whenever a new child scope opens.
type scope struct {
	owner         string // element name owning this scope; "" for document
	siblingSeen   bool
	prevSelfClose bool
}

type formatter struct {
	text      string
	opts      Options
	sections  map[string]bool
	preserved map[string]bool
	out       strings.Builder
	scopes    []scope
	// comments buffered until the element they document is emitted.
	comments []string
}

// Format returns the normalized rewrite of text. The output always ends
// with exactly one newline; formatting an already-formatted document is a
// fixed point for the constructs the formatter understands.
func Format(text string, opts Options) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	f := &formatter{
		text:      text,
		opts:      opts,
		sections:  nameSet(opts.SectionContainers),
		preserved: nameSet(opts.Preserved),
		scopes:    []scope{{}},
	}
	f.run()
	if f.out.Len() == 0 {
		return "\n"
	}
	return f.out.String()
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func (f *formatter) run() {
	sc := xmltree.NewScanner(f.text)
	last := 0
	for {
		tag, ok := sc.Next()
		if !ok {
			break
		}
		f.textRun(f.text[last:tag.Start])
		last = tag.End

		switch tag.Kind {
		case xmltree.TagPI, xmltree.TagDecl:
			f.sibling(false)
			f.line(f.raw(tag))

		case xmltree.TagComment:
			if f.detached(tag) {
				f.sibling(false)
				f.line(f.raw(tag))
			} else {
				f.comments = append(f.comments, f.raw(tag))
			}

		case xmltree.TagSelfClose:
			f.sibling(true)
			f.line(normalizeSelfClose(f.raw(tag)))

		case xmltree.TagOpen:
			if f.preserved[tag.Name] {
				last = f.preservedRegion(sc, tag)
				continue
			}
			f.sibling(false)
			f.line(f.raw(tag))
			f.scopes = append(f.scopes, scope{owner: tag.Name})

		case xmltree.TagClose:
			// A comment buffered right before the close belongs inside
			// the element, at the inner depth.
			f.flushComments()
			f.popTo(tag.Name)
			f.line(f.raw(tag))
		}
	}
	f.textRun(f.text[last:])

	// Comments with no following element still get emitted.
	f.flushComments()
}

func (f *formatter) flushComments() {
	for _, c := range f.comments {
		f.line(c)
	}
	f.comments = f.comments[:0]
}

// textRun emits non-blank text content as trimmed lines at the current
// depth. Pure whitespace between tags is dropped; the emitter re-derives
// all layout.
func (f *formatter) textRun(s string) {
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		f.sibling(false)
		f.line(ln)
	}
}

// sibling inserts the blank-line separation due before the next child and
// flushes any buffered comment block so the blank lands before it.
func (f *formatter) sibling(selfClose bool) {
	top := &f.scopes[len(f.scopes)-1]
	if top.siblingSeen && f.blankEligible() && !(top.prevSelfClose && selfClose) {
		f.out.WriteString("\n")
	}
	f.flushComments()
	top.siblingSeen = true
	top.prevSelfClose = selfClose
}

// blankEligible reports whether the current scope separates its children
// with blank lines: direct children of the document root, and children of a
// section-like container.
func (f *formatter) blankEligible() bool {
	if len(f.scopes) == 2 {
		return true
	}
	return f.sections[f.scopes[len(f.scopes)-1].owner]
}

// detached reports whether the comment is separated from the following
// sibling by a blank line in the source.
func (f *formatter) detached(tag xmltree.Tag) bool {
	newlines := 0
	for i := tag.End; i < len(f.text); i++ {
		switch f.text[i] {
		case '\n':
			newlines++
		case ' ', '\t', '\r':
		default:
			return false
		}
		if newlines >= 2 {
			return true
		}
	}
	return true
}

// preservedRegion copies a verbatim element: the open tag is placed at the
// current indent, everything up to the matching close tag is untouched.
// Returns the offset the outer loop resumes at.
func (f *formatter) preservedRegion(sc *xmltree.Scanner, open xmltree.Tag) int {
	depth := 1
	for {
		tag, ok := sc.Next()
		if !ok {
			// Never closed: copy the rest of the document as-is.
			f.sibling(false)
			f.indent()
			f.out.WriteString(strings.TrimRight(f.text[open.Start:], " \t\n"))
			f.out.WriteString("\n")
			return len(f.text)
		}
		switch {
		case tag.Kind == xmltree.TagOpen && tag.Name == open.Name:
			depth++
		case tag.Kind == xmltree.TagClose && tag.Name == open.Name:
			depth--
		}
		if depth == 0 {
			f.sibling(false)
			f.indent()
			f.out.WriteString(f.text[open.Start:tag.End])
			f.out.WriteString("\n")
			return tag.End
		}
	}
}

// popTo closes the nearest open scope with the given owner, tolerating
// close tags for elements that were never opened.
func (f *formatter) popTo(name string) {
	for i := len(f.scopes) - 1; i > 0; i-- {
		if f.scopes[i].owner == name {
			f.scopes = f.scopes[:i]
			return
		}
	}
}

func (f *formatter) raw(tag xmltree.Tag) string {
	return strings.TrimSpace(f.text[tag.Start:tag.End])
}

func (f *formatter) indent() {
	for i := 1; i < len(f.scopes); i++ {
		f.out.WriteString(f.opts.Indent)
	}
}

func (f *formatter) line(s string) {
	f.indent()
	f.out.WriteString(s)
	f.out.WriteString("\n")
}

// normalizeSelfClose rewrites a self-closing tag to end in exactly one
// space before the slash.
func normalizeSelfClose(raw string) string {
	if !strings.HasSuffix(raw, "/>") {
		return raw
	}
	body := strings.TrimRight(raw[:len(raw)-2], " \t")
	return body + " />"
}
