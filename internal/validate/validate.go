// Package validate walks document text against a compiled content model and
// reports positioned diagnostics. It never fails: malformed input produces
// diagnostics, not errors.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relaxml/relaxml/internal/schema"
	"github.com/relaxml/relaxml/internal/xmltree"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one finding, spanning [Start, End) byte offsets.
type Diagnostic struct {
	Severity Severity
	Start    int
	End      int
	Message  string
}

// Options configure a validation pass.
type Options struct {
	// Preserved lists element names whose subtrees are verbatim content,
	// exempt from all checks.
	Preserved []string
	// Rules holds the semantic rules keyed by element name. Nil disables
	// custom rules.
	Rules *Registry
}

// DefaultOptions returns the stock configuration: Expression subtrees are
// preserved and the default rule registry applies.
func DefaultOptions() Options {
	return Options{
		Preserved: []string{"Expression"},
		Rules:     DefaultRegistry(),
	}
}

type elementFrame struct {
	el   Element
	decl *schema.ElementDecl
}

// Validate checks text against the model. A nil model yields no diagnostics;
// the well-formedness pass is separate (see WellFormed).
func Validate(text string, model *schema.ContentModel, opts Options) []Diagnostic {
	if model == nil {
		return nil
	}

	preserved := make(map[string]bool, len(opts.Preserved))
	for _, name := range opts.Preserved {
		preserved[name] = true
	}

	var diags []Diagnostic
	var stack []*elementFrame
	preserveDepth := 0
	preserveName := ""
	lastEnd := 0

	markContent := func() {
		if len(stack) > 0 {
			stack[len(stack)-1].el.HasContent = true
		}
	}

	sc := xmltree.NewScanner(text)
	for {
		tag, ok := sc.Next()
		if !ok {
			break
		}

		// Non-blank text between tags counts as content of the open element.
		if strings.TrimSpace(text[lastEnd:tag.Start]) != "" {
			markContent()
		}
		lastEnd = tag.End

		// Inside a preserved subtree only the preserve counter moves.
		if preserveDepth > 0 {
			switch {
			case tag.Kind == xmltree.TagOpen && tag.Name == preserveName:
				preserveDepth++
			case tag.Kind == xmltree.TagClose && tag.Name == preserveName:
				preserveDepth--
				if preserveDepth == 0 && len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
			if preserveDepth > 0 {
				markContent()
			}
			continue
		}

		switch tag.Kind {
		case xmltree.TagOpen, xmltree.TagSelfClose:
			markContent()

			raw := text[tag.Start:tag.End]
			attrs := xmltree.ParseAttrs(raw)
			el := Element{
				Name:  tag.Name,
				Attrs: make(map[string]string, len(attrs)),
				Start: tag.Start,
				End:   tag.End,
			}
			for _, a := range attrs {
				el.Attrs[a.Name] = a.Value
			}

			var parentDecl *schema.ElementDecl
			if len(stack) > 0 {
				parentDecl = stack[len(stack)-1].decl
			}
			decl := model.Element(tag.Name)
			diags = append(diags, checkOpenTag(el, attrs, decl, parentDecl)...)

			if tag.Kind == xmltree.TagSelfClose {
				// Full state known immediately.
				if rule := opts.Rules.Lookup(el.Name); rule != nil {
					diags = append(diags, rule.Check(el)...)
				}
				continue
			}

			stack = append(stack, &elementFrame{el: el, decl: decl})
			if preserved[tag.Name] {
				preserveDepth = 1
				preserveName = tag.Name
			}

		case xmltree.TagClose:
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].el.Name != tag.Name {
					continue
				}
				// Frames above the match never got a closing tag.
				for _, dangling := range stack[i+1:] {
					diags = append(diags, unclosedDiag(dangling.el))
				}
				matched := stack[i]
				stack = stack[:i]
				if rule := opts.Rules.Lookup(matched.el.Name); rule != nil {
					diags = append(diags, rule.Check(matched.el)...)
				}
				break
			}
		}
	}

	// Whatever is still open at end of document was never closed.
	for _, f := range stack {
		diags = append(diags, unclosedDiag(f.el))
	}

	return diags
}

func unclosedDiag(el Element) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Start:    el.Start,
		End:      el.End,
		Message:  fmt.Sprintf("element %s is never closed", el.Name),
	}
}

// checkOpenTag runs the grammar-level checks for one opening tag: unknown
// element, disallowed child, unknown attributes, value sets and patterns,
// and missing required attributes. Attribute checks walk attrs in document
// order so diagnostics on one tag come out in a stable order.
func checkOpenTag(el Element, attrs []xmltree.Attr, decl, parentDecl *schema.ElementDecl) []Diagnostic {
	var diags []Diagnostic

	if decl == nil {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Start:    el.Start,
			End:      el.End,
			Message:  fmt.Sprintf("unknown element %s", el.Name),
		})
		return diags
	}

	// Only flag a disallowed child when both sides are declared.
	if parentDecl != nil && !parentDecl.AllowsChild(el.Name) {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Start:    el.Start,
			End:      el.End,
			Message:  fmt.Sprintf("%s is not allowed inside %s", el.Name, parentDecl.Name),
		})
	}

	for _, a := range attrs {
		name, value := a.Name, a.Value
		if strings.HasPrefix(name, "xmlns") {
			continue
		}
		ad := decl.Attribute(name)
		if ad == nil {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Start:    el.Start,
				End:      el.End,
				Message:  fmt.Sprintf("unknown attribute %q on %s", name, el.Name),
			})
			continue
		}
		if len(ad.Values) > 0 && !ad.HasValue(value) && !matchesPattern(ad.Pattern, value) {
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Start:    el.Start,
				End:      el.End,
				Message:  fmt.Sprintf("invalid value %q for attribute %q", value, name),
			})
		}
	}

	for _, ad := range decl.Attributes {
		if !ad.Required {
			continue
		}
		if _, present := el.Attrs[ad.Name]; !present {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Start:    el.Start,
				End:      el.End,
				Message:  fmt.Sprintf("missing required attribute %q on %s", ad.Name, el.Name),
			})
		}
	}

	return diags
}

// matchesPattern reports whether value matches the whole-string pattern. An
// empty or uncompilable pattern skips the check (reported as a match so the
// value-set warning is suppressed only when a pattern exists).
func matchesPattern(pattern, value string) bool {
	if pattern == "" {
		return false
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		// Malformed schema pattern: skip the check, never a user diagnostic.
		return true
	}
	return re.MatchString(value)
}
