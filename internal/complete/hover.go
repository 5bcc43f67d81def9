package complete

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relaxml/relaxml/internal/cursor"
	"github.com/relaxml/relaxml/internal/schema"
)

// Hover renders markdown documentation for the element or attribute under
// the caret. Returns "" when there is nothing to show.
func Hover(text string, offset int, model *schema.ContentModel) string {
	ctx := cursor.Resolve(text, offset)

	switch ctx.Kind {
	case cursor.ElementHover:
		return elementHover(model.Element(ctx.Element))
	case cursor.AttributeHover:
		return attributeHover(ctx.Attribute, model.Element(ctx.Element))
	}
	return ""
}

func elementHover(decl *schema.ElementDecl) string {
	if decl == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", decl.Name)
	if decl.Documentation != "" {
		b.WriteString("\n\n")
		b.WriteString(decl.Documentation)
	}

	if len(decl.Children) > 0 {
		names := make([]string, 0, len(decl.Children))
		for name := range decl.Children {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n\nAllowed children: `")
		b.WriteString(strings.Join(names, "`, `"))
		b.WriteString("`")
	}

	return b.String()
}

func attributeHover(name string, decl *schema.ElementDecl) string {
	a := decl.Attribute(name)
	if a == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", a.Name)
	if a.Required {
		b.WriteString(" *(required)*")
	}
	if a.Documentation != "" {
		b.WriteString("\n\n")
		b.WriteString(a.Documentation)
	}

	if len(a.Values) > 0 {
		b.WriteString("\n\nValues:")
		for _, v := range a.Values {
			fmt.Fprintf(&b, "\n- `%s`", v.Value)
			if v.Documentation != "" {
				b.WriteString(": ")
				b.WriteString(v.Documentation)
			}
		}
	}

	if a.Pattern != "" {
		fmt.Fprintf(&b, "\n\nPattern: `%s`", a.Pattern)
	}

	return b.String()
}
