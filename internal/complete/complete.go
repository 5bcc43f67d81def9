// Package complete assembles completion candidates and hover text from the
// content model and the caret context.
package complete

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relaxml/relaxml/internal/cursor"
	"github.com/relaxml/relaxml/internal/schema"
	"github.com/relaxml/relaxml/internal/validate"
	"github.com/relaxml/relaxml/internal/xmltree"
)

// ItemKind tags what a completion item stands for.
type ItemKind int

const (
	KindElement ItemKind = iota
	KindAttribute
	KindValue
	KindSnippet
)

// Item is one completion candidate. Snippet, when non-empty, is the insert
// text with ${n:placeholder} tab stops; otherwise the label inserts as-is.
type Item struct {
	Label         string
	Kind          ItemKind
	Detail        string
	Documentation string
	Snippet       string
	Required      bool
}

// CrossRef declares that values of one element's attribute become legal
// values of another attribute anywhere in the document.
type CrossRef struct {
	// Element/Attr identify the defining occurrence, e.g. Define/name.
	Element string
	Attr    string
	// Target is the attribute whose values the collection feeds.
	Target string
}

// Options configure the suggestion engine.
type Options struct {
	Rules     *validate.Registry
	CrossRefs []CrossRef
}

// DefaultOptions wires the default rule registry and the Define-name
// cross-reference.
func DefaultOptions() Options {
	return Options{
		Rules:     validate.DefaultRegistry(),
		CrossRefs: []CrossRef{{Element: "Define", Attr: "name", Target: "ref"}},
	}
}

// Completions returns candidates for the caret at offset. A nil model
// yields only the structural snippets where elements would be offered.
func Completions(text string, offset int, model *schema.ContentModel, opts Options) []Item {
	ctx := cursor.Resolve(text, offset)

	switch ctx.Kind {
	case cursor.ElementOpen, cursor.ElementHover, cursor.Content:
		return elementItems(ctx, model)
	case cursor.AttributeName:
		return attributeItems(ctx, model, opts)
	case cursor.AttributeValue:
		return valueItems(text, ctx, model, opts)
	}
	return nil
}

// elementItems lists the enclosing element's allowed children, or every
// declared element at top level, plus the CDATA and comment snippets.
func elementItems(ctx cursor.Context, model *schema.ContentModel) []Item {
	// For a tag context the enclosing element is the innermost ancestor;
	// for content it is the element the caret sits in.
	enclosing := ctx.Element
	if ctx.Kind == cursor.ElementHover {
		if len(ctx.Ancestors) > 0 {
			enclosing = ctx.Ancestors[len(ctx.Ancestors)-1]
		} else {
			enclosing = ""
		}
	}

	var names []string
	if decl := model.Element(enclosing); decl != nil {
		for name := range decl.Children {
			names = append(names, name)
		}
	} else if model != nil {
		for name := range model.Elements {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	// In content the '<' is not typed yet and belongs in the snippet.
	lead := ""
	if ctx.Kind == cursor.Content {
		lead = "<"
	}

	items := make([]Item, 0, len(names)+2)
	for _, name := range names {
		items = append(items, elementItem(name, model.Element(name), lead))
	}

	items = append(items,
		Item{
			Label:   "<![CDATA[]]>",
			Kind:    KindSnippet,
			Detail:  "CDATA section",
			Snippet: lead + "![CDATA[$0]]>",
		},
		Item{
			Label:   "<!---->",
			Kind:    KindSnippet,
			Detail:  "comment",
			Snippet: lead + "!-- $0 -->",
		},
	)
	return items
}

// elementItem renders one child element as a snippet with its required
// attributes pre-filled as placeholders. Elements that can hold text or
// children auto-close with the cursor between the tags; leaves self-close.
func elementItem(name string, decl *schema.ElementDecl, lead string) Item {
	var b strings.Builder
	b.WriteString(lead)
	b.WriteString(name)

	stop := 1
	if decl != nil {
		for _, a := range decl.Attributes {
			if a.Required {
				fmt.Fprintf(&b, " %s=\"${%d:%s}\"", a.Name, stop, a.Name)
				stop++
			}
		}
	}

	if decl != nil && (decl.AllowsText || len(decl.Children) > 0) {
		fmt.Fprintf(&b, ">$0</%s>", name)
	} else {
		b.WriteString(" />")
	}

	item := Item{Label: name, Kind: KindElement, Snippet: b.String()}
	if decl != nil {
		item.Documentation = decl.Documentation
	}
	return item
}

// attributeItems lists the declared attributes not yet present, with
// rule-driven exclusions and required markers, required first.
func attributeItems(ctx cursor.Context, model *schema.ContentModel, opts Options) []Item {
	decl := model.Element(ctx.Element)
	if decl == nil {
		return nil
	}

	forbidden := map[string]bool{}
	required := map[string]bool{}
	if rule := opts.Rules.Lookup(ctx.Element); rule != nil {
		f, r := rule.Attributes(ctx.Attrs)
		for _, name := range f {
			forbidden[name] = true
		}
		for _, name := range r {
			required[name] = true
		}
	}

	var items []Item
	for _, a := range decl.Attributes {
		if _, present := ctx.Attrs[a.Name]; present || forbidden[a.Name] {
			continue
		}
		item := Item{
			Label:         a.Name,
			Kind:          KindAttribute,
			Documentation: a.Documentation,
			Snippet:       a.Name + "=\"$0\"",
			Required:      a.Required || required[a.Name],
		}
		if item.Required {
			item.Detail = "(required)"
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Required && !items[j].Required
	})
	return items
}

// valueItems lists the declared values for the attribute in focus, plus any
// cross-referenced values collected from the document.
func valueItems(text string, ctx cursor.Context, model *schema.ContentModel, opts Options) []Item {
	var items []Item

	if a := model.Element(ctx.Element).Attribute(ctx.Attribute); a != nil {
		for _, v := range a.Values {
			items = append(items, Item{
				Label:         v.Value,
				Kind:          KindValue,
				Documentation: v.Documentation,
			})
		}
	}

	for _, cr := range opts.CrossRefs {
		if cr.Target != ctx.Attribute {
			continue
		}
		for _, v := range collectCrossRefs(text, cr) {
			items = append(items, Item{Label: v, Kind: KindValue, Detail: cr.Element})
		}
	}

	return items
}

// collectCrossRefs gathers the defining attribute's values across the
// document. Templated values holding a brace placeholder are dynamic and
// excluded.
func collectCrossRefs(text string, cr CrossRef) []string {
	seen := map[string]bool{}
	var out []string
	for _, tag := range xmltree.Scan(text) {
		if tag.Name != cr.Element || (tag.Kind != xmltree.TagOpen && tag.Kind != xmltree.TagSelfClose) {
			continue
		}
		v := xmltree.AttrMap(text[tag.Start:tag.End])[cr.Attr]
		if v == "" || strings.Contains(v, "{") || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
