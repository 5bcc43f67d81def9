package cursor

import (
	"reflect"
	"strings"
	"testing"
)

// caret splits a source with a "|" marker into text and offset.
func caret(t *testing.T, marked string) (string, int) {
	t.Helper()
	i := strings.Index(marked, "|")
	if i < 0 {
		t.Fatal("no caret marker")
	}
	return marked[:i] + marked[i+1:], i
}

func TestResolveKinds(t *testing.T) {
	tests := []struct {
		name   string
		marked string
		want   Kind
	}{
		{"element open", `<Layout><|`, ElementOpen},
		{"element name", `<Layout><Sec|`, ElementHover},
		{"element name complete tag", `<Layout><Sec|tion kind="a"></Section></Layout>`, ElementHover},
		{"after name before gt", `<Layout><Section |`, AttributeName},
		{"attribute prefix", `<Layout><Section ki|`, AttributeName},
		{"attribute value", `<Section kind="|`, AttributeValue},
		{"attribute value closed tag", `<Section kind="|"></Section>`, AttributeValue},
		{"attribute hover", `<Section ki|nd="a">`, AttributeHover},
		{"content", `<Layout>|</Layout>`, Content},
		{"content top level", `|`, Content},
		{"inside close tag", `<Layout></La|yout>`, Unknown},
		{"inside pi", `<?relaxml sch|ema=""?>`, Unknown},
		{"inside comment", `<!-- not |here -->`, Unknown},
		{"inside cdata", `<![CDATA[ not |here ]]>`, Unknown},
		{"after closed comment", `<!-- a -->|`, Content},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, offset := caret(t, tt.marked)
			got := Resolve(text, offset)
			if got.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.want)
			}
		})
	}
}

func TestResolveElementOpen(t *testing.T) {
	text, offset := caret(t, `<Layout><Section><|`)
	ctx := Resolve(text, offset)

	if ctx.Kind != ElementOpen {
		t.Fatalf("Kind = %v", ctx.Kind)
	}
	// The enclosing element, not the tag being typed.
	if ctx.Element != "Section" {
		t.Errorf("Element = %q", ctx.Element)
	}
	if !reflect.DeepEqual(ctx.Ancestors, []string{"Layout", "Section"}) {
		t.Errorf("Ancestors = %v", ctx.Ancestors)
	}
}

func TestResolveElementHover(t *testing.T) {
	text, offset := caret(t, `<Layout><Sec|tion kind="a">`)
	ctx := Resolve(text, offset)

	if ctx.Kind != ElementHover || ctx.Element != "Section" {
		t.Errorf("ctx = %+v", ctx)
	}
	if !reflect.DeepEqual(ctx.Ancestors, []string{"Layout"}) {
		t.Errorf("Ancestors = %v", ctx.Ancestors)
	}
}

func TestResolveAttributeName(t *testing.T) {
	text, offset := caret(t, `<Section kind="header" se|`)
	ctx := Resolve(text, offset)

	if ctx.Kind != AttributeName {
		t.Fatalf("Kind = %v", ctx.Kind)
	}
	if ctx.Element != "Section" || ctx.Prefix != "se" {
		t.Errorf("ctx = %+v", ctx)
	}
	if ctx.Attrs["kind"] != "header" {
		t.Errorf("Attrs = %v", ctx.Attrs)
	}
}

func TestResolveAttributeValue(t *testing.T) {
	text, offset := caret(t, `<Value select="pa|`)
	ctx := Resolve(text, offset)

	if ctx.Kind != AttributeValue {
		t.Fatalf("Kind = %v", ctx.Kind)
	}
	if ctx.Element != "Value" || ctx.Attribute != "select" {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestResolveAttributeValueSecondAttr(t *testing.T) {
	// The replay must attribute the open quote to the second attribute.
	text, offset := caret(t, `<Section kind="header" ref="x|`)
	ctx := Resolve(text, offset)

	if ctx.Kind != AttributeValue || ctx.Attribute != "ref" {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestResolveAttributeHover(t *testing.T) {
	text, offset := caret(t, `<Section ki|nd="header">`)
	ctx := Resolve(text, offset)

	if ctx.Kind != AttributeHover || ctx.Attribute != "kind" {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestResolveContent(t *testing.T) {
	text, offset := caret(t, `<Layout><Section>|</Section></Layout>`)
	ctx := Resolve(text, offset)

	if ctx.Kind != Content || ctx.Element != "Section" {
		t.Errorf("ctx = %+v", ctx)
	}
	if !reflect.DeepEqual(ctx.Ancestors, []string{"Layout", "Section"}) {
		t.Errorf("Ancestors = %v", ctx.Ancestors)
	}
}

func TestResolveContentAfterClosedChild(t *testing.T) {
	text, offset := caret(t, `<Layout><Section></Section>|</Layout>`)
	ctx := Resolve(text, offset)

	if ctx.Kind != Content || ctx.Element != "Layout" {
		t.Errorf("ctx = %+v", ctx)
	}
}

func TestResolveOffsetClamping(t *testing.T) {
	if got := Resolve("<a>", 99).Kind; got != Content {
		t.Errorf("past-end offset Kind = %v", got)
	}
	if got := Resolve("<a>", -1).Kind; got != Content {
		t.Errorf("negative offset Kind = %v", got)
	}
}
