package complete

import (
	"strings"
	"testing"

	"github.com/relaxml/relaxml/internal/schema"
)

const testSchema = `
<grammar ns="urn:example:layout">
  <define name="layout.def">
    <element name="Layout">
      <documentation>Root container.</documentation>
      <attribute name="name"/>
      <zeroOrMore><ref name="section.def"/></zeroOrMore>
      <zeroOrMore><ref name="define.def"/></zeroOrMore>
    </element>
  </define>
  <define name="section.def">
    <element name="Section">
      <attribute name="kind">
        <value>header</value>
        <documentation>Topmost band.</documentation>
        <value>body</value>
      </attribute>
      <optional><attribute name="ref"/></optional>
      <zeroOrMore><ref name="value.def"/></zeroOrMore>
      <zeroOrMore><ref name="color.def"/></zeroOrMore>
    </element>
  </define>
  <define name="value.def">
    <element name="Value">
      <optional><attribute name="select"/></optional>
      <text/>
    </element>
  </define>
  <define name="color.def">
    <element name="Color">
      <attribute name="model">
        <value>rgb</value>
        <value>hsv</value>
      </attribute>
      <optional><attribute name="red"/></optional>
      <optional><attribute name="green"/></optional>
      <optional><attribute name="blue"/></optional>
      <optional><attribute name="hue"/></optional>
      <optional><attribute name="saturation"/></optional>
      <optional><attribute name="value"/></optional>
    </element>
  </define>
  <define name="define.def">
    <element name="Define">
      <attribute name="name"/>
    </element>
  </define>
</grammar>`

func testModel(t *testing.T) *schema.ContentModel {
	t.Helper()
	return schema.Compile([]byte(testSchema))
}

// caret splits a source with a "|" marker into text and offset.
func caret(t *testing.T, marked string) (string, int) {
	t.Helper()
	i := strings.Index(marked, "|")
	if i < 0 {
		t.Fatal("no caret marker")
	}
	return marked[:i] + marked[i+1:], i
}

func itemByLabel(items []Item, label string) *Item {
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestElementCompletions(t *testing.T) {
	text, offset := caret(t, `<Layout name="a"><Section kind="body"><|`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	// Section allows Value and Color, plus the two structural snippets.
	if len(items) != 4 {
		t.Fatalf("got %d items: %v", len(items), items)
	}
	if itemByLabel(items, "Value") == nil || itemByLabel(items, "Color") == nil {
		t.Errorf("allowed children missing: %v", items)
	}
	if itemByLabel(items, "Section") != nil {
		t.Error("Section is not allowed inside Section")
	}
	if itemByLabel(items, "<![CDATA[]]>") == nil || itemByLabel(items, "<!---->") == nil {
		t.Error("structural snippets missing")
	}
}

func TestElementSnippets(t *testing.T) {
	text, offset := caret(t, `<Layout name="a"><Section kind="body"><|`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	// Color: required attribute placeholder, self-closing leaf.
	color := itemByLabel(items, "Color")
	if color == nil {
		t.Fatal("Color missing")
	}
	if color.Snippet != `Color model="${1:model}" />` {
		t.Errorf("Color snippet = %q", color.Snippet)
	}

	// Value: allows text, auto-close with the cursor inside.
	value := itemByLabel(items, "Value")
	if value == nil {
		t.Fatal("Value missing")
	}
	if value.Snippet != `Value>$0</Value>` {
		t.Errorf("Value snippet = %q", value.Snippet)
	}
}

func TestContentCompletionsIncludeAngle(t *testing.T) {
	// In content the '<' is not typed yet, so the snippet supplies it.
	text, offset := caret(t, `<Layout name="a"><Section kind="body">|</Section></Layout>`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	value := itemByLabel(items, "Value")
	if value == nil {
		t.Fatal("Value missing")
	}
	if !strings.HasPrefix(value.Snippet, "<Value") {
		t.Errorf("content snippet should start with '<': %q", value.Snippet)
	}
}

func TestTopLevelCompletions(t *testing.T) {
	text, offset := caret(t, `<|`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	// No enclosing element: every declared element is offered.
	for _, name := range []string{"Layout", "Section", "Value", "Color", "Define"} {
		if itemByLabel(items, name) == nil {
			t.Errorf("%s missing at top level", name)
		}
	}
}

func TestAttributeCompletions(t *testing.T) {
	text, offset := caret(t, `<Layout name="a"><Section kind="body" |`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	// kind is already present; ref remains.
	if itemByLabel(items, "kind") != nil {
		t.Error("present attribute should not be offered")
	}
	ref := itemByLabel(items, "ref")
	if ref == nil {
		t.Fatal("ref missing")
	}
	if ref.Snippet != `ref="$0"` {
		t.Errorf("ref snippet = %q", ref.Snippet)
	}
}

func TestAttributeCompletionsRequiredFirst(t *testing.T) {
	text, offset := caret(t, `<Layout name="a"><Section |`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	if len(items) < 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Label != "kind" || !items[0].Required {
		t.Errorf("required attribute should sort first: %+v", items[0])
	}
	if items[0].Detail != "(required)" {
		t.Errorf("Detail = %q", items[0].Detail)
	}
}

func TestAttributeCompletionsRuleFiltered(t *testing.T) {
	// With model="rgb" chosen, hsv channels are forbidden and rgb channels
	// become required.
	text, offset := caret(t, `<Section kind="body"><Color model="rgb" |`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	for _, forbidden := range []string{"hue", "saturation", "value"} {
		if itemByLabel(items, forbidden) != nil {
			t.Errorf("%s belongs to hsv, should be filtered", forbidden)
		}
	}
	for _, required := range []string{"red", "green", "blue"} {
		item := itemByLabel(items, required)
		if item == nil {
			t.Fatalf("%s missing", required)
		}
		if !item.Required {
			t.Errorf("%s should be marked required", required)
		}
	}
}

func TestValueCompletions(t *testing.T) {
	text, offset := caret(t, `<Section kind="|`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	if len(items) != 2 {
		t.Fatalf("got %d items: %v", len(items), items)
	}
	header := itemByLabel(items, "header")
	if header == nil || header.Documentation != "Topmost band." {
		t.Errorf("header = %+v", header)
	}
	if itemByLabel(items, "body") == nil {
		t.Error("body missing")
	}
}

func TestCrossRefValueCompletions(t *testing.T) {
	text, offset := caret(t, `<Layout name="a">
  <Define name="page-title"/>
  <Define name="page-footer"/>
  <Define name="{dynamic}"/>
  <Define name="page-title"/>
  <Section kind="body" ref="|`)
	items := Completions(text, offset, testModel(t), DefaultOptions())

	if itemByLabel(items, "page-title") == nil || itemByLabel(items, "page-footer") == nil {
		t.Errorf("cross-referenced values missing: %v", items)
	}
	if itemByLabel(items, "{dynamic}") != nil {
		t.Error("templated values are dynamic and must be excluded")
	}

	// Duplicates collapse.
	count := 0
	for _, item := range items {
		if item.Label == "page-title" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("page-title offered %d times", count)
	}
}

func TestCompletionsNilModel(t *testing.T) {
	text, offset := caret(t, `<Layout><|`)
	items := Completions(text, offset, nil, DefaultOptions())

	// Only the structural snippets.
	if len(items) != 2 {
		t.Errorf("got %d items: %v", len(items), items)
	}
}

func TestHoverElement(t *testing.T) {
	text, offset := caret(t, `<Lay|out name="a">`)
	md := Hover(text, offset, testModel(t))

	if !strings.Contains(md, "**Layout**") {
		t.Errorf("hover = %q", md)
	}
	if !strings.Contains(md, "Root container.") {
		t.Errorf("documentation missing: %q", md)
	}
	if !strings.Contains(md, "Allowed children: `Define`, `Section`") {
		t.Errorf("children list missing or unsorted: %q", md)
	}
}

func TestHoverAttribute(t *testing.T) {
	text, offset := caret(t, `<Section ki|nd="body">`)
	md := Hover(text, offset, testModel(t))

	if !strings.Contains(md, "**kind**") || !strings.Contains(md, "*(required)*") {
		t.Errorf("hover = %q", md)
	}
	if !strings.Contains(md, "- `header`: Topmost band.") {
		t.Errorf("value list missing: %q", md)
	}
}

func TestHoverNothing(t *testing.T) {
	text, offset := caret(t, `<Layout name="a">|</Layout>`)
	if md := Hover(text, offset, testModel(t)); md != "" {
		t.Errorf("content position should not hover: %q", md)
	}

	text, offset = caret(t, `<Bog|us/>`)
	if md := Hover(text, offset, testModel(t)); md != "" {
		t.Errorf("undeclared element should not hover: %q", md)
	}
}
