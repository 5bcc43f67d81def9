package schema

import (
	"testing"
)

const layoutSchema = `
<grammar xmlns="http://relaxng.org/ns/structure/1.0" ns="urn:example:layout">
  <start>
    <ref name="layout.def"/>
  </start>
  <define name="layout.def">
    <element name="Layout">
      <documentation>Root container of a document.</documentation>
      <attribute name="name">
        <documentation>Unique layout identifier.</documentation>
      </attribute>
      <optional>
        <attribute name="version">
          <param name="pattern">[0-9]+(\.[0-9]+)*</param>
        </attribute>
      </optional>
      <zeroOrMore>
        <ref name="section.def"/>
      </zeroOrMore>
    </element>
  </define>
  <define name="section.def">
    <element name="Section">
      <attribute name="kind">
        <value>header</value>
        <documentation>Topmost band.</documentation>
        <value>body</value>
      </attribute>
      <oneOrMore>
        <ref name="value.def"/>
      </oneOrMore>
    </element>
  </define>
  <define name="value.def">
    <element name="Value">
      <optional>
        <attribute name="select"/>
      </optional>
      <text/>
    </element>
  </define>
</grammar>`

func TestCompileLayoutSchema(t *testing.T) {
	model := Compile([]byte(layoutSchema))

	if model.Namespace != "urn:example:layout" {
		t.Errorf("Namespace = %q, want urn:example:layout", model.Namespace)
	}
	if model.Root != "Layout" {
		t.Errorf("Root = %q, want Layout", model.Root)
	}
	if len(model.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(model.Elements))
	}

	layout := model.Element("Layout")
	if layout == nil {
		t.Fatal("Layout not declared")
	}
	if layout.Documentation != "Root container of a document." {
		t.Errorf("Layout doc = %q", layout.Documentation)
	}
	if !layout.AllowsChild("Section") {
		t.Error("Layout should allow Section children")
	}
	if layout.AllowsText {
		t.Error("Layout should not allow text")
	}

	name := layout.Attribute("name")
	if name == nil || !name.Required {
		t.Error("Layout name attribute should be required")
	}
	if name != nil && name.Documentation != "Unique layout identifier." {
		t.Errorf("name doc = %q", name.Documentation)
	}

	version := layout.Attribute("version")
	if version == nil {
		t.Fatal("Layout version attribute not declared")
	}
	if version.Required {
		t.Error("version declared inside optional, should not be required")
	}
	if version.Pattern != `[0-9]+(\.[0-9]+)*` {
		t.Errorf("version pattern = %q", version.Pattern)
	}
}

func TestCompileAttributeValues(t *testing.T) {
	model := Compile([]byte(layoutSchema))

	kind := model.Element("Section").Attribute("kind")
	if kind == nil {
		t.Fatal("Section kind attribute not declared")
	}
	if len(kind.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(kind.Values))
	}
	if kind.Values[0].Value != "header" || kind.Values[1].Value != "body" {
		t.Errorf("values = %v", kind.Values)
	}
	// Documentation following a value binds to that value.
	if kind.Values[0].Documentation != "Topmost band." {
		t.Errorf("header doc = %q", kind.Values[0].Documentation)
	}
	if !kind.HasValue("body") || kind.HasValue("footer") {
		t.Error("HasValue mismatch")
	}
}

func TestCompileTextAndOneOrMore(t *testing.T) {
	model := Compile([]byte(layoutSchema))

	value := model.Element("Value")
	if value == nil {
		t.Fatal("Value not declared")
	}
	if !value.AllowsText {
		t.Error("Value should allow text")
	}
	if a := value.Attribute("select"); a == nil || a.Required {
		t.Error("select should be declared and optional")
	}

	// oneOrMore does not make its contents optional.
	section := model.Element("Section")
	if !section.AllowsChild("Value") {
		t.Error("Section should allow Value children")
	}
}

func TestCompileLastDefinitionWins(t *testing.T) {
	src := `
<grammar>
  <define name="a">
    <element name="Item">
      <attribute name="first"/>
    </element>
  </define>
  <define name="b">
    <element name="Item">
      <attribute name="second"/>
    </element>
  </define>
</grammar>`

	model := Compile([]byte(src))
	item := model.Element("Item")
	if item == nil {
		t.Fatal("Item not declared")
	}
	if item.Attribute("second") == nil {
		t.Error("later definition should win")
	}
	if item.Attribute("first") != nil {
		t.Error("earlier definition should be overwritten")
	}
}

func TestCompileDanglingRefDropped(t *testing.T) {
	src := `
<grammar>
  <define name="root.def">
    <element name="Root">
      <ref name="missing.def"/>
    </element>
  </define>
</grammar>`

	model := Compile([]byte(src))
	root := model.Element("Root")
	if root == nil {
		t.Fatal("Root not declared")
	}
	if len(root.Children) != 0 {
		t.Errorf("dangling ref should be dropped, got %v", root.Children)
	}
}

func TestCompileMalformedInput(t *testing.T) {
	// Truncated source still yields whatever was collected before the error.
	src := `
<grammar>
  <define name="a.def">
    <element name="Alpha">
      <attribute name="id"/>
    </element>
  </define>
  <define name="b.def">
    <element name="Beta"`

	model := Compile([]byte(src))
	if model == nil {
		t.Fatal("Compile returned nil")
	}
	if model.Element("Alpha") == nil {
		t.Error("complete definition before the error should survive")
	}
}

func TestCompileNilSafety(t *testing.T) {
	var model *ContentModel
	if model.Element("X") != nil {
		t.Error("nil model Element should return nil")
	}

	var decl *ElementDecl
	if decl.Attribute("x") != nil || decl.AllowsChild("x") {
		t.Error("nil decl accessors should be safe")
	}
}
