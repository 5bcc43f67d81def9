// Package schema compiles RelaxNG vocabulary descriptions into the content
// model consumed by validation, completion and hover.
package schema

// ContentModel is the compiled vocabulary of a schema: every element the
// schema declares, keyed by name. Later definitions of the same element name
// overwrite earlier ones.
type ContentModel struct {
	// Namespace declared on the grammar element, if any.
	Namespace string
	// Root is the element referenced directly under <start>. Informational
	// only; root placement is not enforced during validation.
	Root string
	// Elements maps element name to its declaration.
	Elements map[string]*ElementDecl
}

// Element returns the declaration for name, or nil if the model does not
// declare it. Safe to call on a nil model.
func (m *ContentModel) Element(name string) *ElementDecl {
	if m == nil {
		return nil
	}
	return m.Elements[name]
}

// ElementDecl describes one element of the vocabulary.
type ElementDecl struct {
	Name          string
	Documentation string
	// Attributes in schema declaration order.
	Attributes []*AttributeDecl
	// Children is the set of element names allowed as direct children.
	Children map[string]bool
	// AllowsText reports whether the element may contain character data.
	AllowsText bool
}

// Attribute returns the declaration for the named attribute, or nil.
func (e *ElementDecl) Attribute(name string) *AttributeDecl {
	if e == nil {
		return nil
	}
	for _, a := range e.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AllowsChild reports whether name is an allowed direct child.
func (e *ElementDecl) AllowsChild(name string) bool {
	return e != nil && e.Children[name]
}

// AttributeDecl describes one attribute of an element.
type AttributeDecl struct {
	Name          string
	Documentation string
	// Required is false when the attribute was declared inside an optional
	// or zeroOrMore construct.
	Required bool
	// Values is the list of literal allowed values, in schema order.
	// Empty means any value is allowed.
	Values []AttributeValue
	// Pattern is a regular expression the whole value must match, taken
	// from a <param name="pattern"> annotation. Empty means no pattern.
	Pattern string
}

// HasValue reports whether v is among the declared allowed values.
func (a *AttributeDecl) HasValue(v string) bool {
	for _, av := range a.Values {
		if av.Value == v {
			return true
		}
	}
	return false
}

// AttributeValue is one allowed literal value with optional documentation.
type AttributeValue struct {
	Value         string
	Documentation string
}
