package validate

import "fmt"

// Element is the fully observed state of one element instance: its
// attributes and whether any child content (tags or non-blank text) was
// seen between its open and close tags.
type Element struct {
	Name       string
	Attrs      map[string]string
	HasContent bool
	// Start/End span the opening tag; diagnostics anchor there.
	Start int
	End   int
}

// Rule is a semantic constraint beyond the grammar, keyed to one element
// name. Check runs once the element's attribute set and content status are
// known. Attributes reports, given the attributes currently present, which
// declared attributes the rule forbids and which it makes required; the
// suggestion engine uses this to filter and annotate completions.
type Rule interface {
	Check(el Element) []Diagnostic
	Attributes(present map[string]string) (forbidden, required []string)
}

// Registry maps element names to their semantic rules. Registering a rule
// for a name replaces any previous rule for that name.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register binds a rule to an element name.
func (r *Registry) Register(name string, rule Rule) {
	r.rules[name] = rule
}

// Lookup returns the rule for an element name, or nil. Safe on nil registry.
func (r *Registry) Lookup(name string) Rule {
	if r == nil {
		return nil
	}
	return r.rules[name]
}

// DefaultRegistry returns the built-in rule set: the color-model attribute
// sets on Color and the select/content exclusivity on Value.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("Color", &ColorModelRule{
		ModelAttr: "model",
		Models: map[string][]string{
			"rgb": {"red", "green", "blue"},
			"hsv": {"hue", "saturation", "value"},
		},
	})
	r.Register("Value", &SelectContentRule{SelectAttr: "select"})
	return r
}

// ColorModelRule enforces a mutually exclusive attribute set keyed by a
// model-selecting attribute: the channels of the chosen model are required,
// the channels of every other model are forbidden.
type ColorModelRule struct {
	// ModelAttr names the attribute whose value selects the model.
	ModelAttr string
	// Models maps each model value to its channel attribute names.
	Models map[string][]string
}

func (r *ColorModelRule) Check(el Element) []Diagnostic {
	channels, ok := r.Models[el.Attrs[r.ModelAttr]]
	if !ok {
		// Unknown or absent model value; the grammar's value check covers it.
		return nil
	}
	var diags []Diagnostic
	for _, ch := range channels {
		if _, present := el.Attrs[ch]; !present {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Start:    el.Start,
				End:      el.End,
				Message:  fmt.Sprintf("%s model requires attribute %q", el.Attrs[r.ModelAttr], ch),
			})
		}
	}
	for _, forbidden := range r.otherChannels(el.Attrs[r.ModelAttr]) {
		if _, present := el.Attrs[forbidden]; present {
			diags = append(diags, Diagnostic{
				Severity: SeverityError,
				Start:    el.Start,
				End:      el.End,
				Message:  fmt.Sprintf("attribute %q does not belong to the %s model", forbidden, el.Attrs[r.ModelAttr]),
			})
		}
	}
	return diags
}

func (r *ColorModelRule) Attributes(present map[string]string) (forbidden, required []string) {
	channels, ok := r.Models[present[r.ModelAttr]]
	if !ok {
		return nil, nil
	}
	return r.otherChannels(present[r.ModelAttr]), channels
}

// otherChannels returns the channel attributes of every model except the
// chosen one, minus any channel the chosen model shares.
func (r *ColorModelRule) otherChannels(model string) []string {
	chosen := make(map[string]bool)
	for _, ch := range r.Models[model] {
		chosen[ch] = true
	}
	var out []string
	for name, channels := range r.Models {
		if name == model {
			continue
		}
		for _, ch := range channels {
			if !chosen[ch] {
				out = append(out, ch)
			}
		}
	}
	return out
}

// SelectContentRule forbids combining a select-style attribute with child
// content: the element takes its value from one source or the other.
type SelectContentRule struct {
	SelectAttr string
}

func (r *SelectContentRule) Check(el Element) []Diagnostic {
	if _, has := el.Attrs[r.SelectAttr]; has && el.HasContent {
		return []Diagnostic{{
			Severity: SeverityError,
			Start:    el.Start,
			End:      el.End,
			Message:  fmt.Sprintf("%s cannot have both a %q attribute and child content", el.Name, r.SelectAttr),
		}}
	}
	return nil
}

func (r *SelectContentRule) Attributes(map[string]string) (forbidden, required []string) {
	return nil, nil
}
