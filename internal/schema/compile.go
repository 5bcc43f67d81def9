package schema

import (
	"encoding/xml"
	"strings"
)

// construct enumerates the RelaxNG constructs the compiler understands.
// Anything else is constructUnknown and is ignored (but still tracked on the
// stack so nesting stays balanced).
type construct int

const (
	constructUnknown construct = iota
	constructGrammar
	constructStart
	constructDefine
	constructElement
	constructAttribute
	constructOptional
	constructZeroOrMore
	constructOneOrMore
	constructRef
	constructText
	constructValue
	constructDocumentation
	constructParam
)

func constructKind(local string) construct {
	switch local {
	case "grammar":
		return constructGrammar
	case "start":
		return constructStart
	case "define":
		return constructDefine
	case "element":
		return constructElement
	case "attribute":
		return constructAttribute
	case "optional":
		return constructOptional
	case "zeroOrMore":
		return constructZeroOrMore
	case "oneOrMore":
		return constructOneOrMore
	case "ref":
		return constructRef
	case "text":
		return constructText
	case "value":
		return constructValue
	case "documentation":
		return constructDocumentation
	case "param":
		return constructParam
	}
	return constructUnknown
}

// define accumulates one <define> block before resolution.
type define struct {
	ref        string // define name, the internal reference name
	element    string // element the define introduces, "" if none
	doc        string
	attrs      []*AttributeDecl
	childRefs  []string
	allowsText bool
	sawElement bool
}

// frame is one open construct on the compiler stack.
type frame struct {
	kind construct
	// capturing is set for constructs whose character data we collect.
	capturing bool
	buf       strings.Builder
	// isPattern marks a <param name="pattern"> frame.
	isPattern bool
}

type compiler struct {
	stack    []*frame
	defines  []*define
	cur      *define
	curAttr  *AttributeDecl
	optDepth int // nesting depth of optional/zeroOrMore, not oneOrMore
	model    *ContentModel
}

// Compile builds a ContentModel from RelaxNG schema source. Compilation is
// best-effort: malformed fragments and unknown constructs are skipped, and a
// partial model is returned rather than an error.
func Compile(src []byte) *ContentModel {
	c := &compiler{model: &ContentModel{Elements: make(map[string]*ElementDecl)}}

	dec := xml.NewDecoder(strings.NewReader(string(src)))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			// Parse errors are not fatal: resolve whatever was collected.
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c.open(t)
		case xml.CharData:
			c.text(t)
		case xml.EndElement:
			c.close(t)
		}
	}

	c.resolve()
	return c.model
}

func attrOf(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (c *compiler) open(el xml.StartElement) {
	f := &frame{kind: constructKind(el.Name.Local)}

	switch f.kind {
	case constructGrammar:
		c.model.Namespace = attrOf(el, "ns")

	case constructDefine:
		c.cur = &define{ref: attrOf(el, "name")}
		c.defines = append(c.defines, c.cur)

	case constructElement:
		// The first element inside a define names it; nested element tags
		// after that do not rename.
		if c.cur != nil && !c.cur.sawElement {
			c.cur.element = attrOf(el, "name")
			c.cur.sawElement = true
		}

	case constructAttribute:
		if c.cur != nil {
			// Requiredness is decided at the moment the attribute opens.
			a := &AttributeDecl{Name: attrOf(el, "name"), Required: c.optDepth == 0}
			c.cur.attrs = append(c.cur.attrs, a)
			c.curAttr = a
		}

	case constructOptional, constructZeroOrMore:
		c.optDepth++

	case constructRef:
		name := attrOf(el, "name")
		if c.cur != nil {
			c.cur.childRefs = append(c.cur.childRefs, name)
		} else if c.inStart() {
			c.model.Root = name
		}

	case constructText:
		if c.cur != nil && c.curAttr == nil {
			c.cur.allowsText = true
		}

	case constructValue, constructDocumentation:
		f.capturing = true

	case constructParam:
		if attrOf(el, "name") == "pattern" {
			f.capturing = true
			f.isPattern = true
		}
	}

	c.stack = append(c.stack, f)
}

func (c *compiler) text(data xml.CharData) {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	if top.capturing {
		top.buf.Write(data)
	}
}

func (c *compiler) close(xml.EndElement) {
	if len(c.stack) == 0 {
		return
	}
	f := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]

	switch f.kind {
	case constructOptional, constructZeroOrMore:
		if c.optDepth > 0 {
			c.optDepth--
		}

	case constructAttribute:
		c.curAttr = nil

	case constructValue:
		if c.curAttr != nil {
			v := strings.TrimSpace(f.buf.String())
			c.curAttr.Values = append(c.curAttr.Values, AttributeValue{Value: v})
		}

	case constructDocumentation:
		c.attachDoc(strings.TrimSpace(f.buf.String()))

	case constructParam:
		if f.isPattern && c.curAttr != nil {
			c.curAttr.Pattern = strings.TrimSpace(f.buf.String())
		}

	case constructDefine:
		c.cur = nil
		c.curAttr = nil
	}
}

// attachDoc binds documentation text to the most specific open context:
// the last collected value of the open attribute, else the open attribute,
// else the open define.
func (c *compiler) attachDoc(doc string) {
	if doc == "" {
		return
	}
	if c.curAttr != nil {
		if n := len(c.curAttr.Values); n > 0 {
			c.curAttr.Values[n-1].Documentation = doc
			return
		}
		c.curAttr.Documentation = doc
		return
	}
	if c.cur != nil {
		c.cur.doc = doc
	}
}

func (c *compiler) inStart() bool {
	for _, f := range c.stack {
		if f.kind == constructStart {
			return true
		}
	}
	return false
}

// resolve turns the accumulated defines into element declarations. Child
// references resolve through the define table to public element names;
// dangling references are dropped. Duplicate element names overwrite in
// document order, so the last definition wins.
func (c *compiler) resolve() {
	elementByRef := make(map[string]string, len(c.defines))
	for _, d := range c.defines {
		if d.element != "" {
			elementByRef[d.ref] = d.element
		}
	}

	for _, d := range c.defines {
		if d.element == "" {
			continue
		}
		decl := &ElementDecl{
			Name:          d.element,
			Documentation: d.doc,
			Attributes:    d.attrs,
			Children:      make(map[string]bool),
			AllowsText:    d.allowsText,
		}
		for _, ref := range d.childRefs {
			if name, ok := elementByRef[ref]; ok {
				decl.Children[name] = true
			}
		}
		c.model.Elements[d.element] = decl
	}

	// Resolve the root reference to its public element name, if known.
	if name, ok := elementByRef[c.model.Root]; ok {
		c.model.Root = name
	}
}
