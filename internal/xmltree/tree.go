package xmltree

// Node is one element in the reconstructed tree. Nodes live in the Tree's
// arena and refer to each other by index, so the parent relation is
// non-owning and the whole tree is freed as one allocation graph.
type Node struct {
	Name string
	// Start is the offset of the opening tag's '<'.
	Start int
	// OpenEnd is the offset just past the opening tag's '>'.
	OpenEnd int
	// CloseStart/CloseEnd span the closing tag. For self-closing elements
	// CloseStart == Start and CloseEnd == OpenEnd. CloseEnd is -1 for an
	// element whose closing tag was never found.
	CloseStart int
	CloseEnd   int
	SelfClose  bool
	Parent     int // arena index, -1 for roots
	Children   []int
}

// Closed reports whether the element was terminated (self-closing counts).
func (n *Node) Closed() bool { return n.CloseEnd >= 0 }

// Tree is the tolerant structural analysis of one document.
type Tree struct {
	Nodes []Node
	Roots []int
	// textLen bounds offset lookups for unclosed elements.
	textLen int
}

// Build reconstructs the element tree from document text. Input that is not
// well-formed still yields a tree: a closing tag matches the nearest open
// frame with the same name (not necessarily the top of the stack), and
// elements never closed are left with CloseEnd == -1.
func Build(text string) *Tree {
	t := &Tree{textLen: len(text)}
	var stack []int // arena indices of currently open elements

	sc := NewScanner(text)
	for {
		tag, ok := sc.Next()
		if !ok {
			break
		}
		switch tag.Kind {
		case TagOpen, TagSelfClose:
			idx := len(t.Nodes)
			n := Node{
				Name:       tag.Name,
				Start:      tag.Start,
				OpenEnd:    tag.End,
				CloseStart: tag.Start,
				CloseEnd:   -1,
				Parent:     -1,
			}
			if tag.Kind == TagSelfClose {
				n.SelfClose = true
				n.CloseEnd = tag.End
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.Parent = parent
				t.Nodes = append(t.Nodes, n)
				t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
			} else {
				t.Nodes = append(t.Nodes, n)
				t.Roots = append(t.Roots, idx)
			}
			if tag.Kind == TagOpen {
				stack = append(stack, idx)
			}

		case TagClose:
			// Nearest matching name on the stack, searching from the top.
			// Frames above the match stay in the tree as unclosed children.
			for i := len(stack) - 1; i >= 0; i-- {
				if t.Nodes[stack[i]].Name == tag.Name {
					t.Nodes[stack[i]].CloseStart = tag.Start
					t.Nodes[stack[i]].CloseEnd = tag.End
					stack = stack[:i]
					break
				}
			}
		}
	}
	return t
}

// Unclosed returns the arena indices of elements never terminated, in
// document order.
func (t *Tree) Unclosed() []int {
	var out []int
	for i := range t.Nodes {
		if !t.Nodes[i].Closed() {
			out = append(out, i)
		}
	}
	return out
}

// rangeEnd is the effective end offset of a node for containment checks.
// Unclosed elements extend to the end of the document.
func (t *Tree) rangeEnd(i int) int {
	if t.Nodes[i].CloseEnd >= 0 {
		return t.Nodes[i].CloseEnd
	}
	return t.textLen
}

// NodeAt returns the arena index of the innermost element whose span
// contains offset, or -1. Children are consulted before the node itself.
func (t *Tree) NodeAt(offset int) int {
	for _, root := range t.Roots {
		if found := t.nodeAt(root, offset); found >= 0 {
			return found
		}
	}
	return -1
}

func (t *Tree) nodeAt(i, offset int) int {
	if offset < t.Nodes[i].Start || offset > t.rangeEnd(i) {
		return -1
	}
	for _, c := range t.Nodes[i].Children {
		if found := t.nodeAt(c, offset); found >= 0 {
			return found
		}
	}
	return i
}

// siblings returns the child list the node belongs to.
func (t *Tree) siblings(i int) []int {
	if p := t.Nodes[i].Parent; p >= 0 {
		return t.Nodes[p].Children
	}
	return t.Roots
}

// NextSibling returns the following sibling's index, or -1.
func (t *Tree) NextSibling(i int) int {
	sibs := t.siblings(i)
	for pos, s := range sibs {
		if s == i && pos+1 < len(sibs) {
			return sibs[pos+1]
		}
	}
	return -1
}

// PrevSibling returns the preceding sibling's index, or -1.
func (t *Tree) PrevSibling(i int) int {
	sibs := t.siblings(i)
	for pos, s := range sibs {
		if s == i && pos > 0 {
			return sibs[pos-1]
		}
	}
	return -1
}

// NextVisible steps pre-order: first child, else next sibling, else the
// nearest ancestor's next sibling. Stays put at the last node.
func (t *Tree) NextVisible(i int) int {
	if len(t.Nodes[i].Children) > 0 {
		return t.Nodes[i].Children[0]
	}
	for cur := i; cur >= 0; cur = t.Nodes[cur].Parent {
		if next := t.NextSibling(cur); next >= 0 {
			return next
		}
	}
	return i
}

// Ancestors returns the element names enclosing the node, outermost first.
func (t *Tree) Ancestors(i int) []string {
	var rev []string
	for p := t.Nodes[i].Parent; p >= 0; p = t.Nodes[p].Parent {
		rev = append(rev, t.Nodes[p].Name)
	}
	out := make([]string, len(rev))
	for k, name := range rev {
		out[len(rev)-1-k] = name
	}
	return out
}
