package lsp

import (
	"encoding/json"

	"github.com/relaxml/relaxml/internal/format"
	"github.com/relaxml/relaxml/internal/xmltree"
)

// --- Formatting ---

func (s *Server) handleFormatting(msg *JSONRPCMessage) error {
	var params DocumentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}

	formatted := format.Format(doc.Content, s.formatOpts)
	if formatted == doc.Content {
		s.sendResponse(msg.ID, []TextEdit{}, nil)
		return nil
	}

	// One edit replacing the whole document keeps the client logic trivial.
	s.sendResponse(msg.ID, []TextEdit{{
		Range:   doc.FullRange(),
		NewText: formatted,
	}}, nil)
	return nil
}

// --- Document symbols ---

func (s *Server) handleDocumentSymbol(msg *JSONRPCMessage) error {
	var params DocumentSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, []DocumentSymbol{}, nil)
		return nil
	}

	tree := xmltree.Build(doc.Content)
	symbols := make([]DocumentSymbol, 0, len(tree.Roots))
	for _, root := range tree.Roots {
		symbols = append(symbols, documentSymbol(doc, tree, root))
	}
	s.sendResponse(msg.ID, symbols, nil)
	return nil
}

// documentSymbol renders one element node, labeled with its name attribute
// when present so outlines distinguish repeated element kinds.
func documentSymbol(doc *Document, tree *xmltree.Tree, i int) DocumentSymbol {
	n := &tree.Nodes[i]

	label := n.Name
	if v := xmltree.AttrMap(doc.Content[n.Start:n.OpenEnd])["name"]; v != "" {
		label += " " + v
	}

	end := n.CloseEnd
	if end < 0 {
		end = len(doc.Content)
	}

	kind := SymbolKindField
	if len(n.Children) > 0 {
		kind = SymbolKindModule
	}

	sym := DocumentSymbol{
		Name:           label,
		Kind:           kind,
		Range:          doc.RangeFor(n.Start, end),
		SelectionRange: doc.RangeFor(n.Start+1, n.Start+1+len(n.Name)),
	}
	for _, c := range n.Children {
		sym.Children = append(sym.Children, documentSymbol(doc, tree, c))
	}
	return sym
}

// --- Linked editing ---

func (s *Server) handleLinkedEditingRange(msg *JSONRPCMessage) error {
	var params LinkedEditingRangeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	s.sendResponse(msg.ID, s.getLinkedEditingRanges(params), nil)
	return nil
}

// getLinkedEditingRanges pairs the open and close tag name spans when the
// caret sits on either, so renaming one renames both.
func (s *Server) getLinkedEditingRanges(params LinkedEditingRangeParams) *LinkedEditingRanges {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	tree := xmltree.Build(doc.Content)
	i := tree.NodeAt(offset)
	if i < 0 {
		return nil
	}

	n := &tree.Nodes[i]
	if n.SelfClose || n.CloseEnd < 0 {
		return nil
	}

	openStart := n.Start + 1
	openEnd := openStart + len(n.Name)
	closeStart := n.CloseStart + 2
	closeEnd := closeStart + len(n.Name)

	onOpen := offset >= openStart && offset <= openEnd
	onClose := offset >= closeStart && offset <= closeEnd
	if !onOpen && !onClose {
		return nil
	}

	return &LinkedEditingRanges{Ranges: []Range{
		doc.RangeFor(openStart, openEnd),
		doc.RangeFor(closeStart, closeEnd),
	}}
}
