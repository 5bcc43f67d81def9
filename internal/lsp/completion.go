package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/relaxml/relaxml/internal/complete"
)

func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	items := s.getCompletions(params)
	s.sendResponse(msg.ID, &CompletionList{Items: items}, nil)
	return nil
}

// getCompletions runs the suggestion engine at the caret and maps its items
// onto the protocol.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	model := s.modelFor(doc)

	suggestions := complete.Completions(doc.Content, offset, model, s.completeOpts)

	items := make([]CompletionItem, 0, len(suggestions))
	for i, sg := range suggestions {
		item := CompletionItem{
			Label:         sg.Label,
			Kind:          completionKindFor(sg.Kind),
			Detail:        sg.Detail,
			Documentation: sg.Documentation,
			// Keep the engine's ordering (required attributes first).
			SortText: fmt.Sprintf("%03d", i),
		}
		if sg.Snippet != "" {
			item.InsertText = sg.Snippet
			item.InsertTextFormat = InsertTextFormatSnippet
			item.FilterText = sg.Label
		}
		items = append(items, item)
	}
	return items
}

func completionKindFor(kind complete.ItemKind) CompletionItemKind {
	switch kind {
	case complete.KindElement:
		return CompletionItemKindClass
	case complete.KindAttribute:
		return CompletionItemKindProperty
	case complete.KindValue:
		return CompletionItemKindEnum
	case complete.KindSnippet:
		return CompletionItemKindSnippet
	}
	return CompletionItemKindText
}

func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: -32602, Message: err.Error()})
		return err
	}

	s.sendResponse(msg.ID, s.getHover(params), nil)
	return nil
}

// getHover returns markdown documentation for the symbol under the caret,
// or nil when there is nothing to show.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	md := complete.Hover(doc.Content, offset, s.modelFor(doc))
	if md == "" {
		return nil
	}

	return &Hover{
		Contents: MarkupContent{
			Kind:  MarkupKindMarkdown,
			Value: md,
		},
	}
}
