package lsp

import (
	"github.com/relaxml/relaxml/internal/validate"
)

// publishDiagnostics validates a document and pushes the results to the
// client. Well-formedness always runs; the content model pass runs when a
// schema resolves for the document.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	findings := validate.WellFormed(doc.Content)

	model := s.modelFor(doc)
	if model != nil {
		findings = append(findings, validate.Validate(doc.Content, model, s.validateOpts)...)
	}

	diagnostics := make([]Diagnostic, 0, len(findings))
	for _, f := range findings {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    doc.RangeFor(f.Start, f.End),
			Severity: severityFor(f.Severity),
			Source:   "relaxml",
			Message:  f.Message,
		})
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})

	s.logger.Info("Published diagnostics", "uri", uri, "count", len(diagnostics), "schema", model != nil)
}

func severityFor(sev validate.Severity) DiagnosticSeverity {
	if sev == validate.SeverityError {
		return DiagnosticSeverityError
	}
	return DiagnosticSeverityWarning
}
