package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/relaxml/relaxml/internal/cli/config"
	"github.com/relaxml/relaxml/internal/schema"
	"github.com/relaxml/relaxml/internal/validate"
)

// finding is one diagnostic in the check report.
type finding struct {
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Validate XML documents against their schemas",
		Long: `Validate XML documents for well-formedness and schema conformance.

Directories are walked recursively for .xml files. Schemas resolve the
same way the language server resolves them: a per-document directive,
then the catalog, then the configured defaults.`,
		Example: `  # Check every document under content/
  relaxml check content/

  # Machine-readable report
  relaxml check -o json content/layout.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(cmd.Context())

	files, err := collectXMLFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no XML files found")
	}

	resolver := schema.NewResolver(schema.ResolverOptions{
		CatalogPath: cfg.Catalog,
		Schemas:     cfg.Schemas,
		Language:    cfg.Language,
		Logger:      logger,
	})
	defer func() { _ = resolver.Close() }()

	opts := validate.DefaultOptions()
	opts.Preserved = cfg.Preserve

	var mu sync.Mutex
	var findings []finding

	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		path := path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			text := string(data)

			diags := validate.WellFormed(text)
			if model := resolver.ModelFor(path, text); model != nil {
				diags = append(diags, validate.Validate(text, model, opts)...)
			} else {
				logger.Debug("no schema resolved", "file", path)
			}

			if len(diags) == 0 {
				return nil
			}
			mu.Lock()
			for _, d := range diags {
				line, col := lineCol(text, d.Start)
				findings = append(findings, finding{
					File:     path,
					Line:     line,
					Column:   col,
					Severity: severityLabel(d.Severity),
					Message:  d.Message,
				})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Column < findings[j].Column
	})

	if err := renderFindings(cmd.OutOrStdout(), findings, cfg.Output); err != nil {
		return err
	}

	errCount := 0
	for _, f := range findings {
		if f.Severity == "error" {
			errCount++
		}
	}
	if errCount > 0 {
		return fmt.Errorf("%d error(s) in %d file(s)", errCount, len(files))
	}
	return nil
}

// collectXMLFiles expands the argument list, walking directories for .xml
// files.
func collectXMLFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// lineCol converts a byte offset to 1-based line and column numbers.
func lineCol(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	line := 1 + strings.Count(text[:offset], "\n")
	col := offset - strings.LastIndex(text[:offset], "\n")
	return line, col
}

func severityLabel(sev validate.Severity) string {
	if sev == validate.SeverityError {
		return "error"
	}
	return "warning"
}

func renderFindings(w io.Writer, findings []finding, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(findings)
	case "yaml":
		return yaml.NewEncoder(w).Encode(findings)
	default:
		if len(findings) == 0 {
			_, _ = fmt.Fprintln(w, "No problems found.")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"File", "Line", "Col", "Severity", "Message"})
		for _, f := range findings {
			t.AppendRow(table.Row{f.File, f.Line, f.Column, f.Severity, f.Message})
		}
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d findings)\n", len(findings))
		return nil
	}
}
