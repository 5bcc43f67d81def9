package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaxml/relaxml/internal/cli/config"
	"github.com/relaxml/relaxml/internal/format"
)

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	var write bool
	var check bool

	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Pretty-print XML documents",
		Long: `Rewrite XML documents into the normalized layout.

Without flags the formatted text is written to stdout. With --write
files are rewritten in place; with --check files that would change are
listed and the command exits non-zero.`,
		Example: `  # Print the formatted document
  relaxml format content/layout.xml

  # Rewrite a whole tree in place
  relaxml format --write content/*.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, write, check)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite files in place")
	cmd.Flags().BoolVar(&check, "check", false, "Exit non-zero if any file would change")

	return cmd
}

func runFormat(cmd *cobra.Command, args []string, write, check bool) error {
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(cmd.Context())

	opts := format.Options{
		Indent:            cfg.Indent,
		SectionContainers: cfg.SectionContainers,
		Preserved:         cfg.Preserve,
	}

	files, err := collectXMLFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no XML files found")
	}

	changed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		formatted := format.Format(string(data), opts)
		if formatted == string(data) {
			if !check && !write {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), formatted)
			}
			continue
		}
		changed++

		switch {
		case check:
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		case write:
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			logger.Info("formatted", "file", path)
		default:
			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatted)
		}
	}

	if check && changed > 0 {
		return fmt.Errorf("%d file(s) not formatted", changed)
	}
	return nil
}
