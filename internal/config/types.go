// Package config holds the project configuration shared by the CLI and the
// LSP server.
package config

// ProjectConfig is the contents of relaxml.yaml.
type ProjectConfig struct {
	// Catalog is the path to the catalog file mapping namespaces to
	// schema URIs, relative to the project root unless absolute.
	Catalog string `koanf:"catalog"`
	// Schemas maps namespaces to schema paths, consulted when the catalog
	// has no entry. Paths may contain a "{lang}" placeholder.
	Schemas map[string]string `koanf:"schemas"`
	// Language substitutes the "{lang}" placeholder in schema paths.
	Language string `koanf:"language"`
	// Preserve lists element names whose subtrees are verbatim content.
	Preserve []string `koanf:"preserve"`
	// SectionContainers lists element names whose children the formatter
	// separates with blank lines.
	SectionContainers []string `koanf:"section_containers"`
	// Indent is the formatter's indentation unit.
	Indent string `koanf:"indent"`
}

// Default configuration values.
const (
	DefaultLanguage = "en"
	DefaultIndent   = "  "
)

// DefaultPreserve and DefaultSectionContainers are the stock element sets.
var (
	DefaultPreserve          = []string{"Expression"}
	DefaultSectionContainers = []string{"Section"}
)

// ApplyDefaults fills unset fields with their defaults.
func (c *ProjectConfig) ApplyDefaults() {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Indent == "" {
		c.Indent = DefaultIndent
	}
	if c.Preserve == nil {
		c.Preserve = DefaultPreserve
	}
	if c.SectionContainers == nil {
		c.SectionContainers = DefaultSectionContainers
	}
}
