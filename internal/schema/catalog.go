package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Catalog entry selectors, compiled once.
var (
	xpURI    = xpath.MustCompile("//uri")
	xpSystem = xpath.MustCompile("//system")
	xpPublic = xpath.MustCompile("//public")
)

// Catalog maps namespace names and identifiers to schema URIs, read from a
// catalog document's uri/system/public entries.
type Catalog struct {
	entries map[string]string
}

// ParseCatalog reads a catalog document. Entries missing either side of the
// name/URI pair are skipped.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{entries: make(map[string]string)}
	collect := func(sel *xpath.Expr, nameAttr string) {
		for _, n := range xmlquery.QuerySelectorAll(doc, sel) {
			name := n.SelectAttr(nameAttr)
			uri := n.SelectAttr("uri")
			if name != "" && uri != "" {
				c.entries[name] = uri
			}
		}
	}
	collect(xpURI, "name")
	collect(xpSystem, "systemId")
	collect(xpPublic, "publicId")
	return c, nil
}

// LoadCatalog reads and parses the catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// Lookup resolves a name to its schema URI.
func (c *Catalog) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	uri, ok := c.entries[name]
	return uri, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
