package schema

import (
	"strings"
	"testing"
)

const sampleCatalog = `<?xml version="1.0"?>
<catalog xmlns="urn:oasis:names:tc:entity:xmlns:xml:catalog">
  <uri name="urn:example:layout" uri="schemas/layout.rng"/>
  <uri name="urn:example:report" uri="schemas/report.rng"/>
  <system systemId="http://example.com/layout" uri="schemas/layout-system.rng"/>
  <public publicId="-//EXAMPLE//Layout//EN" uri="schemas/layout-public.rng"/>
</catalog>`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"urn:example:layout", "schemas/layout.rng", true},
		{"urn:example:report", "schemas/report.rng", true},
		{"http://example.com/layout", "schemas/layout-system.rng", true},
		{"-//EXAMPLE//Layout//EN", "schemas/layout-public.rng", true},
		{"urn:example:unknown", "", false},
	}
	for _, tt := range tests {
		got, ok := c.Lookup(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCatalogSkipsIncompleteEntries(t *testing.T) {
	src := `<catalog>
  <uri name="urn:a"/>
  <uri uri="schemas/b.rng"/>
  <uri name="urn:c" uri="schemas/c.rng"/>
</catalog>`

	c, err := ParseCatalog(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Lookup("urn:c"); !ok {
		t.Error("complete entry missing")
	}
}

func TestCatalogNilSafety(t *testing.T) {
	var c *Catalog
	if _, ok := c.Lookup("x"); ok {
		t.Error("nil catalog Lookup should miss")
	}
	if c.Len() != 0 {
		t.Error("nil catalog Len should be 0")
	}
}
