package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "schemas", "layout.rng"), layoutSchema)
	writeFile(t, filepath.Join(dir, "catalog.xml"), `<catalog>
  <uri name="urn:example:layout" uri="schemas/layout.rng"/>
</catalog>`)

	return dir
}

func TestResolverDirectiveOverride(t *testing.T) {
	dir := newTestProject(t)
	r := NewResolver(ResolverOptions{})
	defer func() { _ = r.Close() }()

	doc := `<?relaxml schema="schemas/layout.rng"?>
<Layout name="main"/>`

	model := r.ModelFor(filepath.Join(dir, "doc.xml"), doc)
	require.NotNil(t, model)
	require.NotNil(t, model.Element("Layout"))
}

func TestResolverCatalogLookup(t *testing.T) {
	dir := newTestProject(t)
	r := NewResolver(ResolverOptions{
		CatalogPath: filepath.Join(dir, "catalog.xml"),
	})
	defer func() { _ = r.Close() }()

	doc := `<Layout xmlns="urn:example:layout" name="main"/>`
	model := r.ModelFor(filepath.Join(dir, "doc.xml"), doc)
	require.NotNil(t, model)
	require.Equal(t, "urn:example:layout", model.Namespace)
}

func TestResolverConfiguredDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schemas", "en", "layout.rng"), layoutSchema)

	r := NewResolver(ResolverOptions{
		Schemas: map[string]string{
			"urn:example:layout": filepath.Join(dir, "schemas", "{lang}", "layout.rng"),
		},
		Language: "en",
	})
	defer func() { _ = r.Close() }()

	doc := `<Layout xmlns="urn:example:layout" name="main"/>`
	model := r.ModelFor(filepath.Join(dir, "doc.xml"), doc)
	require.NotNil(t, model)
	require.NotNil(t, model.Element("Section"))
}

func TestResolverNoMatch(t *testing.T) {
	r := NewResolver(ResolverOptions{})
	defer func() { _ = r.Close() }()

	require.Nil(t, r.ModelFor("/tmp/doc.xml", `<Unknown xmlns="urn:nowhere"/>`))
	require.Nil(t, r.ModelFor("/tmp/doc.xml", `<NoNamespace/>`))
}

func TestResolverDirectiveBeatsCatalog(t *testing.T) {
	dir := newTestProject(t)
	writeFile(t, filepath.Join(dir, "schemas", "other.rng"), `<grammar>
  <define name="o"><element name="Other"/></define>
</grammar>`)

	r := NewResolver(ResolverOptions{
		CatalogPath: filepath.Join(dir, "catalog.xml"),
	})
	defer func() { _ = r.Close() }()

	doc := `<?relaxml schema="schemas/other.rng"?>
<Layout xmlns="urn:example:layout" name="main"/>`

	model := r.ModelFor(filepath.Join(dir, "doc.xml"), doc)
	require.NotNil(t, model)
	require.NotNil(t, model.Element("Other"))
	require.Nil(t, model.Element("Layout"))
}

func TestResolverReset(t *testing.T) {
	dir := newTestProject(t)
	schemaPath := filepath.Join(dir, "schemas", "layout.rng")

	r := NewResolver(ResolverOptions{})
	defer func() { _ = r.Close() }()

	doc := `<?relaxml schema="schemas/layout.rng"?>
<Layout name="main"/>`
	docPath := filepath.Join(dir, "doc.xml")

	require.NotNil(t, r.ModelFor(docPath, doc))

	// Swap the schema on disk; Reset must drop the cached compilation.
	writeFile(t, schemaPath, `<grammar>
  <define name="n"><element name="New"/></define>
</grammar>`)
	r.Reset()

	model := r.ModelFor(docPath, doc)
	require.NotNil(t, model)
	require.NotNil(t, model.Element("New"))
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.rng")
	writeFile(t, path, layoutSchema)

	c := NewCache()
	m1 := c.Load(path)
	require.NotNil(t, m1)
	// Same pointer while cached.
	require.Same(t, m1, c.Load(path))

	c.Invalidate(path)
	m2 := c.Load(path)
	require.NotNil(t, m2)
	require.NotSame(t, m1, m2)

	// Unreadable file yields nil without caching the failure.
	require.Nil(t, c.Load(filepath.Join(dir, "missing.rng")))
}
