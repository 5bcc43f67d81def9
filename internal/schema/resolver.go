package schema

import (
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/relaxml/relaxml/internal/xmltree"
)

// schemaDirective matches the per-document override processing instruction,
// <?relaxml schema="path/to/schema.rng"?>.
var schemaDirective = regexp.MustCompile(`<\?relaxml\s[^?>]*?schema="([^"]+)"`)

// ResolverOptions configure schema resolution.
type ResolverOptions struct {
	// CatalogPath is the catalog file mapping namespaces to schema URIs.
	CatalogPath string
	// Schemas maps namespaces to schema paths, consulted after the
	// catalog. A "{lang}" placeholder in a path is replaced by Language.
	Schemas map[string]string
	// Language selects among language-variant schema defaults.
	Language string
	Logger   *slog.Logger
}

// Resolver decides which compiled model applies to a document: first a
// per-document override directive, then the catalog keyed by the declared
// namespace, then the configured defaults. Resolved schema and catalog
// files are watched so edits to them invalidate the caches.
type Resolver struct {
	opts   ResolverOptions
	logger *slog.Logger
	cache  *Cache

	mu       sync.Mutex
	catalogs map[string]*Catalog
	watcher  *fsnotify.Watcher
	watched  map[string]bool
}

// NewResolver creates a resolver. The file watcher is best-effort: if it
// cannot be created, caches simply never self-invalidate.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Resolver{
		opts:     opts,
		logger:   opts.Logger,
		cache:    NewCache(),
		catalogs: make(map[string]*Catalog),
		watched:  make(map[string]bool),
	}
	if w, err := fsnotify.NewWatcher(); err == nil {
		r.watcher = w
		go r.watchLoop()
	} else {
		r.logger.Warn("schema file watcher unavailable", "error", err)
	}
	return r
}

// Close stops the file watcher.
func (r *Resolver) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

// Reset drops all cached models and catalogs, e.g. after a settings change
// that can alter which schema a namespace resolves to.
func (r *Resolver) Reset() {
	r.cache.Reset()
	r.mu.Lock()
	r.catalogs = make(map[string]*Catalog)
	r.mu.Unlock()
}

// ModelFor resolves and compiles the schema applying to the document at
// docPath with the given text. Returns nil when no schema applies or the
// schema file is unusable; the caller disables schema features in that case.
func (r *Resolver) ModelFor(docPath, text string) *ContentModel {
	if path := r.schemaPath(docPath, text); path != "" {
		r.watch(path)
		return r.cache.Load(path)
	}
	return nil
}

// schemaPath applies the resolution order and returns "" when nothing
// matches.
func (r *Resolver) schemaPath(docPath, text string) string {
	// 1. Per-document override directive.
	if m := schemaDirective.FindStringSubmatch(text); m != nil {
		return resolveAgainst(filepath.Dir(docPath), m[1])
	}

	ns := declaredNamespace(text)
	if ns == "" {
		return ""
	}

	// 2. Catalog lookup by namespace.
	if r.opts.CatalogPath != "" {
		if uri, ok := r.catalog(r.opts.CatalogPath).Lookup(ns); ok {
			return resolveAgainst(filepath.Dir(r.opts.CatalogPath), uri)
		}
	}

	// 3. Configured defaults.
	if path, ok := r.opts.Schemas[ns]; ok {
		return strings.ReplaceAll(path, "{lang}", r.opts.Language)
	}
	return ""
}

// declaredNamespace returns the xmlns value of the first opening tag.
func declaredNamespace(text string) string {
	sc := xmltree.NewScanner(text)
	for {
		tag, ok := sc.Next()
		if !ok {
			return ""
		}
		if tag.Kind == xmltree.TagOpen || tag.Kind == xmltree.TagSelfClose {
			return xmltree.AttrMap(text[tag.Start:tag.End])["xmlns"]
		}
	}
}

func resolveAgainst(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// catalog loads and memoizes the catalog at path; a missing or malformed
// catalog behaves as an empty one.
func (r *Resolver) catalog(path string) *Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.catalogs[path]; ok {
		return c
	}
	c, err := LoadCatalog(path)
	if err != nil {
		r.logger.Warn("catalog unavailable", "path", path, "error", err)
		return nil
	}
	r.catalogs[path] = c
	r.watchLocked(path)
	return c
}

func (r *Resolver) watch(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchLocked(path)
}

func (r *Resolver) watchLocked(path string) {
	if r.watcher == nil || r.watched[path] {
		return
	}
	if err := r.watcher.Add(path); err == nil {
		r.watched[path] = true
	}
}

// watchLoop invalidates cache entries when a watched schema or catalog file
// changes on disk.
func (r *Resolver) watchLoop() {
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) == 0 {
				continue
			}
			r.logger.Info("schema file changed, invalidating cache", "path", ev.Name)
			r.cache.Invalidate(ev.Name)
			r.mu.Lock()
			delete(r.catalogs, ev.Name)
			r.mu.Unlock()
		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
