// Package parser extracts rich-text HTML from uploaded manuscript
// files. A registry routes files by extension to format-specific
// converters; everything a converter emits is sanitized HTML safe for
// storage.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"inkwell/internal/domain"
)

// Converter extracts HTML from one source format.
//
// Implementations are stateless and safe for concurrent use.
type Converter interface {
	// Convert transforms raw file bytes into sanitized HTML.
	Convert(ctx context.Context, input []byte) (html string, err error)

	// SupportedExtensions returns file extensions this converter handles,
	// with the leading dot (e.g. [".html", ".htm"]).
	SupportedExtensions() []string

	// Format returns the source format tag recorded on the import.
	Format() string
}

// Registry manages converters and routes files by extension.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter // key: file extension (e.g. ".html")
}

// NewRegistry creates a registry with the standard converters
// pre-registered.
func NewRegistry() *Registry {
	registry := &Registry{
		converters: make(map[string]Converter),
	}

	registry.Register(NewTextConverter())
	registry.Register(NewHTMLConverter())
	registry.Register(NewPDFConverter())
	registry.Register(NewDocxConverter())
	registry.Register(NewODTConverter())
	registry.Register(NewRTFConverter())

	return registry
}

// Register adds a converter and associates it with its supported
// extensions. Extensions are normalized to lowercase with a leading
// dot.
func (r *Registry) Register(converter Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range converter.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = converter
	}
}

// GetConverter retrieves a converter for the given file extension, or
// nil when none is registered. Lookup is case-insensitive.
func (r *Registry) GetConverter(fileExt string) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(fileExt)]
}

// Convert selects a converter by the filename's extension and runs it,
// returning the HTML and the source format tag. Unregistered extensions
// fall through to the plain-text converter; upload whitelisting happens
// before files reach the registry.
func (r *Registry) Convert(ctx context.Context, filename string, content []byte) (string, string, error) {
	ext := filepath.Ext(filename)
	converter := r.GetConverter(ext)
	if converter == nil {
		converter = r.GetConverter(".txt")
		if converter == nil {
			return "", "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
		}
	}

	html, err := converter.Convert(ctx, content)
	if err != nil {
		return "", "", err
	}
	return html, converter.Format(), nil
}

// SupportedExtensions returns all registered file extensions.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	return exts
}
