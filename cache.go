package matchtpl

import (
	"strconv"
	"strings"
	"sync"
)

// ----------------------------- Compile cache ---------------------------------

// CompileCache memoizes compiled templates by source and options. Handing the
// same *Template back to every caller is safe because compiled templates are
// immutable.
type CompileCache struct {
	mu        sync.RWMutex
	templates map[string]*Template
	maxSize   int
}

var globalCompileCache = &CompileCache{
	templates: make(map[string]*Template),
	maxSize:   500,
}

// NewCompileCache creates a compile cache holding at most maxSize templates.
func NewCompileCache(maxSize int) *CompileCache {
	return &CompileCache{
		templates: make(map[string]*Template),
		maxSize:   maxSize,
	}
}

// CompileCached compiles a template with in-memory caching.
func CompileCached(src string, opts ...Option) (*Template, error) {
	return globalCompileCache.Compile(src, opts...)
}

func (cc *CompileCache) Compile(src string, opts ...Option) (*Template, error) {
	key := cacheKey(src, opts)

	cc.mu.RLock()
	tmpl, exists := cc.templates[key]
	cc.mu.RUnlock()

	if exists {
		return tmpl, nil
	}

	tmpl, err := Compile(src, opts...)
	if err != nil {
		return nil, err
	}

	cc.mu.Lock()
	if len(cc.templates) >= cc.maxSize {
		// Simple eviction: remove first entry
		for k := range cc.templates {
			delete(cc.templates, k)
			break
		}
	}
	cc.templates[key] = tmpl
	cc.mu.Unlock()

	return tmpl, nil
}

// Clear empties the cache.
func (cc *CompileCache) Clear() {
	cc.mu.Lock()
	cc.templates = make(map[string]*Template)
	cc.mu.Unlock()
}

// cacheKey folds the options into the key; the same source compiled with
// different delimiters, default pattern or suffix mode is a different
// template.
func cacheKey(src string, opts []Option) string {
	co := newCompileOptions(opts)
	var sb strings.Builder
	sb.Grow(len(src) + len(co.leftDelim) + len(co.rightDelim) + len(co.defaultPattern) + 8)
	sb.WriteString(co.leftDelim)
	sb.WriteByte(0)
	sb.WriteString(co.rightDelim)
	sb.WriteByte(0)
	sb.WriteString(co.defaultPattern)
	sb.WriteByte(0)
	sb.WriteString(strconv.FormatBool(co.allowSuffix))
	sb.WriteByte(0)
	sb.WriteString(src)
	return sb.String()
}
