package matchtpl

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

// ----------------------------- Data accessors --------------------------------

// Expand interpolates into w, pulling each variable's value out of data
// instead of a Values map. Data may be a map keyed by string or a struct (or
// pointer to one) whose field names match the placeholder names; struct
// lookup falls back to a case-insensitive match, and non-string values are
// converted with toStringFast.
func (t *Template) Expand(w io.Writer, data any) error {
	lookup := func(name string) (string, error) { return t.fields.valueOf(data, name) }
	for _, seg := range t.segments {
		if err := seg.emit(w, lookup); err != nil {
			return err
		}
	}
	return nil
}

// ExpandString expands into a pooled buffer and returns a string.
func (t *Template) ExpandString(data any) (string, error) {
	sb := builderPool.Get().(*strings.Builder)
	sb.Reset()
	defer builderPool.Put(sb)
	if err := t.Expand(sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ----------------------------- Field reflection cache ------------------------

type fieldCache struct {
	mu    sync.RWMutex
	cache map[fieldCacheKey]fieldInfo
}

type fieldCacheKey struct {
	typ  reflect.Type
	name string
}

type fieldInfo struct {
	index []int
	found bool
}

func newFieldCache() *fieldCache {
	return &fieldCache{cache: make(map[fieldCacheKey]fieldInfo)}
}

func (fc *fieldCache) valueOf(data any, name string) (string, error) {
	// Fast paths for the common map shapes.
	switch m := data.(type) {
	case Values:
		return m.lookup(name)
	case map[string]string:
		return Values(m).lookup(name)
	case map[string]any:
		if v, ok := m[name]; ok {
			return toStringFast(v), nil
		}
		return "", fmt.Errorf("%w: variable %q not bound", ErrMissingValue, name)
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", fmt.Errorf("%w: variable %q (nil data)", ErrMissingValue, name)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			mv := rv.MapIndex(reflect.ValueOf(name))
			if mv.IsValid() {
				return toStringFast(mv.Interface()), nil
			}
		}
	case reflect.Struct:
		fv, ok := fc.structField(rv, name)
		if ok {
			return toStringFast(fv.Interface()), nil
		}
	}
	return "", fmt.Errorf("%w: variable %q not bound", ErrMissingValue, name)
}

func (fc *fieldCache) structField(rv reflect.Value, name string) (reflect.Value, bool) {
	key := fieldCacheKey{typ: rv.Type(), name: name}

	fc.mu.RLock()
	info, ok := fc.cache[key]
	fc.mu.RUnlock()

	if !ok {
		field, found := rv.Type().FieldByName(name)
		if !found || !field.IsExported() {
			field, found = rv.Type().FieldByNameFunc(func(n string) bool {
				return strings.EqualFold(n, name)
			})
		}
		// Unexported fields cannot be read back through Interface; treat
		// them as not bound.
		if found && field.IsExported() {
			info = fieldInfo{index: field.Index, found: true}
		}
		fc.mu.Lock()
		fc.cache[key] = info
		fc.mu.Unlock()
	}

	if !info.found {
		return reflect.Value{}, false
	}
	return rv.FieldByIndex(info.index), true
}
