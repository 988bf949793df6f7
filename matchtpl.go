// Package matchtpl compiles templates of literal text and named,
// pattern-constrained placeholders (e.g. `/foo${FOO/\d+/}`) into a reusable
// form supporting both directions: extracting placeholder values out of a
// string that fits the template, and interpolating values back into the
// template's literal skeleton.
package matchtpl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ----------------------------- Public API -----------------------------------

// Values holds variable bindings, keyed by placeholder name.
type Values map[string]string

// SuffixKey is the reserved name the trailing remainder is bound to by Match
// when suffix capture is enabled. It may not be declared as a placeholder.
const SuffixKey = "_suffix"

// Compile-time and lookup failures wrap these sentinels.
var (
	ErrUnterminated   = errors.New("unterminated placeholder")
	ErrBadPlaceholder = errors.New("malformed placeholder")
	ErrDuplicateName  = errors.New("duplicate variable name")
	ErrReservedName   = errors.New("reserved variable name")
	ErrBadPattern     = errors.New("invalid pattern")
	ErrMissingValue   = errors.New("missing value")
)

// Template is the immutable compiled form of a template string. It carries no
// mutable state; Match, Interpolate, Expand and Vars may be called
// concurrently from any number of goroutines.
type Template struct {
	segments    []segment
	varNames    []string
	allowSuffix bool
	re          *regexp.Regexp
	fields      *fieldCache
}

type compileOptions struct {
	leftDelim      string
	rightDelim     string
	defaultPattern string
	allowSuffix    bool
}

type Option func(*compileOptions)

// WithDelims allows setting custom placeholder delimiters. The defaults are
// "${" and "}".
func WithDelims(left, right string) Option {
	return func(co *compileOptions) {
		co.leftDelim = left
		co.rightDelim = right
	}
}

// WithDefaultPattern sets the pattern fragment used by placeholders that
// declare no pattern of their own.
func WithDefaultPattern(pattern string) Option {
	return func(co *compileOptions) { co.defaultPattern = pattern }
}

// WithAllowSuffix relaxes end-of-input anchoring: Match accepts trailing text
// after the template and binds it under SuffixKey.
func WithAllowSuffix() Option {
	return func(co *compileOptions) { co.allowSuffix = true }
}

func newCompileOptions(opts []Option) compileOptions {
	co := compileOptions{
		leftDelim:  "${",
		rightDelim: "}",
	}
	for _, o := range opts {
		o(&co)
	}
	return co
}

// Compile parses a template string into its matching and interpolation form.
// The template is parsed exactly once; the returned Template re-parses
// nothing on later calls.
func Compile(src string, opts ...Option) (*Template, error) {
	co := newCompileOptions(opts)
	p := parser{
		src:            src,
		leftDelim:      co.leftDelim,
		rightDelim:     co.rightDelim,
		defaultPattern: co.defaultPattern,
	}
	segments, varNames, err := p.parse()
	if err != nil {
		return nil, err
	}

	var pat strings.Builder
	pat.Grow(len(src) + 16)
	pat.WriteString(`\A`)
	for _, seg := range segments {
		switch s := seg.(type) {
		case literalSegment:
			pat.WriteString(regexp.QuoteMeta(s.text))
		case varSegment:
			pat.WriteByte('(')
			pat.WriteString(s.pattern)
			pat.WriteByte(')')
		}
	}
	groups := len(varNames)
	if co.allowSuffix {
		pat.WriteString(`((?s).*?)`)
		groups++
	}
	pat.WriteString(`\z`)

	re, err := regexp.Compile(pat.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	if re.NumSubexp() != groups {
		return nil, fmt.Errorf("%w: placeholder patterns must not contain capturing groups", ErrBadPattern)
	}

	return &Template{
		segments:    segments,
		varNames:    varNames,
		allowSuffix: co.allowSuffix,
		re:          re,
		fields:      newFieldCache(),
	}, nil
}

// Match applies the template to input, anchored at the start and, unless
// suffix capture is enabled, at the end. On success it returns each
// placeholder's matched text keyed by name, plus the SuffixKey binding when
// suffix capture is on. A mismatch returns (nil, false); it is never an
// error.
func (t *Template) Match(input string) (Values, bool) {
	m := t.re.FindStringSubmatch(input)
	if m == nil {
		return nil, false
	}
	vals := make(Values, len(t.varNames)+1)
	for i, name := range t.varNames {
		vals[name] = m[i+1]
	}
	if t.allowSuffix {
		vals[SuffixKey] = m[len(t.varNames)+1]
	}
	return vals, true
}

// Interpolate assembles the template's literal skeleton around the given
// values. Every declared variable must be present in values or an error
// wrapping ErrMissingValue is returned; values are substituted verbatim, with
// no check that they would satisfy their placeholder's pattern. A SuffixKey
// entry, if present, is ignored.
func (t *Template) Interpolate(values Values) (string, error) {
	sb := builderPool.Get().(*strings.Builder)
	sb.Reset()
	defer builderPool.Put(sb)
	for _, seg := range t.segments {
		if err := seg.emit(sb, values.lookup); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Vars returns the declared placeholder names in order of first appearance.
func (t *Template) Vars() []string {
	names := make([]string, len(t.varNames))
	copy(names, t.varNames)
	return names
}

func (v Values) lookup(name string) (string, error) {
	s, ok := v[name]
	if !ok {
		return "", fmt.Errorf("%w: variable %q not bound", ErrMissingValue, name)
	}
	return s, nil
}
