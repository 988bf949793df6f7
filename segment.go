package matchtpl

import "io"

// ----------------------------- Segments & plan -------------------------------

// lookupFunc resolves a variable name to its string value during
// interpolation.
type lookupFunc func(name string) (string, error)

// segment is one step of the compiled template: either literal text or a
// named placeholder. The segment slice doubles as the interpolation plan,
// walked in order by Interpolate and Expand.
type segment interface {
	emit(w io.Writer, lookup lookupFunc) error
}

type literalSegment struct{ text string }

func (s literalSegment) emit(w io.Writer, _ lookupFunc) error {
	_, err := io.WriteString(w, s.text)
	return err
}

// varSegment's pattern is the raw fragment from the template (or the
// configured default); it is folded into the match pattern as a single
// capturing group at compile time.
type varSegment struct {
	name    string
	pattern string
}

func (s varSegment) emit(w io.Writer, lookup lookupFunc) error {
	v, err := lookup(s.name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, v)
	return err
}
