package matchtpl

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchInterpolate(t *testing.T) {
	tpl, err := Compile(`/foo${FOO/\d+/}/bar${BAR/\d+/}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"FOO", "BAR"}, tpl.Vars())

	vals, ok := tpl.Match("/foo12/bar150")
	require.True(t, ok)
	assert.Equal(t, Values{"FOO": "12", "BAR": "150"}, vals)

	out, err := tpl.Interpolate(Values{"FOO": "85", "BAR": "15"})
	require.NoError(t, err)
	assert.Equal(t, "/foo85/bar15", out)

	// Interpolation substitutes verbatim; values are not validated against
	// their placeholder patterns.
	out, err = tpl.Interpolate(Values{"FOO": "one", "BAR": "two"})
	require.NoError(t, err)
	assert.Equal(t, "/fooone/bartwo", out)
}

func TestMatchAnchoring(t *testing.T) {
	tpl, err := Compile(`/foo${FOO/\d+/}/bar${BAR/\d+/}`)
	require.NoError(t, err)

	tests := []struct {
		input string
		ok    bool
	}{
		{"/foo12/bar150", true},
		{" some substring /foo8/bar19 with extra junk ", false},
		{"/foo8/bar19 trailing", false},
		{"leading /foo8/bar19", false},
		{"/foo/bar1", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := tpl.Match(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
	}
}

func TestRoundTrip(t *testing.T) {
	tpl, err := Compile(`host=${HOST/\w+/} port=${PORT/\d+/} proto=${PROTO/tcp|udp/}`)
	require.NoError(t, err)

	want := Values{"HOST": "gateway7", "PORT": "8080", "PROTO": "udp"}
	out, err := tpl.Interpolate(want)
	require.NoError(t, err)

	got, ok := tpl.Match(out)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestIdempotentCompile(t *testing.T) {
	const src = `/foo${FOO/\d+/}/bar${BAR/\d+/}`
	a, err := Compile(src)
	require.NoError(t, err)
	b, err := Compile(src)
	require.NoError(t, err)

	assert.Equal(t, a.Vars(), b.Vars())
	for _, input := range []string{"/foo1/bar2", "nope", "/foo1/bar2 "} {
		av, aok := a.Match(input)
		bv, bok := b.Match(input)
		assert.Equal(t, aok, bok, "input %q", input)
		assert.Equal(t, av, bv, "input %q", input)
	}
	ao, err := a.Interpolate(Values{"FOO": "1", "BAR": "2"})
	require.NoError(t, err)
	bo, err := b.Interpolate(Values{"FOO": "1", "BAR": "2"})
	require.NoError(t, err)
	assert.Equal(t, ao, bo)
}

func TestSuffixCapture(t *testing.T) {
	tpl, err := Compile(`nm${NAME/\w+/}`, WithAllowSuffix())
	require.NoError(t, err)

	vals, ok := tpl.Match("nmMyName")
	require.True(t, ok)
	assert.Equal(t, Values{"NAME": "MyName", SuffixKey: ""}, vals)

	vals, ok = tpl.Match("nmMyName with values")
	require.True(t, ok)
	assert.Equal(t, Values{"NAME": "MyName", SuffixKey: " with values"}, vals)

	// Suffix data is match-only: Interpolate never consults it.
	out, err := tpl.Interpolate(Values{"NAME": "other", SuffixKey: " ignored"})
	require.NoError(t, err)
	assert.Equal(t, "nmother", out)
}

func TestEscaping(t *testing.T) {
	tpl, err := Compile(`example \${NAME/pattern/}`)
	require.NoError(t, err)

	assert.Empty(t, tpl.Vars())

	vals, ok := tpl.Match("example ${NAME/pattern/}")
	require.True(t, ok)
	assert.Empty(t, vals)

	_, ok = tpl.Match("example value")
	assert.False(t, ok)
}

func TestNestedDelimitersInPattern(t *testing.T) {
	tpl, err := Compile(`start ${BRACE/{foo}/} end`)
	require.NoError(t, err)

	assert.Equal(t, []string{"BRACE"}, tpl.Vars())

	vals, ok := tpl.Match("start {foo} end")
	require.True(t, ok)
	assert.Equal(t, Values{"BRACE": "{foo}"}, vals)
}

func TestLiteralBracesOutsidePlaceholders(t *testing.T) {
	tpl, err := Compile(`literal {braces} with ${NAME/\w+/}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"NAME"}, tpl.Vars())

	vals, ok := tpl.Match("literal {braces} with data")
	require.True(t, ok)
	assert.Equal(t, Values{"NAME": "data"}, vals)
}

func TestInterpolateMissingValue(t *testing.T) {
	tpl, err := Compile(`${A/\d+/}-${B/\d+/}`)
	require.NoError(t, err)

	_, err = tpl.Interpolate(Values{"A": "1"})
	require.ErrorIs(t, err, ErrMissingValue)
	assert.Contains(t, err.Error(), `"B"`)
}

func TestVarsIsACopy(t *testing.T) {
	tpl, err := Compile(`${A/\d+/}${B/\d+/}`)
	require.NoError(t, err)

	names := tpl.Vars()
	names[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, tpl.Vars())
}

func TestConcurrentUse(t *testing.T) {
	tpl, err := Compile(`/foo${FOO/\d+/}/bar${BAR/\d+/}`)
	require.NoError(t, err)

	errCh := make(chan error, 64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				in := fmt.Sprintf("/foo%d/bar%d", g, i)
				vals, ok := tpl.Match(in)
				if !ok {
					errCh <- fmt.Errorf("no match for %q", in)
					return
				}
				out, err := tpl.Interpolate(vals)
				if err != nil {
					errCh <- err
					return
				}
				if out != in {
					errCh <- fmt.Errorf("round trip %q != %q", out, in)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}
}
