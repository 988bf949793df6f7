package matchtpl

import (
	"fmt"
	"strconv"
	"strings"
)

// ----------------------------- Parser ---------------------------------------

type parser struct {
	src            string
	i              int
	leftDelim      string
	rightDelim     string
	defaultPattern string
	positional     int
}

func (p *parser) eof() bool { return p.i >= len(p.src) }

// parse walks the template in a single left-to-right scan, producing the
// ordered segment list and the declared variable names.
func (p *parser) parse() ([]segment, []string, error) {
	segments := make([]segment, 0, 8)
	varNames := make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	for !p.eof() {
		if strings.HasPrefix(p.src[p.i:], p.leftDelim) {
			name, pattern, err := p.parsePlaceholder()
			if err != nil {
				return nil, nil, err
			}
			if name == SuffixKey {
				return nil, nil, fmt.Errorf("%w: %q is bound by suffix capture", ErrReservedName, name)
			}
			if seen[name] {
				return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
			}
			seen[name] = true
			varNames = append(varNames, name)
			segments = append(segments, varSegment{name: name, pattern: pattern})
			continue
		}
		segments = append(segments, literalSegment{text: p.scanLiteral()})
	}
	return segments, varNames, nil
}

// scanLiteral consumes text up to the next unescaped open delimiter or end of
// input, un-escaping `\X` to `X` as it goes. The cursor does not start on an
// open delimiter, so at least one byte is always consumed.
func (p *parser) scanLiteral() string {
	var sb strings.Builder
	j := p.i
	for j < len(p.src) {
		if j > p.i && strings.HasPrefix(p.src[j:], p.leftDelim) {
			break
		}
		c := p.src[j]
		if c == '\\' && j+1 < len(p.src) {
			sb.WriteByte(p.src[j+1])
			j += 2
			continue
		}
		sb.WriteByte(c)
		j++
	}
	p.i = j
	return sb.String()
}

// parsePlaceholder consumes a balanced OPEN..CLOSE region starting at the
// cursor and parses its body. Anonymous placeholders are assigned a
// sequential 1-based positional name.
func (p *parser) parsePlaceholder() (name, pattern string, err error) {
	body, err := p.extractBracketed()
	if err != nil {
		return "", "", err
	}
	j := 0
	for j < len(body) && isWordByte(body[j]) {
		j++
	}
	name = body[:j]
	rest := body[j:]
	switch {
	case rest == "":
		pattern = p.defaultPattern
	case len(rest) >= 2 && rest[0] == '/' && rest[len(rest)-1] == '/':
		pattern = rest[1 : len(rest)-1]
		if pattern == "" {
			pattern = p.defaultPattern
		}
	default:
		return "", "", fmt.Errorf("%w: %q (want name or name/pattern/)", ErrBadPlaceholder, body)
	}
	if name == "" {
		p.positional++
		name = strconv.Itoa(p.positional)
	}
	return name, pattern, nil
}

// extractBracketed consumes OPEN through its matching CLOSE, balance-counting
// the delimiter brace characters so a pattern fragment may itself contain
// them (e.g. `${BRACE/{foo}/}`). Escaped bytes do not affect the balance.
func (p *parser) extractBracketed() (string, error) {
	start := p.i
	openB := p.leftDelim[len(p.leftDelim)-1]
	closeB := p.rightDelim[0]
	j := p.i + len(p.leftDelim)
	depth := 1
	for j < len(p.src) {
		c := p.src[j]
		switch {
		case c == '\\' && j+1 < len(p.src):
			j++
		case c == openB && openB != closeB:
			depth++
		case c == closeB:
			if depth == 1 && !strings.HasPrefix(p.src[j:], p.rightDelim) {
				// Stray close byte, not a full close token; keep scanning.
				break
			}
			depth--
			if depth == 0 {
				body := p.src[p.i+len(p.leftDelim) : j]
				p.i = j + len(p.rightDelim)
				return body, nil
			}
		}
		j++
	}
	return "", fmt.Errorf("%w at offset %d", ErrUnterminated, start)
}
