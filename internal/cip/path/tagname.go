package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one component of a parsed tag name: either a symbolic name
// component (from a dotted path element) or an array element index
// (from a bracketed subscript).
type Segment struct {
	Name      string
	IsElement bool
	Index     uint32
}

// ParseTagName splits a dotted, bracketed tag name such as
// "Program.Counters[3].Value" into an ordered segment list. Each
// dot-separated component becomes a symbolic segment; each "[n]"
// becomes an element segment attached after the name component it
// follows. Parsing is case-sensitive and never lowercases or trims
// interior whitespace.
func ParseTagName(tagName string) ([]Segment, error) {
	if tagName == "" {
		return nil, fmt.Errorf("path: empty tag name")
	}

	var segments []Segment
	for _, component := range strings.Split(tagName, ".") {
		if component == "" {
			return nil, fmt.Errorf("path: empty component in tag name %q", tagName)
		}
		name, indices, err := splitIndices(component)
		if err != nil {
			return nil, fmt.Errorf("path: %q: %w", tagName, err)
		}
		if name == "" {
			return nil, fmt.Errorf("path: %q: bracket with no preceding name", tagName)
		}
		segments = append(segments, Segment{Name: name})
		for _, idx := range indices {
			segments = append(segments, Segment{IsElement: true, Index: idx})
		}
	}
	return segments, nil
}

// splitIndices separates a component's base name from any trailing
// "[n]" subscripts, which may be chained for multi-dimensional arrays.
func splitIndices(component string) (string, []uint32, error) {
	open := strings.IndexByte(component, '[')
	if open == -1 {
		return component, nil, nil
	}
	name := component[:open]
	rest := component[open:]

	var indices []uint32
	for len(rest) > 0 {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected character before %q", rest)
		}
		close := strings.IndexByte(rest, ']')
		if close == -1 {
			return "", nil, fmt.Errorf("unterminated index in %q", component)
		}
		idxStr := rest[1:close]
		idx, err := strconv.ParseUint(idxStr, 10, 32)
		if err != nil {
			return "", nil, fmt.Errorf("invalid array index %q", idxStr)
		}
		indices = append(indices, uint32(idx))
		rest = rest[close+1:]
	}
	return name, indices, nil
}
