package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// segment is one step of a JSONPath: an object member or an array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// jsonPath is a parsed expression such as $['userId'] or $.song.title.
type jsonPath []segment

// parsePath accepts the bracket and dot notations of the JSONPaths
// descriptor format: $['a'], $["a"], $.a, $.a[0], $['a']['b'].
func parsePath(expr string) (jsonPath, error) {
	s := strings.TrimSpace(expr)
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("jsonpath %q: must start with $", expr)
	}
	s = s[1:]

	var path jsonPath
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			if end == 0 {
				return nil, fmt.Errorf("jsonpath %q: empty member name", expr)
			}
			path = append(path, segment{key: s[:end]})
			s = s[end:]

		case '[':
			closing := strings.IndexByte(s, ']')
			if closing < 0 {
				return nil, fmt.Errorf("jsonpath %q: unterminated [", expr)
			}
			inner := strings.TrimSpace(s[1:closing])
			s = s[closing+1:]

			if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
				path = append(path, segment{key: inner[1 : len(inner)-1]})
				continue
			}
			idx, err := strconv.Atoi(inner)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("jsonpath %q: invalid subscript [%s]", expr, inner)
			}
			path = append(path, segment{index: idx, isIndex: true})

		default:
			return nil, fmt.Errorf("jsonpath %q: unexpected %q", expr, s[0])
		}
	}

	if len(path) == 0 {
		return nil, fmt.Errorf("jsonpath %q: selects the whole document", expr)
	}
	return path, nil
}

// eval walks the decoded document. Missing members yield nil.
func (p jsonPath) eval(doc any) any {
	cur := doc
	for _, seg := range p {
		if seg.isIndex {
			arr, ok := cur.([]any)
			if !ok || seg.index >= len(arr) {
				return nil
			}
			cur = arr[seg.index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[seg.key]
	}
	return cur
}

type descriptor struct {
	JSONPaths []string `json:"jsonpaths"`
}

// parseDescriptor reads a JSONPaths file and checks it has one
// expression per target column.
func parseDescriptor(r io.Reader, columns int) ([]jsonPath, error) {
	var d descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("invalid JSONPaths file: %w", err)
	}
	if len(d.JSONPaths) != columns {
		return nil, fmt.Errorf("JSONPaths file has %d expressions but the table has %d columns", len(d.JSONPaths), columns)
	}

	paths := make([]jsonPath, len(d.JSONPaths))
	for i, expr := range d.JSONPaths {
		p, err := parsePath(expr)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}
