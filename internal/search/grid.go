package search

import (
	"fmt"
	"sort"

	"github.com/drakos74/scalearn/internal/ml"
)

// Grid is a hyperparameter grid : one list of values per parameter name.
type Grid map[string][]interface{}

// Size returns the number of candidates the grid enumerates.
func (g Grid) Size() int {
	size := 1
	for _, vv := range g {
		size *= len(vv)
	}
	return size
}

// Candidates enumerates the cartesian product of the grid values.
// The enumeration is deterministic : parameter names are visited in sorted order.
// An empty grid yields a single candidate with empty params.
func (g Grid) Candidates() ([]ml.Params, error) {
	keys := make([]string, 0, len(g))
	for k, vv := range g {
		if len(vv) == 0 {
			return nil, fmt.Errorf("no values for parameter '%s'", k)
		}
		for _, v := range vv {
			switch v.(type) {
			case int, int64, float64, string:
			default:
				return nil, fmt.Errorf("unsupported value type %T for parameter '%s'", v, k)
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidates := []ml.Params{{}}
	for _, k := range keys {
		next := make([]ml.Params, 0, len(candidates)*len(g[k]))
		for _, c := range candidates {
			for _, v := range g[k] {
				p := c.Copy()
				p[k] = v
				next = append(next, p)
			}
		}
		candidates = next
	}
	return candidates, nil
}
