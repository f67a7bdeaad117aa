package ml

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Params is a set of hyperparameters for an estimator.
// Values are plain json types so that params survive storage and transport.
type Params map[string]interface{}

// GetInt returns the named parameter as int, falling back to the given default.
func (p Params) GetInt(key string, def int) int {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// GetFloat64 returns the named parameter as float64, falling back to the given default.
func (p Params) GetFloat64(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

// GetString returns the named parameter as string, falling back to the given default.
func (p Params) GetString(key string, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Copy returns a shallow copy of the params.
func (p Params) Copy() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// ID returns a stable human readable identifier for the params.
func (p Params) ID() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(parts, ",")
}

// Hash returns a stable hash of the params for storage keys.
func (p Params) Hash() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.ID()))
	return int64(h.Sum64())
}

// Encode serializes the params for transport.
func (p Params) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("could not encode params: %w", err)
	}
	return string(b), nil
}

// DecodeParams parses encoded params.
func DecodeParams(enc string) (Params, error) {
	var p Params
	if err := json.Unmarshal([]byte(enc), &p); err != nil {
		return nil, fmt.Errorf("could not decode params: %w", err)
	}
	return p, nil
}
