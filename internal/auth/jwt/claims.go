package jwt

import "encoding/json"

// Claims is a decoded header or payload mapping. Values decoded from a
// token carry numbers as json.Number.
type Claims map[string]any

// GetString returns a claim value as a string.
func (c Claims) GetString(name string) string {
	if s, ok := c[name].(string); ok {
		return s
	}
	return ""
}

// GetInt64 returns a claim value as an int64. The second return value
// reports whether the claim is present with an integral value.
func (c Claims) GetInt64(name string) (int64, bool) {
	v, ok := c[name]
	if !ok {
		return 0, false
	}
	return claimInt64(v)
}

// Has reports whether a claim is present.
func (c Claims) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// claimInt64 coerces a decoded JSON value to an integral int64.
func claimInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		i := int64(n)
		if float64(i) != n {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
