package models

// Record is a loosely structured input describing one observed event
// (an email, a transaction, a post...). Producers differ wildly in what
// they send, so every accessor substitutes a default instead of failing.
type Record map[string]any

// String returns the value under key as a string, or def when absent or
// of the wrong type.
func (r Record) String(key, def string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Float returns the value under key as a float64. JSON numbers decode as
// float64, but typed producers may send ints, so both are accepted.
func (r Record) Float(key string, def float64) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	}
	return def
}

// Int returns the value under key as an int
func (r Record) Int(key string, def int) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the value under key as a bool
func (r Record) Bool(key string, def bool) bool {
	if v, ok := r[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Map returns the value under key as a nested Record; an empty Record is
// returned when the key is absent so callers can chain accessors.
func (r Record) Map(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	}
	return Record{}
}

// Strings returns the value under key as a string slice. JSON arrays
// decode as []any, so both representations are handled.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
