package store

import "time"

// GetString returns the string at key, or "".
func GetString(fm map[string]any, key string) string {
	s, _ := fm[key].(string)
	return s
}

// GetInt returns the integer at key. YAML and JSON decoders disagree on
// numeric types, so all common ones are accepted.
func GetInt(fm map[string]any, key string) int {
	switch n := fm[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetTime returns the time at key, accepting time.Time or RFC 3339 strings.
func GetTime(fm map[string]any, key string) time.Time {
	switch t := fm[key].(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// FormatTime formats t for frontmatter storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
