package helpers

import "strings"

// NormaliseHeaders lower-cases header names so that lookups are case-insensitive.
// Only the first value of a repeated header is kept.
func NormaliseHeaders[V string | []string](headers map[string]V) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		switch vt := any(v).(type) {
		case string:
			out[strings.ToLower(k)] = vt
		case []string:
			if len(vt) > 0 {
				out[strings.ToLower(k)] = vt[0]
			}
		}
	}
	return out
}

// Header returns the value of the named header from a normalised header map.
func Header(headers map[string]string, name string) (string, bool) {
	v, found := headers[strings.ToLower(name)]
	return v, found
}
