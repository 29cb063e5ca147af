package query

import "strings"

// Quote returns s as a quoted field or value that lexes back to s.
func Quote(s string) string {
	return "\"" + escape(s, '"') + "\""
}

// QuoteFuzzy returns s as fuzzy text that lexes back to s.
func QuoteFuzzy(s string) string {
	return "~" + escape(s, '~') + "~"
}

func escape(s string, delim byte) string {
	if strings.IndexByte(s, delim) < 0 && strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == delim || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
