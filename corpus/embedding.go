package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseEmbedding parses a bracket-delimited, whitespace-separated vector
// string such as "[0.1 0.2 0.3]" into single-precision floats.
func ParseEmbedding(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, fmt.Errorf("embedding %q is not bracket-delimited", truncateForError(s))
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")

	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return nil, fmt.Errorf("embedding %q has no values", truncateForError(s))
	}

	vec := make([]float32, 0, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, fmt.Errorf("embedding value %d (%q): %w", i, field, err)
		}
		vec = append(vec, float32(v))
	}
	return vec, nil
}

// FormatEmbedding serializes a vector back into the corpus source format.
func FormatEmbedding(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func truncateForError(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}
