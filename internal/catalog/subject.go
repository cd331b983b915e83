package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Subject identifies one recording. Numeric identifiers are stored as an
// integer so 7, "007", and "7.0" all name the same subject.
type Subject struct {
	Raw     string
	Number  int
	Numeric bool
}

// ParseSubject interprets a manifest cell as a subject identifier.
func ParseSubject(raw string) Subject {
	trimmed := strings.TrimSpace(raw)
	s := Subject{Raw: trimmed}
	if trimmed == "" {
		return s
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n >= 0 {
			s.Number = n
			s.Numeric = true
		}
		return s
	}
	// Spreadsheet exports render integer columns with gaps as floats ("7.0").
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if f >= 0 && f == math.Trunc(f) && f <= math.MaxInt32 {
			s.Number = int(f)
			s.Numeric = true
		}
	}
	return s
}

// IsZero reports whether the subject cell was blank.
func (s Subject) IsZero() bool {
	return s.Raw == "" && !s.Numeric
}

// Padded renders the subject zero-padded to width. Non-numeric identifiers
// are left-padded with '0' and never truncated.
func (s Subject) Padded(width int) string {
	if s.Numeric {
		return fmt.Sprintf("%0*d", width, s.Number)
	}
	if len(s.Raw) >= width {
		return s.Raw
	}
	return strings.Repeat("0", width-len(s.Raw)) + s.Raw
}

// String returns the identifier as written in the manifest, or its canonical
// numeric form when the manifest used a float rendering.
func (s Subject) String() string {
	if s.Numeric {
		if _, err := strconv.Atoi(s.Raw); err == nil {
			return s.Raw
		}
		return strconv.Itoa(s.Number)
	}
	return s.Raw
}
