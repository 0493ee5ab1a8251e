package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPriority is the sportsbook order used when nothing is configured.
var DefaultPriority = Priority{"draftkings", "fanduel", "mgm", "caesars", "espnbet", "betrivers", "hardrock"}

// Priority is an ordered list of provider tokens. Keys prefixed with an earlier
// provider win over keys prefixed with a later one.
type Priority []string

// ParsePriority reads a comma-separated provider list such as
// "draftkings, FanDuel,mgm". Blank items are dropped.
func ParsePriority(s string) Priority {
	var out Priority
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalize lowercases and trims every token and drops empty ones.
func (p Priority) Normalize() Priority {
	out := make(Priority, 0, len(p))
	for _, t := range p {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// AsNumber reports the numeric reading of v: numbers as-is, strings by their
// first signed decimal substring. Everything else, including NaN and ±Inf,
// is not a number.
func AsNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case String:
		m := numberPattern.FindString(string(t))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Extract finds the line for category inside candidate.
//
// Search order on a mapping: keys prefixed "<provider>_" in priority order,
// then any key containing the category or its first three characters, then
// nested mappings (directly or inside sequences) in key order. A sequence
// candidate is searched element by element. The bool is false when nothing
// usable was found; malformed input is never an error.
func Extract(candidate Value, category string, priority Priority) (float64, bool) {
	cat := strings.ToLower(strings.TrimSpace(category))
	if cat == "" {
		return 0, false
	}
	return extract(candidate, cat, shortForm(cat), priority.Normalize())
}

func shortForm(cat string) string {
	r := []rune(cat)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

func extract(v Value, cat, short string, priority Priority) (float64, bool) {
	switch t := v.(type) {
	case Sequence:
		for _, it := range t {
			if f, ok := extract(it, cat, short, priority); ok {
				return f, true
			}
		}
		return 0, false
	case Mapping:
		return extractMapping(t, cat, short, priority)
	}
	return 0, false
}

func extractMapping(m Mapping, cat, short string, priority Priority) (float64, bool) {
	lowered := make([]string, len(m))
	for i, f := range m {
		lowered[i] = strings.ToLower(f.Key)
	}

	for _, book := range priority {
		prefix := book + "_"
		for i, f := range m {
			if strings.HasPrefix(lowered[i], prefix) && strings.Contains(lowered[i], cat) {
				if n, ok := AsNumber(f.Value); ok {
					return n, true
				}
			}
		}
	}

	for i, f := range m {
		if strings.Contains(lowered[i], cat) || strings.Contains(lowered[i], short) {
			if n, ok := AsNumber(f.Value); ok {
				return n, true
			}
		}
	}

	for _, f := range m {
		switch t := f.Value.(type) {
		case Mapping:
			if n, ok := extractMapping(t, cat, short, priority); ok {
				return n, true
			}
		case Sequence:
			for _, it := range t {
				if nested, isMap := it.(Mapping); isMap {
					if n, ok := extractMapping(nested, cat, short, priority); ok {
						return n, true
					}
				}
			}
		}
	}
	return 0, false
}
