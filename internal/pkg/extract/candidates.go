package extract

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// nameSimilarity is the Jaro-Winkler score above which two full names are
// treated as the same player (scraped typos, dropped letters).
const nameSimilarity = 0.95

// Candidates returns every mapping in v, parents before children, in document
// order.
func Candidates(v Value) []Mapping {
	var out []Mapping
	var walk func(Value)
	walk = func(v Value) {
		switch t := v.(type) {
		case Mapping:
			out = append(out, t)
			for _, f := range t {
				walk(f.Value)
			}
		case Sequence:
			for _, it := range t {
				walk(it)
			}
		}
	}
	walk(v)
	return out
}

// CandidateName returns the player name carried by a candidate record:
// "name", then "playerName", then "player.name".
func CandidateName(m Mapping) string {
	if n := strings.TrimSpace(m.GetString("name")); n != "" {
		return n
	}
	if n := strings.TrimSpace(m.GetString("playerName")); n != "" {
		return n
	}
	if p, ok := m.Get("player"); ok {
		if pm, ok := p.(Mapping); ok {
			return strings.TrimSpace(pm.GetString("name"))
		}
	}
	return ""
}

var nonNameChars = regexp.MustCompile(`[^a-z0-9 ]+`)

// NormalizeName lowercases a player name and strips punctuation.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(nonNameChars.ReplaceAllString(strings.ToLower(s), "")), " ")
}

// NameMatches reports whether a scraped name refers to target: equal after
// normalization, containing target's last name as a whole word, or close
// enough by Jaro-Winkler.
func NameMatches(name, target string) bool {
	n := NormalizeName(name)
	t := NormalizeName(target)
	if n == "" || t == "" {
		return false
	}
	if n == t {
		return true
	}
	parts := strings.Fields(t)
	last := parts[len(parts)-1]
	for _, w := range strings.Fields(n) {
		if w == last {
			return true
		}
	}
	return matchr.JaroWinkler(n, t, false) >= nameSimilarity
}

// OwnLine extracts category from a named record, ignoring nested records that
// carry their own name: a slate or game wrapper must not report its first
// player's line as its own.
func OwnLine(m Mapping, category string, priority Priority) (float64, bool) {
	return Extract(withoutNamedRecords(m), category, priority)
}

func withoutNamedRecords(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for i, f := range m {
		out[i] = Field{Key: f.Key, Value: pruneNamed(f.Value)}
	}
	return out
}

func pruneNamed(v Value) Value {
	switch t := v.(type) {
	case Mapping:
		if CandidateName(t) != "" {
			return Null{}
		}
		return withoutNamedRecords(t)
	case Sequence:
		out := make(Sequence, len(t))
		for i, it := range t {
			out[i] = pruneNamed(it)
		}
		return out
	}
	return v
}

// FindPlayerLine walks root for candidates named like player and returns the
// first line the candidate itself carries for category.
func FindPlayerLine(root Value, player, category string, priority Priority) (float64, bool) {
	for _, c := range Candidates(root) {
		name := CandidateName(c)
		if name == "" || !NameMatches(name, player) {
			continue
		}
		if f, ok := OwnLine(c, category, priority); ok {
			return f, true
		}
	}
	return 0, false
}
