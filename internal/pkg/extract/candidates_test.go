package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidates_PreOrder(t *testing.T) {
	v := mustDecode(t, `{"id":1,"players":[{"name":"A","stats":{"x":1}},{"name":"B"}]}`)

	cands := Candidates(v)
	require.Len(t, cands, 4)
	require.Equal(t, "A", cands[1].GetString("name"))
	require.Equal(t, Mapping{{Key: "x", Value: Number(1)}}, cands[2])
	require.Equal(t, "B", cands[3].GetString("name"))
}

func TestCandidateName(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`{"name":" Travis Kelce "}`, "Travis Kelce"},
		{`{"playerName":"Travis Kelce"}`, "Travis Kelce"},
		{`{"player":{"name":"Travis Kelce"}}`, "Travis Kelce"},
		{`{"name":42,"playerName":"Travis Kelce"}`, "Travis Kelce"},
		{`{"player":"Travis Kelce"}`, ""},
	}
	for _, tt := range tests {
		m := mustDecode(t, tt.doc).(Mapping)
		if got := CandidateName(m); got != tt.want {
			t.Errorf("CandidateName(%s) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestNameMatches(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"Travis Kelce", "travis kelce", true},
		{"T. Kelce", "Travis Kelce", true},
		{"Ja'Marr Chase", "JaMarr Chase", true},
		{"Jahmyr Gibs", "Jahmyr Gibbs", true},
		{"Travis Etienne", "Travis Kelce", false},
		{"Kelcey Smith", "Travis Kelce", false},
		{"", "Travis Kelce", false},
		{"Travis Kelce", "  ", false},
	}
	for _, tt := range tests {
		if got := NameMatches(tt.name, tt.target); got != tt.want {
			t.Errorf("NameMatches(%q, %q) = %v, want %v", tt.name, tt.target, got, tt.want)
		}
	}
}

func TestFindPlayerLine(t *testing.T) {
	doc := mustDecode(t, `{"data":[
		{"name":"Patrick Mahomes","draftkings_pass":"274.5"},
		{"name":"Travis Kelce","team":"KC","fanduel_recs":"5.5","draftkings_recs":"4.5"},
		{"playerName":"Travis Kelce","recs":9}
	]}`)

	got, ok := FindPlayerLine(doc, "Travis Kelce", "recs", DefaultPriority)
	require.True(t, ok)
	require.Equal(t, 4.5, got)

	_, ok = FindPlayerLine(doc, "Travis Kelce", "passing", DefaultPriority)
	require.False(t, ok)

	_, ok = FindPlayerLine(doc, "Josh Allen", "pass", DefaultPriority)
	require.False(t, ok)
}

func TestOwnLine(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  float64
		found bool
	}{
		{"wrapper skips named child", `{"name":"Saturday Slate","games":[{"name":"Jalen Milroe","draftkings_passing":"215.5"}]}`, 0, false},
		{"unnamed nested stats count", `{"name":"Josh Allen","stats":{"draftkings_passing":"245.5"}}`, 245.5, true},
		{"named team does not hide own line", `{"name":"Josh Allen","team":{"name":"BUF"},"passing":240.5}`, 240.5, true},
		{"own line beats nested player", `{"name":"Slate","players":[{"name":"A","passing":1}],"passing_total":2}`, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustDecode(t, tt.in).(Mapping)
			got, ok := OwnLine(m, "passing", DefaultPriority)
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFindPlayerLine_IgnoresWrapperNamedLikePlayer(t *testing.T) {
	doc := mustDecode(t, `{"name":"Allen Park Slate","games":[{"name":"Jalen Milroe","passing":"215.5"}]}`)
	_, ok := FindPlayerLine(doc, "Josh Allen", "passing", DefaultPriority)
	require.False(t, ok)
}
