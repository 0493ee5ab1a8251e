package extract

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsKeyOrder(t *testing.T) {
	v := mustDecode(t, `{"z":1,"a":{"y":"s","b":[true,null,2.5]},"m":-3}`)

	want := Mapping{
		{Key: "z", Value: Number(1)},
		{Key: "a", Value: Mapping{
			{Key: "y", Value: String("s")},
			{Key: "b", Value: Sequence{Bool(true), Null{}, Number(2.5)}},
		}},
		{Key: "m", Value: Number(-3)},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	v := mustDecode(t, `{"fanduel_recs":1,"draftkings_recs":2,"fanduel_recs":3}`)
	require.Equal(t, Mapping{
		{Key: "fanduel_recs", Value: Number(3)},
		{Key: "draftkings_recs", Value: Number(2)},
	}, v)
}

func TestDecode_Errors(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":1} {"b":2}`, `[1,]`, `{a:1}`} {
		_, err := Decode([]byte(in))
		require.Error(t, err, "input %q", in)
	}
}

func TestDecodeLenient_JavaScriptLiteral(t *testing.T) {
	v, err := DecodeLenient([]byte(`{name: 'Travis Kelce', draftkings_recs: '3.5', fanduel_recs: 4.5,}`))
	require.NoError(t, err)

	m, ok := v.(Mapping)
	require.True(t, ok, "got %T", v)
	require.Equal(t, "Travis Kelce", m.GetString("name"))

	got, found := Extract(v, "recs", DefaultPriority)
	require.True(t, found)
	require.Equal(t, 3.5, got)
}

func TestDecodeLenient_StrictInputUntouched(t *testing.T) {
	in := `[{"b":1,"a":2}]`
	v, err := DecodeLenient([]byte(in))
	require.NoError(t, err)
	require.Equal(t, mustDecode(t, in), v)
}

func TestFromAny(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`{"b":[1,"x",null],"a":true}`), &raw))

	want := Mapping{
		{Key: "a", Value: Bool(true)},
		{Key: "b", Value: Sequence{Number(1), String("x"), Null{}}},
	}
	if diff := cmp.Diff(want, FromAny(raw)); diff != "" {
		t.Errorf("FromAny() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, Number(3), FromAny(json.Number("3")))
}

func TestDecodeLenient_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"block comment", `{/* odds */ draftkings_pass: 245.5, name: "Josh Allen"}`, 245.5},
		{"line comment", "{\n  // props\n  'draftkings_pass': '245.5',\n}", 245.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeLenient([]byte(tt.in))
			require.NoError(t, err)
			got, ok := Extract(v, "pass", DefaultPriority)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
