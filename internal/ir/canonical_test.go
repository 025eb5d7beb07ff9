package ir

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"nil", nil, "null"},
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Number(42), "42"},
		{"negative int", Number(-100), "-100"},
		{"zero", Number(0), "0"},
		{"float", Number(1.1), "1.1"},
		{"large float", Number(1e21), "1e+21"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty sequence", Sequence{}, "[]"},
		{"empty mapping", Mapping{}, "{}"},
		{"sequence", NewSequence(Number(1), Null{}, String("x")), `[1,null,"x"]`},
		{"simple mapping", NewMapping(O("a", Number(1))), `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	m := NewMapping(
		O("zebra", Number(1)),
		O("alpha", NewMapping(O("b", Number(1)), O("a", Number(2)))),
		O("beta", Number(3)),
	)

	result, err := MarshalCanonical(m)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301" // e + combining acute
	result, err := MarshalCanonical(String(decomposed))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	literal, err := MarshalCanonical(String(`x\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"x\\u2028"`, string(literal))
}

func TestMarshalCanonicalRejectsNaN(t *testing.T) {
	_, err := MarshalCanonical(Number(math.NaN()))
	require.Error(t, err)

	_, err = MarshalCanonical(NewMapping(O("inf", Number(math.Inf(1)))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `["inf"]`)
}

func TestHashIgnoresMappingOrder(t *testing.T) {
	a := NewMapping(O("x", Number(1)), O("y", String("z")))
	b := Mapping{"y": String("z"), "x": Number(1)}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.True(t, strings.HasPrefix(ha, "sha256:"))
	assert.Len(t, ha, len("sha256:")+64)

	hc, err := Hash(NewMapping(O("x", Number(2)), O("y", String("z"))))
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func ExampleMarshalCanonical() {
	v := NewMapping(O("size", Number(1.1)), O("name", String("widget")))
	out, err := MarshalCanonical(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(out))
	// Output: {"name":"widget","size":1.1}
}
