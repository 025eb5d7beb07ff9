package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confql/internal/document"
	"github.com/roach88/confql/internal/ir"
)

const minimalScenario = `
name: minimal
description: "one query"
schema: |
  types: Query: n: "Int!"
files:
  n.yml: "1"
queries:
  - address: n
    expect: 1
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, []string{"n.yml"}, s.FileNames())
	require.Len(t, s.Queries, 1)
	assert.True(t, s.Queries[0].HasExpect())

	want, err := s.Queries[0].ExpectedValue()
	require.NoError(t, err)
	assert.Equal(t, ir.Number(1), want)
	assert.Equal(t, document.DefaultLayout(), s.DocumentLayout())
}

func TestParseScenarioExpectNull(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: nulls
description: "explicit null"
schema: "types: Query: n: \"Int\""
queries:
  - address: n
    expect: null
  - address: n
`))
	require.NoError(t, err)

	assert.True(t, s.Queries[0].HasExpect())
	v, err := s.Queries[0].ExpectedValue()
	require.NoError(t, err)
	assert.Equal(t, ir.Null{}, v)

	assert.False(t, s.Queries[1].HasExpect())
}

func TestParseScenarioLayout(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: layout
description: "custom layout"
layout:
  index: _default
  extensions: [.json, hcl]
schema: "types: Query: n: \"Int\""
queries:
  - address: n
`))
	require.NoError(t, err)
	assert.Equal(t, document.Layout{IndexName: "_default", Extensions: []string{"json", "hcl"}}, s.DocumentLayout())
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nschema: s\nquery: []\n",
			want: "field query not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nschema: s\nqueries: [{address: a}]\n",
			want: "name is required",
		},
		{
			name: "name with space",
			yaml: "name: a b\ndescription: d\nschema: s\nqueries: [{address: a}]\n",
			want: "must not contain spaces",
		},
		{
			name: "missing description",
			yaml: "name: x\nschema: s\nqueries: [{address: a}]\n",
			want: "description is required",
		},
		{
			name: "missing schema",
			yaml: "name: x\ndescription: d\nqueries: [{address: a}]\n",
			want: "schema is required",
		},
		{
			name: "no queries",
			yaml: "name: x\ndescription: d\nschema: s\n",
			want: "queries list is required",
		},
		{
			name: "escaping file path",
			yaml: "name: x\ndescription: d\nschema: s\nfiles: {../a.yml: x}\nqueries: [{address: a}]\n",
			want: "invalid path",
		},
		{
			name: "expect and expect_error",
			yaml: "name: x\ndescription: d\nschema: s\nqueries: [{address: a, expect: 1, expect_error: DATA_NOT_FOUND}]\n",
			want: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "golden/a.golden", "nested/c.yaml"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	files, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)

	files, err = FindScenarios(dir, "b*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml")}, files)

	_, err = FindScenarios(dir, "[")
	assert.Error(t, err)
}
