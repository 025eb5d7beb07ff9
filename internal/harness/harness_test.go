package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRunThingsFromSiblings(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "things_from_siblings"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Outcomes, 6)

	assert.Equal(t, Outcome{Address: "title", Type: "String!", Value: `"Catalogue"`}, result.Outcomes[1])
	assert.Equal(t, "TYPE_MISMATCH", result.Outcomes[4].Error)
	assert.NotEmpty(t, result.Outcomes[4].Message)
}

func TestRunKeyedHCLCatalogue(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "keyed_hcl_catalogue"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "[Thing!]!", result.Outcomes[0].Type)
}

func TestRunReportsFailedExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: "every expectation is wrong"
schema: |
  types: Query: {
    n: "Int!"
    m: "Int"
  }
files:
  n.yml: "1"
queries:
  - address: n
    expect: 2
  - address: n
    expect_error: DATA_NOT_FOUND
  - address: n
    type: "String!"
  - address: m
    type: "Int!"
    expect: 3
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected 2, got 1")
	assert.Contains(t, result.Errors[1], "expected error DATA_NOT_FOUND, got value 1")
	assert.Contains(t, result.Errors[2], "unexpected TYPE_MISMATCH")
	assert.Contains(t, result.Errors[3], "expected a value")
}

func TestRunSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   string
	}{
		{"does not compile", `types: Query: n: {derive: "filename"}`, "failed to compile schema"},
		{"does not validate", `types: Query: n: "[Int!]!"
types: Query: m: {type: "[Int]", derive: "filename"}`, "invalid schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scenario{
				Name:        "bad",
				Description: "bad schema",
				Schema:      tt.schema,
				Queries:     []Query{{Address: "n"}},
			}
			_, err := Run(context.Background(), s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunUnknownAddress(t *testing.T) {
	s := &Scenario{
		Name:        "unknown",
		Description: "address the schema does not declare",
		Schema:      `types: Query: n: "Int"`,
		Queries:     []Query{{Address: "x"}},
	}
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queries[0]")
}

func TestBuildTree(t *testing.T) {
	fsys, err := BuildTree(&Scenario{Files: map[string]string{
		"index.yml":         "a: 1",
		"things/widget.yml": "size: 1",
	}})
	require.NoError(t, err)

	entries, err := fsys.ReadDir("things")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "widget.yml", entries[0].Name())

	root, err := fsys.ReadDir("")
	require.NoError(t, err)
	assert.Len(t, root, 2)
}
