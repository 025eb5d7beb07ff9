package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/confql/internal/testutil"
)

func TestLoadSchemaFile(t *testing.T) {
	dir := catalogueTree(t)

	schema, err := LoadSchema(filepath.Join(dir, "schema.cue"))
	require.NoError(t, err)
	assert.Equal(t, "Query", schema.Query)
	assert.Equal(t, []string{"Query", "Thing"}, schema.TypeNames())

	s, err := schema.Lookup([]string{"things"})
	require.NoError(t, err)
	assert.Equal(t, "[Thing!]!", s.String())
}

func TestLoadSchemaErrors(t *testing.T) {
	tree, dir := testutil.NewDirTree(t)
	tree.Files(map[string]string{
		"bad_query.cue": `query: 3
types: {}`,
		"bad_field.cue": `types: Query: {n: 3}`,
	})

	tests := []struct {
		name     string
		file     string
		wantCode string
	}{
		{"missing", "missing.cue", ErrCodeNotFound},
		{"query not a string", "bad_query.cue", ErrCodeSchemaQuery},
		{"field not a reference", "bad_field.cue", ErrCodeSchemaField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchema(filepath.Join(dir, tt.file))
			require.Error(t, err)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"query", ErrCodeSchemaQuery},
		{"types", ErrCodeSchemaTypes},
		{"types.Thing.size", ErrCodeSchemaField},
		{"cue", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}

func TestFindCUEFiles(t *testing.T) {
	tree, dir := testutil.NewDirTree(t)
	tree.Files(map[string]string{
		"a.cue":        "x: 1",
		"b.cue":        "y: 2",
		"notes.txt":    "",
		"nested/c.cue": "z: 3",
	})

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(dir, "b.cue")}, files)
}
