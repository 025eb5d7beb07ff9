package cli

import (
	"bytes"
	"testing"

	"github.com/roach88/confql/internal/testutil"
)

const catalogueSchema = `
types: {
	Thing: {
		name: {type: "String", derive: "filename"}
		size: "Float!"
	}
	Query: {
		title:  "String!"
		things: "[Thing!]!"
		count:  "Int!"
	}
}
`

// catalogueTree writes a small tree with its schema to a temp dir.
func catalogueTree(t *testing.T) string {
	t.Helper()
	tree, dir := testutil.NewDirTree(t)
	tree.Files(map[string]string{
		"schema.cue":        catalogueSchema,
		"index.yml":         "title: Catalogue",
		"things/widget.yml": "size: 1.1",
		"things/dongle.yml": "size: 2.2",
	})
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
