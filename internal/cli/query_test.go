package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAllResolve(t *testing.T) {
	dir := catalogueTree(t)

	stdout, _, err := execute(t, "query", "title", "things", "--root", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Failed)
	require.Len(t, resp.Data.Results, 2)

	assert.Equal(t, "title", resp.Data.Results[0].Address)
	assert.Equal(t, "Catalogue", resp.Data.Results[0].Value)
	assert.Equal(t, "things", resp.Data.Results[1].Address)
	assert.Len(t, resp.Data.Results[1].Value, 2)
	assert.NotEqual(t, resp.Data.Results[0].QueryID, resp.Data.Results[1].QueryID)
}

func TestQueryPartialFailure(t *testing.T) {
	dir := catalogueTree(t)

	stdout, _, err := execute(t, "query", "count", "title", "--root", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Results, 2)

	require.NotNil(t, resp.Data.Results[0].Error)
	assert.Equal(t, "DATA_NOT_FOUND", resp.Data.Results[0].Error.Code)
	assert.Nil(t, resp.Data.Results[1].Error)
	assert.Equal(t, "Catalogue", resp.Data.Results[1].Value)
}

func TestQueryRequiresSchemaAddresses(t *testing.T) {
	dir := catalogueTree(t)

	_, _, err := execute(t, "query", "title", "bogus", "--root", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "query", "--root", dir)
	require.Error(t, err)
}
