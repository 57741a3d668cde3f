package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pushfile/internal/testutil"
	"pushfile/pkg/github"
)

func TestPlan_Text(t *testing.T) {
	f := testutil.NewFakeGitHub(t, testOwner, testRepo, testToken)
	sha := f.PutFile("main", "README.md", []byte("old"))

	res := execute(t, inputs(f, "false"), workspace(t, map[string]string{"README.md": "newer"}), "plan")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Repository: octo/site\n")
	assert.Contains(t, res.stdout, "Branch:     main\n")
	assert.Contains(t, res.stdout, "Local:      5 bytes\n")
	assert.Contains(t, res.stdout, "Remote:     3 bytes ("+sha+")\n")
	assert.Contains(t, res.stdout, "Change:     update\n")
	assert.Empty(t, f.Writes())
}

func TestPlan_JSON(t *testing.T) {
	f := testutil.NewFakeGitHub(t, testOwner, testRepo, testToken)

	res := execute(t, inputs(f, "false"), workspace(t, map[string]string{"README.md": "hello"}), "plan", "--output", "json")

	require.Equal(t, ExitOK, res.code, res.stderr)
	var view planView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &view))
	assert.Equal(t, github.ChangeTypeCreate, view.Change)
	assert.Equal(t, "README.md", view.Path)
	assert.True(t, view.Local.Exists)
	assert.Equal(t, 5, view.Local.Size)
	assert.False(t, view.Remote.Exists)
	assert.Empty(t, f.Writes())
}

func TestPlan_YAML(t *testing.T) {
	f := testutil.NewFakeGitHub(t, testOwner, testRepo, testToken)
	f.PutFile("main", "README.md", []byte("gone"))

	res := execute(t, inputs(f, "true"), workspace(t, nil), "plan", "-o", "yaml")

	require.Equal(t, ExitOK, res.code, res.stderr)
	var view planView
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &view))
	assert.Equal(t, github.ChangeTypeDelete, view.Change)
	assert.False(t, view.Local.Exists)
	assert.True(t, view.Remote.Exists)
	assert.Empty(t, f.Writes())
}

func TestPlan_RemovalNotAllowed(t *testing.T) {
	f := testutil.NewFakeGitHub(t, testOwner, testRepo, testToken)
	f.PutFile("main", "README.md", []byte("keep"))

	res := execute(t, inputs(f, "false"), workspace(t, nil), "plan")

	assert.Equal(t, ExitRemovalNotAllowed, res.code)
	assert.Empty(t, f.Writes())
}

func TestPlan_InvalidOutput(t *testing.T) {
	f := testutil.NewFakeGitHub(t, testOwner, testRepo, testToken)

	res := execute(t, inputs(f, "false"), workspace(t, nil), "plan", "--output", "xml")

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Contains(t, res.stderr, "invalid output format")
	assert.Empty(t, f.Calls())
}

func TestDescribeFile(t *testing.T) {
	assert.Equal(t, "absent", describeFile(fileView{}))
	assert.Equal(t, "4 bytes", describeFile(fileView{Exists: true, Size: 4}))
	assert.Equal(t, "0 bytes (e69de29)", describeFile(fileView{Exists: true, SHA: "e69de29"}))
}
