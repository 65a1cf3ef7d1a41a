package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocery/internal/api"
	"github.com/idilsaglam/grocery/internal/model"
)

var groceries = []model.Item{
	{ID: "1", Item: "Milk"},
	{ID: "2", Item: "Eggs", Checked: true},
	{ID: "3", Item: "Whole wheat bread"},
}

func TestListGolden(t *testing.T) {
	_, url := startStore(t, groceries...)

	tests := []struct {
		name  string
		items []model.Item
		args  []string
	}{
		{"ls", groceries, nil},
		{"ls_search", groceries, []string{"--search", "WHEAT"}},
		{"ls_group", groceries, []string{"--group"}},
		{"ls_empty", nil, nil},
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := url
			if tc.items == nil {
				_, target = startStore(t)
			}
			args := append([]string{"--theme", "mono", "--api-url", target, "ls"}, tc.args...)
			out, _, err := execute(t, args...)
			require.NoError(t, err)
			g.Assert(t, tc.name, []byte(out))
		})
	}
}

func TestListStoreError(t *testing.T) {
	_, url := startStore(t)

	out, _, err := execute(t, "--api-url", url+"/nowhere", "ls")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Empty(t, out)

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.Code)
}

func TestAdd(t *testing.T) {
	srv, url := startStore(t)

	out, _, err := execute(t, "--theme", "mono", "--api-url", url, "add", "Oat", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, `added "Oat milk"`)

	items := srv.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Oat milk", items[0].Item)
	assert.False(t, items[0].Checked)
	assert.Contains(t, out, "#"+items[0].ID)
}

func TestCheck(t *testing.T) {
	srv, url := startStore(t, groceries...)

	out, _, err := execute(t, "--api-url", url, "check", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `checked "Milk"`)
	assert.True(t, srv.Items()[0].Checked)

	out, _, err = execute(t, "--api-url", url, "check", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `unchecked "Milk"`)
	assert.False(t, srv.Items()[0].Checked)
}

func TestCheckUnknownID(t *testing.T) {
	_, url := startStore(t, groceries...)

	_, _, err := execute(t, "--api-url", url, "check", "42")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Contains(t, err.Error(), "no item #42")
}

func TestRemove(t *testing.T) {
	srv, url := startStore(t, groceries...)

	out, _, err := execute(t, "--api-url", url, "rm", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "removed #2")
	assert.Len(t, srv.Items(), 2)

	_, _, err = execute(t, "--api-url", url, "rm", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "item not found")
}

func TestVerboseLogsToStderr(t *testing.T) {
	_, url := startStore(t, groceries...)

	_, stderr, err := execute(t, "-v", "--api-url", url, "ls")
	require.NoError(t, err)
	assert.Contains(t, stderr, "store request")
	assert.Contains(t, stderr, "path=/items")
}

func TestLogFile(t *testing.T) {
	_, url := startStore(t, groceries...)
	logPath := filepath.Join(t.TempDir(), "grocery.log")

	_, stderr, err := execute(t, "-v", "--log-file", logPath, "--api-url", url, "ls")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "items loaded"))
}

func TestEnvFileSetsAPIURL(t *testing.T) {
	_, url := startStore(t, groceries...)
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GROCERY_API_URL="+url+"\n"), 0o644))

	clearEnv(t)
	cmd := NewRootCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--env-file", envPath, "--theme", "mono", "ls"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Whole wheat bread")
}
