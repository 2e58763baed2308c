package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestClassifyBlogPost(t *testing.T) {
	out, err := execute(t, "classify", "Write a blog post about sustainable energy")
	require.NoError(t, err)

	assert.Contains(t, out, "Blog post:")
	assert.Contains(t, out, "create_content")
	assert.Contains(t, out, "research")
	assert.Contains(t, out, "creative")
	assert.Contains(t, out, "quality_review")
	assert.Contains(t, out, "format")
	assert.Contains(t, out, "requires confirmation")
}

func TestClassifyJSONOutput(t *testing.T) {
	out, err := execute(t, "classify", "--json", "Write a blog post about solar panels")
	require.NoError(t, err)

	var resp struct {
		Intent struct {
			TaskType   string  `json:"task_type"`
			Confidence float64 `json:"confidence"`
		} `json:"intent"`
		Plan struct {
			Stages []struct {
				Kind string `json:"kind"`
			} `json:"stages"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "blog_post", resp.Intent.TaskType)
	assert.GreaterOrEqual(t, resp.Intent.Confidence, 0.5)
	assert.Len(t, resp.Plan.Stages, 5)
}

func TestClassifyQualityOverride(t *testing.T) {
	out, err := execute(t, "classify", "--json", "--quality", "draft", "blog post about wind farms")
	require.NoError(t, err)

	var resp struct {
		Intent struct {
			Parameters map[string]string `json:"parameters"`
		} `json:"intent"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "draft", resp.Intent.Parameters["quality_preference"])

	_, err = execute(t, "classify", "--quality", "perfect", "blog post about wind farms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality preference")
}

func TestClassifyRejectsEmptyText(t *testing.T) {
	_, err := execute(t, "classify", "   ")
	assert.Error(t, err)
}

func TestRootCommandListsSubcommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"serve", "classify", "run", "validate"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestValidateDefaultsWhenNoConfig(t *testing.T) {
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestValidateRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	writeFile(t, path, "log_level: shouty\n")

	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}
