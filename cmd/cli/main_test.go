package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"promolift/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func generated(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaign.csv")
	out, err := execute(t, "generate", "--rows", "200", "--seed", "3", "--out", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote 200 rows to "+path+"\n", out)
	return path
}

func TestCLI_ReportMarkdown(t *testing.T) {
	path := generated(t)

	out, err := execute(t, "report", "--data", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Promotion A/B Test Report"))
	assert.Contains(t, out, "## Conclusion")
}

func TestCLI_ReportJSON(t *testing.T) {
	path := generated(t)

	out, err := execute(t, "report", "--data", path, "--group-a", "1", "--group-b", "3", "--format", "json")
	require.NoError(t, err)

	var rep map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "1", rep["group_a"])
	assert.Equal(t, "3", rep["group_b"])
	assert.Len(t, rep["models"], 5)
}

func TestCLI_ReportYAML(t *testing.T) {
	path := generated(t)

	out, err := execute(t, "report", "--data", path, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "\ngroup_a: \"1\"\n")
	assert.Contains(t, out, "\nmodels:\n")
}

func TestCLI_AnalysisCommands(t *testing.T) {
	path := generated(t)

	for _, args := range [][]string{
		{"assumptions"},
		{"test"},
		{"effect-size"},
		{"anova"},
		{"trend"},
		{"summary"},
		{"segments", "--by", "age"},
	} {
		t.Run(args[0], func(t *testing.T) {
			out, err := execute(t, append(args, "--data", path)...)
			require.NoError(t, err)
			assert.True(t, json.Valid([]byte(out)))
		})
	}
}

func TestCLI_Errors(t *testing.T) {
	path := generated(t)

	_, err := execute(t, "report", "--data", path, "--format", "pdf")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "segments", "--data", path, "--by", "region")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "test", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = execute(t, "generate", "--rows", "2", "--out", filepath.Join(t.TempDir(), "x.csv"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
