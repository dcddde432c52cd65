package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAML(t *testing.T) {
	out, err := YAML(sampleReport())
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "id: "))
	assert.Contains(t, text, "\ngroup_a: \"1\"\n")
	assert.Contains(t, text, "generated_at: \"2024-06-11T09:30:00Z\"")
	assert.NotContains(t, text, "{")

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "1", decoded["group_a"])
	assert.Len(t, decoded["models"], 2)

	keys := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "-") {
			keys = append(keys, strings.SplitN(line, ":", 2)[0])
		}
	}
	assert.Equal(t, []string{
		"id", "generated_at", "dataset", "group_a", "group_b", "group_counts", "summary", "trend",
		"assumptions", "test", "effect", "market_segments", "age_segments", "models", "conclusion",
	}, keys)
}
