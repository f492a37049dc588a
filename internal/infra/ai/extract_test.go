package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "package main\n", "package main"},
		{"fenced with language", "```go\npackage main\n```", "package main"},
		{"fenced without language", "```\nx = 1\n```\n", "x = 1"},
		{"unterminated fence", "```python\nx = 1\n", "x = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Run("surrounded by prose", func(t *testing.T) {
		got, err := ExtractJSON("Here is the plan:\n{\"name\": \"x\"}\nGood luck!")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"x"}`, string(got))
	})

	t.Run("fenced with trailing comma", func(t *testing.T) {
		got, err := ExtractJSON("```json\n{\"name\": \"x\", \"children\": [],}\n```")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"x","children":[]}`, string(got))
	})

	t.Run("no object", func(t *testing.T) {
		_, err := ExtractJSON("I cannot help with that.")
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("broken object", func(t *testing.T) {
		_, err := ExtractJSON("{\"name\": }")
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})
}

func TestParsePlan(t *testing.T) {
	resp := "```json\n" + `{
  "name": "Shop",
  "context": "Online shop",
  "children": [
    {"name": "Backend", "children": [
      {"name": "Add cart API", "spec": "POST /cart", "files": ["api/cart.go"], "acceptance": ["go test ./api/..."]}
    ]}
  ]
}` + "\n```"

	tree, err := ParsePlan(resp)
	require.NoError(t, err)

	assert.Equal(t, "Shop", tree.Name)
	leaf, ok := domain.FindByPath(tree, domain.Path{"Shop", "Backend", "Add cart API"})
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, leaf.Status)
	assert.Equal(t, []string{"api/cart.go"}, leaf.Files)
}

func TestParsePlan_Errors(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := ParsePlan(`{"children": []}`)
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("duplicate siblings", func(t *testing.T) {
		_, err := ParsePlan(`{"name": "P", "children": [{"name": "A"}, {"name": "A"}]}`)
		assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		assert.ErrorIs(t, err, domain.ErrDuplicateSibling)
	})
}

func TestParseFileContent(t *testing.T) {
	got, err := ParseFileContent("```go\npackage main\n```")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", got)

	_, err = ParseFileContent("```\n```")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}
