package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// StripCodeFences removes a surrounding markdown code fence, including an
// optional language tag after the opening fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line (```go, ```python, ...)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	if cut, found := strings.CutSuffix(strings.TrimRight(s, " \t\r\n"), "```"); found {
		s = cut
	}
	return strings.TrimSpace(s)
}

// ExtractJSON returns the JSON object embedded in a model response. Fences,
// surrounding prose, comments and trailing commas are tolerated.
func ExtractJSON(response string) ([]byte, error) {
	s := StripCodeFences(response)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("%w: no JSON object found in response", domain.ErrMalformedResponse)
	}

	extracted := jsonc.ToJSON([]byte(s[start : end+1]))
	if !json.Valid(extracted) {
		return nil, fmt.Errorf("%w: extracted content is not valid JSON", domain.ErrMalformedResponse)
	}
	return extracted, nil
}

// ParsePlan decodes a generated task tree. The tree is normalized and must
// pass structural validation.
func ParsePlan(response string) (domain.Tree, error) {
	data, err := ExtractJSON(response)
	if err != nil {
		return domain.Tree{}, err
	}

	var tree domain.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return domain.Tree{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if tree.Name == "" {
		return domain.Tree{}, fmt.Errorf("%w: plan has no name", domain.ErrMalformedResponse)
	}
	tree = domain.Normalize(tree)
	if err := domain.Validate(tree); err != nil {
		return domain.Tree{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return tree, nil
}

// ParseFileContent turns a model response into file content.
func ParseFileContent(response string) (string, error) {
	content := StripCodeFences(response)
	if content == "" {
		return "", errors.Join(domain.ErrMalformedResponse, errors.New("empty response"))
	}
	return content + "\n", nil
}
