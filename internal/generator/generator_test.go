package generator

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vik-srinivasan/genie-compliance/internal/llm"
	"github.com/vik-srinivasan/genie-compliance/internal/store"
)

type stubClient struct {
	fn func(req llm.Request) (string, error)
}

func (s *stubClient) Complete(_ context.Context, req llm.Request) (string, error) {
	return s.fn(req)
}

func (s *stubClient) ModelVersion() string { return "stub" }

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", "function a() {}", "function a() {}"},
		{"plain fences", "```\nfunction a() {}\n```", "function a() {}"},
		{"language tag", "```solidity\nfunction a() {}\n```", "function a() {}"},
		{"missing closing fence", "```solidity\nfunction a() {}", "function a() {}"},
		{"surrounding whitespace", "  ```\nfunction a() {}\n```  ", "function a() {}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestRunCyclesVariationsAndSkipsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.csv")

	var variations []string
	client := &stubClient{fn: func(req llm.Request) (string, error) {
		for _, v := range VariationTypes {
			if strings.Contains(req.User, v) {
				variations = append(variations, v)
				break
			}
		}
		// Fail the third call; the run must keep going.
		if len(variations) == 3 {
			return "", errors.New("rate limited")
		}
		return "```solidity\nfunction transfer() {}\n```", nil
	}}

	gen := New(client, Options{
		Count:       12,
		Temperature: 0.8,
		MaxTokens:   300,
		OutputPath:  path,
	}, zap.NewNop())

	require.NoError(t, gen.Run(context.Background()))

	snippets, err := store.ReadSnippets(path)
	require.NoError(t, err)
	assert.Len(t, snippets, 11)

	// Variation types cycle in order and wrap after ten.
	require.Len(t, variations, 12)
	assert.Equal(t, VariationTypes[0], variations[0])
	assert.Equal(t, VariationTypes[9], variations[9])
	assert.Equal(t, VariationTypes[0], variations[10])

	for _, s := range snippets {
		assert.Equal(t, "function transfer() {}", s.Code)
	}
}
