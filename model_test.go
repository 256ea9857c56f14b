package tiktoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodingNameForModel(t *testing.T) {
	cases := []struct {
		model string
		want  string
	}{
		// exact matches
		{"gpt-4o", "o200k_base"},
		{"gpt-4", "cl100k_base"},
		{"gpt-3.5-turbo", "cl100k_base"},
		{"text-davinci-003", "p50k_base"},
		{"text-davinci-edit-001", "p50k_edit"},
		{"davinci", "r50k_base"},
		{"gpt2", "gpt2"},
		// dated snapshots resolve by prefix
		{"gpt-4o-2024-05-13", "o200k_base"},
		{"o1-preview", "o200k_base"},
		{"gpt-4-0613", "cl100k_base"},
		{"gpt-3.5-turbo-0301", "cl100k_base"},
		// fine-tunes; the longest prefix wins
		{"ft:gpt-3.5-turbo:org::id", "cl100k_base"},
		{"ft:gpt-4o:org::id", "o200k_base"},
		{"ft:gpt-4:org::id", "cl100k_base"},
	}
	for _, tc := range cases {
		got, err := EncodingNameForModel(tc.model)
		require.NoError(t, err, tc.model)
		assert.Equal(t, tc.want, got, tc.model)
	}
}

func TestEncodingNameForModelUnknown(t *testing.T) {
	_, err := EncodingNameForModel("not-a-model")
	require.ErrorIs(t, err, ErrUnknownModel)
	assert.Contains(t, err.Error(), "not-a-model")
}

func TestEncodingForModel(t *testing.T) {
	registerTestEncoding(t, "model_base")
	modelToEncoding["test-model"] = "model_base"
	t.Cleanup(func() { delete(modelToEncoding, "test-model") })

	enc, err := EncodingForModel("test-model")
	require.NoError(t, err)
	assert.Equal(t, "model_base", enc.Name())

	_, err = EncodingForModel("not-a-model")
	require.ErrorIs(t, err, ErrUnknownModel)
}
