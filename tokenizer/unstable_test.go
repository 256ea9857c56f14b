package tokenizer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeWithUnstableStableBoundary(t *testing.T) {
	core := newTestCore(t, testSpecials())
	allowed := map[string]struct{}{"<|endoftext|>": {}}

	tokens, completions := core.EncodeWithUnstable("a<|endoftext|>", allowed)
	full, _ := core.Encode("a<|endoftext|>", allowed)
	require.Equal(t, full, tokens)
	require.Empty(t, completions)
}

func TestEncodeWithUnstableStripsTrailingWord(t *testing.T) {
	core := newTestCore(t, nil)

	tokens, completions := core.EncodeWithUnstable("hello", nil)
	require.Empty(t, tokens)
	require.NotEmpty(t, completions)

	// The unstable bytes re-merged on their own must be among the candidates.
	require.Contains(t, completions, []Rank{256, 257, 'o'})
	for _, comp := range completions {
		require.True(t, bytes.HasPrefix(core.DecodeBytes(comp), []byte("hello")))
	}
}

func TestEncodeWithUnstableWidensWhitespace(t *testing.T) {
	// A one-byte-per-piece pattern splits the trailing spaces into separate
	// tokens, so widening has to walk back across piece boundaries.
	core, err := NewCoreBPE(testRanks(), nil, `.`)
	require.NoError(t, err)
	t.Cleanup(core.Close)

	tokens, completions := core.EncodeWithUnstable("ab  ", nil)
	require.Equal(t, []Rank{'a', 'b'}, tokens)
	require.NotEmpty(t, completions)
	for _, comp := range completions {
		require.True(t, bytes.HasPrefix(core.DecodeBytes(comp), []byte("  ")))
	}
}

func TestEncodeWithUnstableCompletionContract(t *testing.T) {
	core := newTestCore(t, testSpecials())

	texts := []string{"hello", "say hello", "it's", "a  ", "wor"}
	for _, text := range texts {
		stable, completions := core.EncodeWithUnstable(text, nil)
		full, _ := core.Encode(text, nil)

		// The stable tokens are a prefix of the full encoding.
		require.LessOrEqual(t, len(stable), len(full), "text %q", text)
		require.Equal(t, full[:len(stable)], stable, "text %q", text)

		unstable := core.DecodeBytes(full[len(stable):])
		require.Equal(t, []byte(text), append(core.DecodeBytes(stable), unstable...), "text %q", text)

		seen := make(map[string]struct{}, len(completions))
		for _, comp := range completions {
			require.True(t, bytes.HasPrefix(core.DecodeBytes(comp), unstable),
				"text %q: completion %v does not extend %q", text, comp, unstable)
			seen[completionKey(comp)] = struct{}{}
		}
		require.Len(t, seen, len(completions), "text %q: duplicate completions", text)
	}
}

func TestEncodeBytesValidUTF8MatchesOrdinary(t *testing.T) {
	core := newTestCore(t, nil)

	text := "hello world"
	require.Equal(t, core.EncodeOrdinary(text), core.EncodeBytes([]byte(text)))
}

func TestEncodeBytesInvalidUTF8RoundTrips(t *testing.T) {
	core := newTestCore(t, nil)

	inputs := [][]byte{
		[]byte("hi\xff\xfe"),
		{0xff},
		append([]byte("hello "), 0xC3), // truncated multibyte sequence
		append([]byte("hello\xf0\x9f"), []byte(" world")...),
	}
	for _, in := range inputs {
		tokens := core.EncodeBytes(in)
		require.Equal(t, in, core.DecodeBytes(tokens), "input %q", in)
	}
}
