// Package tiktoken provides a pure Go byte-level BPE tokenizer compatible
// with the published tiktoken vocabularies (r50k_base, p50k_base,
// cl100k_base, o200k_base).
//
// Encodings are obtained by name or by model, are immutable once built, and
// are safe for concurrent use:
//
//	enc, err := tiktoken.GetEncoding("cl100k_base")
//	tokens, err := enc.Encode("Hello, World!", nil, nil)
package tiktoken
