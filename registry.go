package tiktoken

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/euforicio/tiktoken-go/tokenizer"
)

// ErrUnknownEncoding reports a name no constructor is registered for.
var ErrUnknownEncoding = errors.New("tiktoken: unknown encoding")

// Well-known special token literals.
const (
	EndOfText   = "<|endoftext|>"
	FimPrefix   = "<|fim_prefix|>"
	FimMiddle   = "<|fim_middle|>"
	FimSuffix   = "<|fim_suffix|>"
	EndOfPrompt = "<|endofprompt|>"
)

// Pretokenizer patterns are vocabulary configuration, not engine logic: the
// engine compiles whatever pattern its encoding declares.
const (
	// gpt2, r50k_base and p50k_base share one pattern.
	patternGPT2 = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`
	// cl100k_base caps number runs at three digits and isolates newlines.
	patternCL100k = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
	// o200k_base distinguishes case runs within words.
	patternO200k = `[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n/]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

// encodingConstructors builds EncodingParams lazily; vocabulary files are
// only fetched when an encoding is first requested.
var encodingConstructors = map[string]func() (EncodingParams, error){
	"gpt2":        gpt2Params,
	"r50k_base":   r50kBaseParams,
	"p50k_base":   p50kBaseParams,
	"p50k_edit":   p50kEditParams,
	"cl100k_base": cl100kBaseParams,
	"o200k_base":  o200kBaseParams,
}

// gpt2 shares r50k_base's rank table; the historical data-gym files encode
// the same vocabulary in a different container format.
func gpt2Params() (EncodingParams, error) {
	ranks, err := tokenizer.LoadRanks("r50k_base")
	if err != nil {
		return EncodingParams{}, err
	}
	return EncodingParams{
		Name:           "gpt2",
		PatStr:         patternGPT2,
		MergeableRanks: ranks,
		SpecialTokens:  map[string]tokenizer.Rank{EndOfText: 50256},
		ExplicitNVocab: 50257,
	}, nil
}

func r50kBaseParams() (EncodingParams, error) {
	ranks, err := tokenizer.LoadRanks("r50k_base")
	if err != nil {
		return EncodingParams{}, err
	}
	return EncodingParams{
		Name:           "r50k_base",
		PatStr:         patternGPT2,
		MergeableRanks: ranks,
		SpecialTokens:  map[string]tokenizer.Rank{EndOfText: 50256},
		ExplicitNVocab: 50257,
	}, nil
}

func p50kBaseParams() (EncodingParams, error) {
	ranks, err := tokenizer.LoadRanks("p50k_base")
	if err != nil {
		return EncodingParams{}, err
	}
	return EncodingParams{
		Name:           "p50k_base",
		PatStr:         patternGPT2,
		MergeableRanks: ranks,
		SpecialTokens:  map[string]tokenizer.Rank{EndOfText: 50256},
		ExplicitNVocab: 50281,
	}, nil
}

func p50kEditParams() (EncodingParams, error) {
	ranks, err := tokenizer.LoadRanks("p50k_base")
	if err != nil {
		return EncodingParams{}, err
	}
	return EncodingParams{
		Name:           "p50k_edit",
		PatStr:         patternGPT2,
		MergeableRanks: ranks,
		SpecialTokens: map[string]tokenizer.Rank{
			EndOfText: 50256,
			FimPrefix: 50281,
			FimMiddle: 50282,
			FimSuffix: 50283,
		},
	}, nil
}

func cl100kBaseParams() (EncodingParams, error) {
	ranks, err := tokenizer.LoadRanks("cl100k_base")
	if err != nil {
		return EncodingParams{}, err
	}
	return EncodingParams{
		Name:           "cl100k_base",
		PatStr:         patternCL100k,
		MergeableRanks: ranks,
		SpecialTokens: map[string]tokenizer.Rank{
			EndOfText:   100257,
			FimPrefix:   100258,
			FimMiddle:   100259,
			FimSuffix:   100260,
			EndOfPrompt: 100276,
		},
	}, nil
}

func o200kBaseParams() (EncodingParams, error) {
	ranks, err := tokenizer.LoadRanks("o200k_base")
	if err != nil {
		return EncodingParams{}, err
	}
	return EncodingParams{
		Name:           "o200k_base",
		PatStr:         patternO200k,
		MergeableRanks: ranks,
		SpecialTokens: map[string]tokenizer.Rank{
			EndOfText:   199999,
			EndOfPrompt: 200018,
		},
	}, nil
}

// The registry is populated lazily and never invalidated. One mutex around
// check-then-construct-then-insert guarantees at-most-once construction per
// name; construction is rare next to encode traffic, so the coarse lock is
// fine.
var (
	registryMu sync.Mutex
	registry   = map[string]*Encoding{}
)

// GetEncoding returns the process-wide Encoding for name, constructing it on
// first use. The returned instance is shared; it must not be closed by
// callers that did not construct it themselves via NewEncoding.
func GetEncoding(name string) (*Encoding, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if enc, ok := registry[name]; ok {
		return enc, nil
	}
	ctor, ok := encodingConstructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEncoding, name, ListEncodingNames())
	}
	params, err := ctor()
	if err != nil {
		return nil, fmt.Errorf("constructing encoding %q: %w", name, err)
	}
	enc, err := NewEncoding(params)
	if err != nil {
		return nil, fmt.Errorf("constructing encoding %q: %w", name, err)
	}
	slog.Debug("constructed encoding", "name", name)
	registry[name] = enc
	return enc, nil
}

// ListEncodingNames returns the registered encoding names, sorted.
func ListEncodingNames() []string {
	names := make([]string, 0, len(encodingConstructors))
	for name := range encodingConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
