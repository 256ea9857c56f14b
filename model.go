package tiktoken

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownModel reports a model name with no known encoding.
var ErrUnknownModel = errors.New("tiktoken: unknown model")

// modelToEncoding maps exact model names to encoding names.
var modelToEncoding = map[string]string{
	// chat
	"gpt-4o":        "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
	"gpt-3.5":       "cl100k_base",
	"gpt-35-turbo":  "cl100k_base",
	// base
	"davinci-002": "cl100k_base",
	"babbage-002": "cl100k_base",
	// embeddings
	"text-embedding-ada-002": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
	"text-embedding-3-large": "cl100k_base",
	// legacy completions
	"text-davinci-003": "p50k_base",
	"text-davinci-002": "p50k_base",
	"code-davinci-002": "p50k_base",
	"code-davinci-001": "p50k_base",
	"code-cushman-002": "p50k_base",
	"code-cushman-001": "p50k_base",
	"text-davinci-001": "r50k_base",
	"text-curie-001":   "r50k_base",
	"text-babbage-001": "r50k_base",
	"text-ada-001":     "r50k_base",
	"davinci":          "r50k_base",
	"curie":            "r50k_base",
	"babbage":          "r50k_base",
	"ada":              "r50k_base",
	// edit
	"text-davinci-edit-001": "p50k_edit",
	"code-davinci-edit-001": "p50k_edit",
	// open source
	"gpt2":  "gpt2",
	"gpt-2": "gpt2",
}

// modelPrefixToEncoding covers dated snapshots and fine-tune names, e.g.
// gpt-4o-2024-05-13 or ft:gpt-3.5-turbo:org::id.
var modelPrefixToEncoding = map[string]string{
	"o1-":              "o200k_base",
	"gpt-4o-":          "o200k_base",
	"ft:gpt-4o":        "o200k_base",
	"gpt-4-":           "cl100k_base",
	"gpt-3.5-turbo-":   "cl100k_base",
	"gpt-35-turbo-":    "cl100k_base",
	"ft:gpt-4":         "cl100k_base",
	"ft:gpt-3.5-turbo": "cl100k_base",
	"ft:davinci-002":   "cl100k_base",
	"ft:babbage-002":   "cl100k_base",
}

// EncodingNameForModel maps a model name to its encoding name, first by
// exact match, then by longest matching prefix.
func EncodingNameForModel(model string) (string, error) {
	if name, ok := modelToEncoding[model]; ok {
		return name, nil
	}
	best, found := "", ""
	for prefix, name := range modelPrefixToEncoding {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best, found = prefix, name
		}
	}
	if found != "" {
		return found, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, model)
}

// EncodingForModel returns the shared encoding used by the given model.
func EncodingForModel(model string) (*Encoding, error) {
	name, err := EncodingNameForModel(model)
	if err != nil {
		return nil, err
	}
	return GetEncoding(name)
}
