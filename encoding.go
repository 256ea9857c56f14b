package tiktoken

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/euforicio/tiktoken-go/tokenizer"
)

// AllSpecial is the sentinel accepted by the allowed/disallowed special
// arguments: []string{AllSpecial} names every special token of the encoding.
const AllSpecial = "all"

// ErrDisallowedSpecial reports a special token literal that appeared in text
// while listed as disallowed.
var ErrDisallowedSpecial = errors.New("tiktoken: text contains a disallowed special token")

// EncodingParams is the configuration an Encoding is built from: a name, a
// pretokenizer pattern, a rank table snapshot, a special token mapping, and
// an optional explicit vocabulary size to validate against.
type EncodingParams struct {
	Name           string
	PatStr         string
	MergeableRanks map[string]tokenizer.Rank
	SpecialTokens  map[string]tokenizer.Rank
	ExplicitNVocab int
}

// Encoding is a named, immutable tokenizer instance. All methods are safe
// for concurrent use.
type Encoding struct {
	name          string
	core          *tokenizer.Core
	specialTokens map[string]tokenizer.Rank
}

// NewEncoding builds an Encoding from params. With ExplicitNVocab set, the
// combined table sizes and every token id are validated against it.
func NewEncoding(params EncodingParams) (*Encoding, error) {
	if n := params.ExplicitNVocab; n > 0 {
		if got := len(params.MergeableRanks) + len(params.SpecialTokens); got != n {
			return nil, fmt.Errorf("tiktoken: encoding %q declares %d tokens but has %d", params.Name, n, got)
		}
		for _, id := range params.MergeableRanks {
			if int(id) >= n {
				return nil, fmt.Errorf("tiktoken: encoding %q has rank %d outside its declared vocabulary", params.Name, id)
			}
		}
		for _, id := range params.SpecialTokens {
			if int(id) >= n {
				return nil, fmt.Errorf("tiktoken: encoding %q has special id %d outside its declared vocabulary", params.Name, id)
			}
		}
	}
	core, err := tokenizer.NewCoreBPE(params.MergeableRanks, params.SpecialTokens, params.PatStr)
	if err != nil {
		return nil, err
	}
	specials := make(map[string]tokenizer.Rank, len(params.SpecialTokens))
	for lit, id := range params.SpecialTokens {
		specials[lit] = id
	}
	return &Encoding{name: params.Name, core: core, specialTokens: specials}, nil
}

// Name returns the encoding's name, e.g. "cl100k_base".
func (e *Encoding) Name() string { return e.name }

// Close releases the engine's decoder store. Only call this on encodings you
// constructed yourself; registry instances are shared process-wide.
func (e *Encoding) Close() { e.core.Close() }

// Encode tokenizes text. allowedSpecial lists the special literals to emit
// as reserved ids ([]string{AllSpecial} for every special; nil for none).
// disallowedSpecial lists literals whose presence in text is an error
// ([]string{AllSpecial} for every special not explicitly allowed; nil checks
// none). Disallowed literals that pass the check are encoded as ordinary
// text.
func (e *Encoding) Encode(text string, allowedSpecial, disallowedSpecial []string) ([]tokenizer.Rank, error) {
	allowed := e.resolveSpecials(allowedSpecial, nil)
	disallowed := e.resolveSpecials(disallowedSpecial, allowed)
	for lit := range disallowed {
		if strings.Contains(text, lit) {
			return nil, fmt.Errorf("%w: %q", ErrDisallowedSpecial, lit)
		}
	}
	tokens, _ := e.core.Encode(text, allowed)
	return tokens, nil
}

// EncodeOrdinary tokenizes text with no special token recognition at all.
func (e *Encoding) EncodeOrdinary(text string) []tokenizer.Rank {
	return e.core.EncodeOrdinary(text)
}

// EncodeWithUnstable returns the token-stable prefix of text plus the
// candidate completions of its unstable tail. See Core.EncodeWithUnstable.
func (e *Encoding) EncodeWithUnstable(text string, allowedSpecial []string) ([]tokenizer.Rank, [][]tokenizer.Rank) {
	return e.core.EncodeWithUnstable(text, e.resolveSpecials(allowedSpecial, nil))
}

// EncodeBytes tokenizes raw bytes that need not be valid UTF-8; the result
// round-trips through DecodeBytes.
func (e *Encoding) EncodeBytes(b []byte) []tokenizer.Rank {
	return e.core.EncodeBytes(b)
}

// EncodeSingleToken maps one byte sequence to its id, special literals
// included. Fails if the piece is not a single known token.
func (e *Encoding) EncodeSingleToken(piece []byte) (tokenizer.Rank, error) {
	return e.core.EncodeSingleToken(piece)
}

// EncodeBatch encodes independent texts in parallel against this shared
// encoding. Results are index-aligned with texts.
func (e *Encoding) EncodeBatch(texts []string, allowedSpecial, disallowedSpecial []string) ([][]tokenizer.Rank, error) {
	out := make([][]tokenizer.Rank, len(texts))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			tokens, err := e.Encode(text, allowedSpecial, disallowedSpecial)
			if err != nil {
				return err
			}
			out[i] = tokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountTokens returns the ordinary token count of text.
func (e *Encoding) CountTokens(text string) int {
	return len(e.core.EncodeOrdinary(text))
}

// Decode returns the tokens' bytes as a string. Unknown ids are skipped.
func (e *Encoding) Decode(tokens []tokenizer.Rank) string {
	return e.core.DecodeUTF8(tokens)
}

// DecodeBytes returns the tokens' raw bytes. Unknown ids are skipped.
func (e *Encoding) DecodeBytes(tokens []tokenizer.Rank) []byte {
	return e.core.DecodeBytes(tokens)
}

// DecodeSingleTokenBytes is the strict single-id decode.
func (e *Encoding) DecodeSingleTokenBytes(token tokenizer.Rank) ([]byte, error) {
	return e.core.DecodeSingleTokenBytes(token)
}

// TokenByteValues returns the sorted vocabulary byte sequences.
func (e *Encoding) TokenByteValues() [][]byte {
	return e.core.TokenByteValues()
}

// SpecialTokensSet returns the special literals of this encoding.
func (e *Encoding) SpecialTokensSet() map[string]struct{} {
	out := make(map[string]struct{}, len(e.specialTokens))
	for lit := range e.specialTokens {
		out[lit] = struct{}{}
	}
	return out
}

// EOTToken returns the end-of-text id, if this encoding has one.
func (e *Encoding) EOTToken() (tokenizer.Rank, bool) {
	id, ok := e.specialTokens[EndOfText]
	return id, ok
}

// resolveSpecials expands a literal list into a set, honoring the AllSpecial
// sentinel. For the disallowed side, exclude holds the already-allowed set
// that "all" must not cover.
func (e *Encoding) resolveSpecials(lits []string, exclude map[string]struct{}) map[string]struct{} {
	if len(lits) == 0 {
		return nil
	}
	out := make(map[string]struct{})
	if len(lits) == 1 && lits[0] == AllSpecial {
		for lit := range e.specialTokens {
			if _, ok := exclude[lit]; ok {
				continue
			}
			out[lit] = struct{}{}
		}
		return out
	}
	for _, lit := range lits {
		if _, ok := e.specialTokens[lit]; ok {
			out[lit] = struct{}{}
		}
	}
	return out
}
