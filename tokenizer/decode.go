package tokenizer

import "fmt"

// DecodeBytes concatenates the byte sequences of the given tokens. Ids that
// are in neither the rank table nor the special table are silently skipped;
// the bulk decode path is deliberately permissive (use
// DecodeSingleTokenBytes for the strict variant).
func (c *coreBPE) DecodeBytes(tokens []Rank) []byte {
	var out []byte
	c.decodeInto(&out, tokens)
	return out
}

// DecodeUTF8 is DecodeBytes interpreted as a UTF-8 string.
func (c *coreBPE) DecodeUTF8(tokens []Rank) string {
	return string(c.DecodeBytes(tokens))
}

func (c *coreBPE) decodeInto(dst *[]byte, tokens []Rank) {
	buf := *dst
	for _, t := range tokens {
		if c.dec.AppendInto(&buf, t) {
			continue
		}
		if v, ok := c.specialDec[t]; ok {
			buf = append(buf, v...)
		}
	}
	*dst = buf
}

// DecodeSingleTokenBytes returns the byte sequence of one token id, checking
// the rank table first and the special table second.
func (c *coreBPE) DecodeSingleTokenBytes(token Rank) ([]byte, error) {
	var out []byte
	if c.dec.AppendInto(&out, token) {
		return out, nil
	}
	if v, ok := c.specialDec[token]; ok {
		return append(out, v...), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownToken, token)
}

// EncodeSingleToken maps one byte sequence to its token id: rank table first,
// then the special table keyed by the literal's UTF-8 form.
func (c *coreBPE) EncodeSingleToken(piece []byte) (Rank, error) {
	if id, ok := c.enc[string(piece)]; ok {
		return id, nil
	}
	if id, ok := c.specialEnc[string(piece)]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPiece, piece)
}

// IsSpecialToken reports whether id names a reserved literal.
func (c *coreBPE) IsSpecialToken(id Rank) bool {
	_, ok := c.specialDec[id]
	return ok
}

// TokenByteValues returns every rank table byte sequence in lexicographic
// order. The slices are shared with the engine and must not be mutated.
func (c *coreBPE) TokenByteValues() [][]byte {
	return c.sortedTokenBytes
}

// SpecialTokens returns the reserved literal to id mapping as a fresh map.
func (c *coreBPE) SpecialTokens() map[string]Rank {
	out := make(map[string]Rank, len(c.specialEnc))
	for k, v := range c.specialEnc {
		out[k] = v
	}
	return out
}
