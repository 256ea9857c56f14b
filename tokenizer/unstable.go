package tokenizer

import (
	"bytes"
	"encoding/binary"
	"sort"
	"unicode/utf8"
)

// EncodeWithUnstable tokenizes text like Encode and then strips the trailing
// run of tokens that could change if more text were appended, since greedy
// merging is not prefix-stable. It returns the stable prefix plus the set of
// candidate token sequences the stripped bytes could become.
func (c *coreBPE) EncodeWithUnstable(text string, allowedSpecial map[string]struct{}) ([]Rank, [][]Rank) {
	tokens, last := c.Encode(text, allowedSpecial)
	if last == 0 {
		// Ended on a special token or a pretokenizer boundary.
		return tokens, nil
	}
	last = c.increaseLastPieceTokenLen(tokens, last)

	unstable := c.DecodeBytes(tokens[len(tokens)-last:])
	tokens = tokens[:len(tokens)-last]
	if len(unstable) == 0 {
		return tokens, nil
	}
	return tokens, c.unstableCompletions(unstable)
}

// increaseLastPieceTokenLen widens the unstable region to cover preceding
// whitespace-only tokens: a trailing whitespace run can always be reabsorbed
// by whatever text arrives next.
func (c *coreBPE) increaseLastPieceTokenLen(tokens []Rank, last int) int {
	if last > 0 && c.tokenIsAllSpace(tokens[len(tokens)-last]) {
		for last < len(tokens) && c.tokenIsAllSpace(tokens[len(tokens)-last-1]) {
			last++
		}
	}
	return last
}

func (c *coreBPE) tokenIsAllSpace(tok Rank) bool {
	var b []byte
	if !c.dec.AppendInto(&b, tok) {
		return false
	}
	for _, ch := range b {
		switch ch {
		case ' ', '\n', '\t':
		default:
			return false
		}
	}
	return true
}

// unstableCompletions enumerates the token sequences the unstable bytes could
// merge into once extended. Candidates come from two bounded scans over the
// sorted vocabulary: entries that extend the unstable bytes as a whole, and
// entries that extend a suffix of them across a merge boundary.
func (c *coreBPE) unstableCompletions(unstable []byte) [][]Rank {
	var completions [][]Rank
	seen := make(map[string]struct{})
	add := func(seq []Rank) {
		key := completionKey(seq)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		completions = append(completions, seq)
	}

	// Vocabulary entries that begin with the full unstable run each yield a
	// single-token completion.
	i := sort.Search(len(c.sortedTokenBytes), func(i int) bool {
		return bytes.Compare(c.sortedTokenBytes[i], unstable) >= 0
	})
	for ; i < len(c.sortedTokenBytes) && bytes.HasPrefix(c.sortedTokenBytes[i], unstable); i++ {
		add([]Rank{c.enc[string(c.sortedTokenBytes[i])]})
	}

	// The unstable run may also re-split: some suffix of it can fuse with
	// upcoming text into a token that straddles the current boundary.
	for split := 1; split < len(unstable); split++ {
		prefix, suffix := unstable[:split], unstable[split:]
		j := sort.Search(len(c.sortedTokenBytes), func(i int) bool {
			return bytes.Compare(c.sortedTokenBytes[i], suffix) >= 0
		})
		if j >= len(c.sortedTokenBytes) || !bytes.HasPrefix(c.sortedTokenBytes[j], suffix) {
			continue
		}
		possibility := make([]byte, 0, len(prefix)+len(c.sortedTokenBytes[j]))
		possibility = append(possibility, prefix...)
		possibility = append(possibility, c.sortedTokenBytes[j]...)

		var merged []Rank
		if utf8.Valid(possibility) {
			c.encodeOrdinaryInto([]rune(string(possibility)), &merged)
		} else {
			c.bytePairEncodeInto(string(possibility), &merged)
		}
		// Keep tokens until they cover the unstable bytes; the rest belongs
		// to the hypothetical future text.
		seq := make([]Rank, 0, len(merged))
		seqLen := 0
		for _, t := range merged {
			seq = append(seq, t)
			seqLen += c.tokenByteLen(t)
			if seqLen >= len(unstable) {
				break
			}
		}
		add(seq)
	}
	return completions
}

func (c *coreBPE) tokenByteLen(tok Rank) int {
	var b []byte
	c.dec.AppendInto(&b, tok)
	return len(b)
}

func completionKey(seq []Rank) string {
	b := make([]byte, 4*len(seq))
	for i, t := range seq {
		binary.BigEndian.PutUint32(b[4*i:], t)
	}
	return string(b)
}

// EncodeBytes is the byte-oriented encode path for input that need not be
// valid UTF-8. The longest valid prefix goes through the regular text path
// with its unstable tail pulled back; the tail plus the raw remainder is then
// merged directly so the result round-trips through DecodeBytes.
func (c *coreBPE) EncodeBytes(b []byte) []Rank {
	if utf8.Valid(b) {
		return c.EncodeOrdinary(string(b))
	}
	valid := validUTF8Prefix(b)
	tokens, last := c.Encode(string(b[:valid]), nil)
	last = c.increaseLastPieceTokenLen(tokens, last)

	var tail []byte
	if len(tokens) > 0 && last > 0 {
		tail = c.DecodeBytes(tokens[len(tokens)-last:])
		tokens = tokens[:len(tokens)-last]
	}
	tail = append(tail, b[valid:]...)
	if len(tail) > 0 {
		if id, ok := c.enc[string(tail)]; ok {
			tokens = append(tokens, id)
		} else {
			c.bytePairEncodeInto(string(tail), &tokens)
		}
	}
	return tokens
}

// validUTF8Prefix returns the length of the longest valid UTF-8 prefix of b.
func validUTF8Prefix(b []byte) int {
	i := 0
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		i += size
	}
	return i
}
