package tokenizer

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// Rank is the priority of a byte sequence in the merge order; lower ranks
// merge first. Token ids and ranks share one integer space.
type Rank = uint32

const infRank = ^Rank(0)

// coreBPE is the tokenization engine. Every field is read-only after
// construction, so one instance may be shared by any number of goroutines.
type coreBPE struct {
	enc        map[string]Rank // key: raw token bytes as string
	dec        tokenStore
	specialEnc map[string]Rank
	specialDec map[Rank][]byte

	pretok   *patternPool
	specials *patternPool // nil when no special tokens exist

	// sortedTokenBytes holds every rank table entry in lexicographic order,
	// for the unstable-tail completion scan and for introspection.
	sortedTokenBytes [][]byte

	partsPool sync.Pool
}

func newCoreBPE(ranks map[string]Rank, specials map[string]Rank, pattern string) (*coreBPE, error) {
	pretok, err := compilePatternPool(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	var specialPool *patternPool
	if len(specials) > 0 {
		specialPool, err = compilePatternPool(specialPattern(specials))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSpecialPattern, err)
		}
	}

	dec, err := newTokenStore(ranks)
	if err != nil {
		return nil, err
	}
	// A table missing a single-byte entry could fail mid-encode on arbitrary
	// text; reject it here instead.
	for b := 0; b < 256; b++ {
		if _, ok := ranks[string([]byte{byte(b)})]; !ok {
			return nil, fmt.Errorf("%w: 0x%02x", ErrMissingByteToken, b)
		}
	}

	specialEnc := make(map[string]Rank, len(specials))
	specialDec := make(map[Rank][]byte, len(specials))
	for lit, id := range specials {
		specialEnc[lit] = id
		specialDec[id] = []byte(lit)
	}

	sorted := make([][]byte, 0, len(ranks))
	for tok := range ranks {
		sorted = append(sorted, []byte(tok))
	}
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })

	return &coreBPE{
		enc:              ranks,
		dec:              dec,
		specialEnc:       specialEnc,
		specialDec:       specialDec,
		pretok:           pretok,
		specials:         specialPool,
		sortedTokenBytes: sorted,
		partsPool:        sync.Pool{New: func() any { b := make([]part, 0, 64); return &b }},
	}, nil
}

// Close releases the decoder store. The engine must not be used afterwards.
func (c *coreBPE) Close() { c.dec.Close() }

// part is one range boundary during a merge: the byte offset where the range
// starts and the rank of merging it with the range to its right.
type part struct {
	start int
	rank  Rank
}

// bytePairMerge reduces piece to a sequence of boundaries under greedy
// lowest-rank merging. The result holds one entry per surviving range plus a
// sentinel at len(piece); callers slice piece between consecutive starts.
func (c *coreBPE) bytePairMerge(piece string) ([]part, func()) {
	parts, release := c.acquireParts(len(piece) + 2)

	// Rank of the span a merge at boundary i would pair up next, evaluated
	// before the absorbed boundary i+1 is removed (hence the +3).
	rankAfterMerge := func(i int) Rank {
		if i+3 < len(parts) {
			if r, ok := c.enc[piece[parts[i].start:parts[i+3].start]]; ok {
				return r
			}
		}
		return infRank
	}

	for i := 0; i+1 < len(piece); i++ {
		r, ok := c.enc[piece[i:i+2]]
		if !ok {
			r = infRank
		}
		parts = append(parts, part{start: i, rank: r})
	}
	parts = append(parts, part{start: len(piece) - 1, rank: infRank})
	parts = append(parts, part{start: len(piece), rank: infRank})

	for {
		// Lowest rank wins; the left-to-right scan breaks ties toward the
		// lowest start index.
		best, bestRank := -1, infRank
		for i := 0; i+1 < len(parts); i++ {
			if parts[i].rank < bestRank {
				best, bestRank = i, parts[i].rank
			}
		}
		if best < 0 {
			break
		}
		parts[best].rank = rankAfterMerge(best)
		if best > 0 {
			parts[best-1].rank = rankAfterMerge(best - 1)
		}
		parts = append(parts[:best+1], parts[best+2:]...)
	}
	return parts, release
}

// bytePairEncodeInto appends the ranks piece merges into and reports how many
// were appended. Construction guarantees every single byte is rankable.
func (c *coreBPE) bytePairEncodeInto(piece string, out *[]Rank) int {
	if len(piece) == 1 {
		*out = append(*out, c.enc[piece])
		return 1
	}
	parts, release := c.bytePairMerge(piece)
	defer release()
	n := 0
	for i := 0; i+1 < len(parts); i++ {
		*out = append(*out, c.enc[piece[parts[i].start:parts[i+1].start]])
		n++
	}
	return n
}

// bytePairSplit returns the byte ranges piece merges into, in order.
func (c *coreBPE) bytePairSplit(piece string) [][]byte {
	if len(piece) == 1 {
		return [][]byte{[]byte(piece)}
	}
	parts, release := c.bytePairMerge(piece)
	defer release()
	out := make([][]byte, 0, len(parts)-1)
	for i := 0; i+1 < len(parts); i++ {
		out = append(out, []byte(piece[parts[i].start:parts[i+1].start]))
	}
	return out
}

func (c *coreBPE) acquireParts(capHint int) ([]part, func()) {
	var p *[]part
	if v := c.partsPool.Get(); v != nil {
		p = v.(*[]part)
		if cap(*p) < capHint {
			buf := make([]part, 0, capHint)
			p = &buf
		} else {
			*p = (*p)[:0]
		}
	} else {
		buf := make([]part, 0, capHint)
		p = &buf
	}
	release := func() {
		if cap(*p) > 1<<12 {
			return
		}
		*p = (*p)[:0]
		c.partsPool.Put(p)
	}
	return *p, release
}
