package tokenizer

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/dlclark/regexp2"
)

// maxPatternSlots bounds how many independently compiled instances of one
// pattern the engine provisions for parallel callers.
const maxPatternSlots = 8

// patternPool holds a fixed number of compiled copies of a single pattern.
// regexp2 serializes matching per Regexp behind an internal runner lock, so
// spreading callers across slots keeps concurrent encodes from queueing on
// one matcher. Slots are handed out round-robin; sharing a slot is safe,
// merely slower.
type patternPool struct {
	slots [maxPatternSlots]*regexp2.Regexp
	next  atomic.Uint32
}

func compilePatternPool(pattern string) (*patternPool, error) {
	p := &patternPool{}
	for i := range p.slots {
		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, err
		}
		p.slots[i] = re
	}
	return p, nil
}

func (p *patternPool) acquire() *regexp2.Regexp {
	return p.slots[int(p.next.Add(1))%maxPatternSlots]
}

// specialPattern builds the alternation over the escaped special token
// literals. Longest literals come first so that a literal nested inside
// another (for example "<|end|>" inside "<|endoftext|>") always matches as
// its longest form.
func specialPattern(specials map[string]Rank) string {
	lits := make([]string, 0, len(specials))
	for lit := range specials {
		lits = append(lits, lit)
	}
	sort.Slice(lits, func(i, j int) bool {
		if len(lits[i]) != len(lits[j]) {
			return len(lits[i]) > len(lits[j])
		}
		return lits[i] < lits[j]
	})
	for i, lit := range lits {
		lits[i] = regexp2.Escape(lit)
	}
	return strings.Join(lits, "|")
}
