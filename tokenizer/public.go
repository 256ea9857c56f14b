package tokenizer

// Public thin wrappers to keep the package boundary small.

// Core is an alias exposing the exported methods defined on coreBPE.
type Core = coreBPE

// NewCoreBPE builds an engine from a rank table, a special token mapping, and
// a pretokenizer pattern. The tables are snapshotted conceptually: they must
// not be mutated by the caller afterwards.
func NewCoreBPE(ranks map[string]Rank, specials map[string]Rank, pattern string) (*Core, error) {
	return newCoreBPE(ranks, specials, pattern)
}
