//go:build goexperiment.arenas

package tokenizer

import (
	"arena"
	"fmt"
)

// Arena-backed inverse rank table. All storage lives in one dedicated arena;
// AppendInto copies out of the arena blob so no arena-backed slice escapes.
type arenaStore struct {
	a    *arena.Arena
	blob []byte
	off  []uint32
	used []bool
}

func newTokenStore(ranks map[string]Rank) (tokenStore, error) {
	a := arena.NewArena()
	maxID := Rank(0)
	total := 0
	for tok, id := range ranks {
		if id > maxID {
			maxID = id
		}
		total += len(tok)
	}
	size := int(maxID) + 1

	lens := arena.MakeSlice[uint32](a, size, size)
	used := arena.MakeSlice[bool](a, size, size)
	for tok, id := range ranks {
		if used[int(id)] {
			a.Free()
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTokenID, id)
		}
		used[int(id)] = true
		lens[int(id)] = uint32(len(tok))
	}

	blob := arena.MakeSlice[byte](a, total, total)
	off := arena.MakeSlice[uint32](a, size+1, size+1)
	pos := uint32(0)
	for i := 0; i < size; i++ {
		off[i] = pos
		pos += lens[i]
	}
	off[size] = pos
	for tok, id := range ranks {
		copy(blob[off[id]:off[id+1]], tok)
	}
	return &arenaStore{a: a, blob: blob, off: off, used: used}, nil
}

func (s *arenaStore) AppendInto(dst *[]byte, id Rank) bool {
	if int(id) >= len(s.used) || !s.used[id] {
		return false
	}
	*dst = append(*dst, s.blob[s.off[id]:s.off[id+1]]...)
	return true
}

func (s *arenaStore) Close() { s.a.Free() }
