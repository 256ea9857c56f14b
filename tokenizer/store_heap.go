//go:build !goexperiment.arenas

package tokenizer

import "fmt"

// Heap-backed inverse rank table indexed directly by id. This is the default
// implementation and the fallback when arenas are not enabled.

type heapStore struct {
	arr [][]byte
}

// newTokenStore inverts the rank table. A rank claimed by two distinct byte
// sequences means the table is not injective and construction must fail.
func newTokenStore(ranks map[string]Rank) (tokenStore, error) {
	maxID := Rank(0)
	for _, id := range ranks {
		if id > maxID {
			maxID = id
		}
	}
	arr := make([][]byte, int(maxID)+1)
	for tok, id := range ranks {
		if arr[int(id)] != nil {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTokenID, id)
		}
		arr[int(id)] = []byte(tok)
	}
	return &heapStore{arr: arr}, nil
}

func (s *heapStore) AppendInto(dst *[]byte, id Rank) bool {
	if int(id) >= len(s.arr) {
		return false
	}
	b := s.arr[id]
	if b == nil {
		return false
	}
	*dst = append(*dst, b...)
	return true
}

func (s *heapStore) Close() {}
