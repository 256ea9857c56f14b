package tokenizer

// tokenStore abstracts storage of the inverse rank table (id to bytes).
// Implementations must not let references to internal storage escape.
type tokenStore interface {
	// AppendInto appends the bytes for token id into dst and returns true
	// if the id existed. Returns false when id is unknown.
	AppendInto(dst *[]byte, id Rank) bool
	// Close releases any resources held by the store.
	Close()
}
