package tokenizer

import "errors"

// Construction-time failures. Any of these aborts engine creation; there is
// no partially constructed engine.
var (
	// ErrInvalidPattern reports a pretokenizer pattern that does not compile.
	ErrInvalidPattern = errors.New("tokenizer: invalid pretokenizer pattern")
	// ErrInvalidSpecialPattern reports that the escaped, alternated special
	// token literals did not compile.
	ErrInvalidSpecialPattern = errors.New("tokenizer: invalid special token pattern")
	// ErrDuplicateTokenID reports two distinct byte sequences sharing a rank.
	ErrDuplicateTokenID = errors.New("tokenizer: duplicate token id in rank table")
	// ErrMissingByteToken reports a rank table without an entry for every
	// single byte. Such a table could fail mid-encode, so it is rejected up
	// front.
	ErrMissingByteToken = errors.New("tokenizer: rank table is missing a single-byte entry")
)

// Call-time failures, raised only by the strict single-item lookups. The bulk
// decode path deliberately drops unknown ids instead.
var (
	ErrUnknownToken = errors.New("tokenizer: unknown token id")
	ErrUnknownPiece = errors.New("tokenizer: piece is not in the vocabulary")
)
