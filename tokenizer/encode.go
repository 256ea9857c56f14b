package tokenizer

// EncodeOrdinary tokenizes text without recognizing any special token
// literals; text containing them is treated as ordinary content. This is the
// fast path when the caller knows no specials are present or wants none.
func (c *coreBPE) EncodeOrdinary(text string) []Rank {
	var out []Rank
	c.encodeOrdinaryInto([]rune(text), &out)
	return out
}

// Encode tokenizes text, emitting the reserved id for every occurrence of a
// special literal in allowedSpecial and pretokenizing everything else. It
// also reports how many trailing tokens came from the final ordinary piece;
// zero means text ended on a special token or a pretokenizer boundary, which
// is always token-stable.
func (c *coreBPE) Encode(text string, allowedSpecial map[string]struct{}) ([]Rank, int) {
	var out []Rank
	last := c.encodeInto(text, allowedSpecial, &out)
	return out, last
}

// specialHit is an admissible special token occurrence, in rune offsets.
type specialHit struct {
	start, end int
	id         Rank
}

// nextSpecial finds the nearest occurrence of any allowed special literal at
// or after from, skipping occurrences whose literal is not allowed; those
// stay ordinary text.
func (c *coreBPE) nextSpecial(runes []rune, from int, allowed map[string]struct{}) (specialHit, bool) {
	re := c.specials.acquire()
	for {
		m, err := re.FindRunesMatchStartingAt(runes, from)
		if err != nil || m == nil || m.Length == 0 {
			return specialHit{}, false
		}
		lit := m.String()
		if _, ok := allowed[lit]; ok {
			return specialHit{start: m.Index, end: m.Index + m.Length, id: c.specialEnc[lit]}, true
		}
		from = m.Index + m.Length
	}
}

func (c *coreBPE) encodeInto(text string, allowedSpecial map[string]struct{}, out *[]Rank) int {
	runes := []rune(text)
	scanSpecials := c.specials != nil && len(allowedSpecial) > 0

	last := 0
	start := 0
	for start <= len(runes) {
		var hit specialHit
		ok := false
		if scanSpecials {
			hit, ok = c.nextSpecial(runes, start, allowedSpecial)
		}
		end := len(runes)
		if ok {
			end = hit.start
		}
		if n := c.encodeOrdinaryInto(runes[start:end], out); n > 0 {
			last = n
		}
		if !ok {
			break
		}
		*out = append(*out, hit.id)
		start = hit.end
		last = 0
	}
	return last
}

// encodeOrdinaryInto pretokenizes the rune segment and appends the tokens of
// every piece, returning the token count of the final piece.
func (c *coreBPE) encodeOrdinaryInto(seg []rune, out *[]Rank) int {
	if len(seg) == 0 {
		return 0
	}
	re := c.pretok.acquire()
	last := 0
	for m, _ := re.FindRunesMatch(seg); m != nil; m, _ = re.FindNextMatch(m) {
		piece := m.String()
		if id, ok := c.enc[piece]; ok {
			*out = append(*out, id)
			last = 1
			continue
		}
		last = c.bytePairEncodeInto(piece, out)
	}
	return last
}
