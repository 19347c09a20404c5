package scan

// DefaultDelimiters is the delimiter set bound to every newly opened
// device session: space, tab, newline, carriage return, form feed and
// vertical tab.
const DefaultDelimiters = " \t\n\r\f\v"

// Set is a delimiter byte set. The zero value matches nothing; build
// one with NewSet or Default.
type Set struct {
	bytes  []byte
	member [256]bool
}

// NewSet builds a Set from the given delimiter bytes. The input is
// copied; membership is a set, but Bytes preserves the original
// sequence including duplicates.
func NewSet(delims []byte) *Set {
	s := &Set{bytes: append([]byte(nil), delims...)}
	for _, b := range delims {
		s.member[b] = true
	}
	return s
}

// Default returns a Set holding DefaultDelimiters.
func Default() *Set {
	return NewSet([]byte(DefaultDelimiters))
}

// Contains reports whether b is a delimiter.
func (s *Set) Contains(b byte) bool {
	return s.member[b]
}

// Bytes returns a copy of the bytes the set was built from.
func (s *Set) Bytes() []byte {
	return append([]byte(nil), s.bytes...)
}

// Len returns the number of bytes the set was built from.
func (s *Set) Len() int {
	return len(s.bytes)
}

// String implements fmt.Stringer.
func (s *Set) String() string {
	return string(s.bytes)
}

// Next extracts the next token from content starting at pos.
//
// It first skips any leading run of delimiter bytes, then collects
// non-delimiter bytes as the token. At most capacity bytes of the token
// are returned, but the returned position always advances past the
// token's natural end: a truncated remainder is skipped, not carried
// into the next call.
//
// Next returns the (possibly truncated) token, the number of bytes in
// it, and the new scan position. A zero-length token with newPos == pos
// signals end-of-stream. With capacity 0 the position is left at pos.
func Next(content []byte, pos int, delims *Set, capacity int) (token []byte, n int, newPos int) {
	if pos >= len(content) || capacity <= 0 {
		return nil, 0, pos
	}

	start := pos
	for start < len(content) && delims.Contains(content[start]) {
		start++
	}
	if start >= len(content) {
		// Only delimiters remained: end-of-stream.
		return nil, 0, pos
	}

	end := start
	for end < len(content) && !delims.Contains(content[end]) {
		end++
	}

	n = end - start
	if n > capacity {
		n = capacity
	}
	return content[start : start+n : start+n], n, end
}

// Split returns all tokens in content using delims, with leading,
// trailing and consecutive delimiters collapsed. It is the reference
// semantics of repeated Next calls with unlimited capacity.
func Split(content []byte, delims *Set) [][]byte {
	var out [][]byte
	pos := 0
	for {
		tok, n, newPos := Next(content, pos, delims, len(content)+1)
		if n == 0 && newPos == pos {
			return out
		}
		out = append(out, tok)
		pos = newPos
	}
}
