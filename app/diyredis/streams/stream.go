// Package streams implements an append-only ordered collection of stream
// entries, keyed by (ms, seq) id pairs, backed by the radix tree in
// radix.go. It enforces stream monotonicity (spec invariant I2): Put
// rejects any key that is not strictly greater than the stream's last
// entry, which also enforces invariant I3 (no entry at 0-0) since the
// zero value of Stream has LastEntry.Key == MinKey.
package streams

import "errors"

// Stream is an ordered, append-only sequence of entries. The zero value is
// an empty stream ready for use.
type Stream struct {
	root      RxNode
	LastEntry Entry
	count     int
}

// Put appends an entry under key. It fails if key is not strictly greater
// than the stream's current last entry; the stream is left unmodified in
// that case. Command-level handlers (XADD) are expected to produce the more
// specific wire error text for the 0-0 and stale-id cases before calling
// Put; this is the engine's last line of defense.
func (s *Stream) Put(key Key, val []string) error {
	if !key.GreaterThan(s.LastEntry.Key) {
		return errors.New("id is not greater than the stream's last entry")
	}

	newNode := s.root.create(key.internalRepr())
	newNode.entry = &Entry{Key: key, Val: val}
	s.LastEntry = *newNode.entry
	s.count++
	return nil
}

// Search returns the fields stored at key, if any.
func (s *Stream) Search(key Key) ([]string, bool) {
	if s.count == 0 {
		return nil, false
	}
	node, failIdx, _ := s.root.longestCommonPrefix(key.internalRepr())
	if failIdx == -1 {
		return node.entry.Val, true
	}
	return nil, false
}

// Range returns all entries with fromKey <= id <= toKey, ordered from
// lowest to highest key.
func (s *Stream) Range(fromKey, toKey Key) []Entry {
	if s.count == 0 {
		return []Entry{}
	}
	return s.root.rangeEntries(fromKey.internalRepr(), toKey.internalRepr())
}

// Len reports the number of entries currently committed to the stream.
func (s *Stream) Len() int {
	return s.count
}
