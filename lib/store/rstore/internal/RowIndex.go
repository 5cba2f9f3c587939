package internal

// RowIndex maintains the ordered set of keys in a mirrored table. The
// position of a key equals the order of its row in the remote sheet, so
// position i always corresponds to sheet row i+1+headerRows.
//
// The index only ever reflects confirmed remote state: the store appends or
// removes entries after the matching remote write succeeded.
type RowIndex struct {
	keys []string
	pos  map[string]int
}

// NewRowIndex creates an empty index.
func NewRowIndex() *RowIndex {
	return &RowIndex{pos: make(map[string]int)}
}

// Append adds a key at the end of the index and returns its position.
// The caller must ensure the key is not already present.
func (ix *RowIndex) Append(key string) int {
	p := len(ix.keys)
	ix.keys = append(ix.keys, key)
	ix.pos[key] = p
	return p
}

// PositionOf returns the position of a key and whether it is present.
func (ix *RowIndex) PositionOf(key string) (int, bool) {
	p, ok := ix.pos[key]
	return p, ok
}

// Remove deletes a key from the index and shifts every later key up by one,
// the same renumbering the sheet applies when a row is deleted. It returns
// the position the key held and whether it was present.
func (ix *RowIndex) Remove(key string) (int, bool) {
	p, ok := ix.pos[key]
	if !ok {
		return 0, false
	}

	ix.keys = append(ix.keys[:p], ix.keys[p+1:]...)
	delete(ix.pos, key)
	for i := p; i < len(ix.keys); i++ {
		ix.pos[ix.keys[i]] = i
	}
	return p, true
}

// Len returns the number of keys in the index.
func (ix *RowIndex) Len() int {
	return len(ix.keys)
}

// Keys returns a copy of all keys in row order.
func (ix *RowIndex) Keys() []string {
	return append([]string(nil), ix.keys...)
}

// Clear removes all keys.
func (ix *RowIndex) Clear() {
	ix.keys = nil
	ix.pos = make(map[string]int)
}
