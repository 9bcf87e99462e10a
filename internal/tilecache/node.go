// Package tilecache implements the memory-bounded, priority-aware tile
// cache: a keyed store of decoded tile nodes, a multi-priority
// query/notify protocol between tile producers (readers) and tile
// consumers (layers), and a cooperative single-read-per-turn scheduler.
//
// Grounded on original_source/xqx_map_cache.{h,c}. The original's
// intrusive doubly-linked lists and manual hash-bucket chaining are
// replaced by container/list and a plain Go map, per spec.md's Design Note
// to avoid exposing node pointers across module boundaries — callers only
// ever see *Node values returned from Lookup/Insert, never list internals.
package tilecache

import "github.com/LaPingvino/tilepilot/internal/tilecodec"

// State tags the three cache node variants. Numeric values match the
// original's enum (ERROR, VALID_DATA, VALID_COLOR) so that eval/state
// comparisons read the same way as the source this is ported from.
type State int

const (
	StateError State = iota
	StateData
	StateColor
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateData:
		return "data"
	case StateColor:
		return "color"
	default:
		return "unknown"
	}
}

// Key identifies a node within one map: (level, x, y). The map itself is
// identified by the *MapHandle the key is looked up against, not carried
// inside Key, since every cache operation on a node already happens in the
// context of one map.
type Key struct {
	Level, X, Y uint32
}

// Node is one cache entry: a tagged union over {Error, Color(rgb),
// Data(pixmap)}. Exactly one of Pixmap/Color is meaningful, selected by
// State.
type Node struct {
	Map   *MapHandle
	Key   Key
	State State

	Pixmap *tilecodec.Pixmap // valid iff State == StateData
	Color  uint32            // valid iff State == StateColor
}

// legacyHash reproduces the original's bucket formula
// (l*3 + x*7 + y*13) mod hash_size. Not used for lookup correctness (Go's
// map already gives O(1) access), but kept and tested since spec.md lists
// the formula as a named, testable artifact of the ported design.
func legacyHash(l, x, y uint32, hashSize uint32) uint32 {
	return (l*3 + x*7 + y*13) % hashSize
}
