package codec

import "github.com/cswinter/locustdb/errs"

// dictCollisionTracker collects a column's distinct string values under
// their hash code (internal/hash's full 64-bit xxHash64), keeping them in
// first-seen order. Hash collisions between distinct strings are rare but
// must be detected rather than silently merging two values into one code.
//
// Adapted from the teacher's metric-name collision tracker
// (internal/collision.Tracker): same "first value by hash wins, divergent
// insert sets a flag and falls back to an explicit list" shape, retargeted
// from per-blob metric identifiers to per-column dictionary codes.
type dictCollisionTracker struct {
	byCode       map[uint64]string
	ordered      []string
	hasCollision bool
}

func newDictCollisionTracker() *dictCollisionTracker {
	return &dictCollisionTracker{byCode: make(map[uint64]string)}
}

// Track records value under code, returning an error only if code is already
// bound to a *different* value — a genuine hash collision between two
// distinct dictionary entries. Re-inserting the same (code, value) pair is a
// no-op, matching repeated values within a column.
func (t *dictCollisionTracker) Track(code uint64, value string) error {
	existing, ok := t.byCode[code]
	if !ok {
		t.byCode[code] = value
		t.ordered = append(t.ordered, value)

		return nil
	}

	if existing == value {
		return nil
	}

	t.hasCollision = true

	return errs.Classify(errs.KindInternal, errs.ErrDictIndexOutOfRange)
}

// HasCollision reports whether any two distinct strings in this column
// hashed to the same code.
func (t *dictCollisionTracker) HasCollision() bool { return t.hasCollision }

// Values returns the distinct values in first-seen order, the order the
// dictionary data section is serialized in.
func (t *dictCollisionTracker) Values() []string { return t.ordered }
