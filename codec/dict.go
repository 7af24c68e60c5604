package codec

import (
	"fmt"

	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/internal/hash"
)

// buildDictionary assigns a code to each distinct string in vs and returns
// the per-row codes plus the dictionary in code order, ready to be narrowed
// and stored as the DictLookup pipeline's value section and pushed
// dictionary section respectively. Codes are dense 0..N-1 indices in
// first-seen order; each value's xxHash64 (linear-probed past collisions)
// is only used while collecting the distinct values.
func buildDictionary(vs []string) (codes []uint64, dict []string) {
	tracker := newDictCollisionTracker()
	assigned := make(map[string]uint64, len(vs))
	codes = make([]uint64, len(vs))

	for i, s := range vs {
		if code, ok := assigned[s]; ok {
			codes[i] = code
			continue
		}

		code := hash.ID(s)
		for {
			if err := tracker.Track(code, s); err == nil {
				break
			}
			code++ // linear probe past the collision
		}

		assigned[s] = code
		codes[i] = code
	}

	// Re-express codes as dense 0..N-1 indices into the dictionary list, in
	// first-seen order: the hash is not the stored index itself (which must
	// be small and narrow-encodable).
	dict = tracker.Values()
	slot := make(map[string]int, len(dict))
	for i, s := range dict {
		slot[s] = i
	}

	dense := make([]uint64, len(vs))
	for i, s := range vs {
		dense[i] = uint64(slot[s])
	}

	return dense, dict
}

// lookupDictionary resolves codes against dict, the inverse of buildDictionary.
func lookupDictionary(codes []int64, dict []string) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || int(c) >= len(dict) {
			return nil, fmt.Errorf("%w: code %d, dictionary size %d", errs.ErrDictIndexOutOfRange, c, len(dict))
		}

		out[i] = dict[c]
	}

	return out, nil
}
