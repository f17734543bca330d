package domain

import (
	"slices"
	"strconv"
	"strings"
)

// SegmentSet is an unordered set of segment IDs.
type SegmentSet map[int64]struct{}

// NewSegmentSet builds a set from the given IDs; duplicates collapse.
func NewSegmentSet(ids []int64) SegmentSet {
	s := make(SegmentSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s SegmentSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Merge adds every ID of other to s.
func (s SegmentSet) Merge(other SegmentSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// IDs returns the set members in ascending order.
func (s SegmentSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Key returns a canonical string for the set, equal for equal sets.
func (s SegmentSet) Key() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b SegmentSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for id := range small {
		if large.Contains(id) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
