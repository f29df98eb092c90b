package scan

import "sort"

// Interval is a half-open byte range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two intervals share at least one offset.
func (iv Interval) Overlaps(other Interval) bool {
	return max(iv.Start, other.Start) < min(iv.End, other.End)
}

// Occupancy is the set of intervals claimed during one scan pass.
// Claimed intervals never overlap each other, so they are kept sorted by
// start and an overlap query only needs to inspect the two neighbours of
// the insertion point.
type Occupancy struct {
	claimed []Interval
}

// Overlaps reports whether iv overlaps any claimed interval.
func (o *Occupancy) Overlaps(iv Interval) bool {
	i := sort.Search(len(o.claimed), func(i int) bool {
		return o.claimed[i].Start >= iv.Start
	})
	if i < len(o.claimed) && o.claimed[i].Overlaps(iv) {
		return true
	}
	if i > 0 && o.claimed[i-1].Overlaps(iv) {
		return true
	}
	return false
}

// Claim records iv. Callers check Overlaps first.
func (o *Occupancy) Claim(iv Interval) {
	i := sort.Search(len(o.claimed), func(i int) bool {
		return o.claimed[i].Start >= iv.Start
	})
	o.claimed = append(o.claimed, Interval{})
	copy(o.claimed[i+1:], o.claimed[i:])
	o.claimed[i] = iv
}

// TryClaim claims iv when it is free and reports whether it did.
func (o *Occupancy) TryClaim(iv Interval) bool {
	if o.Overlaps(iv) {
		return false
	}
	o.Claim(iv)
	return true
}

// Len returns the number of claimed intervals.
func (o *Occupancy) Len() int {
	return len(o.claimed)
}
