package model

import "sort"

// Assignment maps a battery id to the ordered ids of the houses connected to
// it. A house appears in at most one list. Houses absent from every list are
// unconnected.
//
// Algorithms never mutate an Assignment they receive; they Clone it first.
type Assignment map[int][]int

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for b, hs := range a {
		cp := make([]int, len(hs))
		copy(cp, hs)
		out[b] = cp
	}
	return out
}

// Add appends house to battery's list.
func (a Assignment) Add(battery, house int) {
	a[battery] = append(a[battery], house)
}

// Remove deletes house from battery's list and reports whether it was present.
// The relative order of the remaining houses is kept.
func (a Assignment) Remove(battery, house int) bool {
	hs := a[battery]
	for i, h := range hs {
		if h == house {
			a[battery] = append(hs[:i:i], hs[i+1:]...)
			return true
		}
	}
	return false
}

// Houses returns the houses connected to battery.
func (a Assignment) Houses(battery int) []int {
	return a[battery]
}

// BatteryOf returns the battery serving house.
func (a Assignment) BatteryOf(house int) (int, bool) {
	for b, hs := range a {
		for _, h := range hs {
			if h == house {
				return b, true
			}
		}
	}
	return 0, false
}

// Owners returns a house id to battery id index.
func (a Assignment) Owners() map[int]int {
	out := make(map[int]int)
	for b, hs := range a {
		for _, h := range hs {
			out[h] = b
		}
	}
	return out
}

// Connected returns the number of connected houses.
func (a Assignment) Connected() int {
	n := 0
	for _, hs := range a {
		n += len(hs)
	}
	return n
}

// BatteryIDs returns the battery ids present in the assignment in ascending
// order, so that iteration over the map is deterministic.
func (a Assignment) BatteryIDs() []int {
	ids := make([]int, 0, len(a))
	for b := range a {
		ids = append(ids, b)
	}
	sort.Ints(ids)
	return ids
}
