package xrd

import "sort"

// familyClass accumulates members of one equivalence class. The first
// member seen is used for matching, but the class is reported under its
// maximal member.
type familyClass struct {
	first   MillerIndex
	members []MillerIndex
}

// isPermutation reports whether a and b hold the same multiset of absolute
// index values.
func isPermutation(a, b MillerIndex) bool {
	return absSorted(a) == absSorted(b)
}

func absSorted(m MillerIndex) MillerIndex {
	out := m
	for i, v := range out {
		if v < 0 {
			out[i] = -v
		}
	}
	sort.Ints(out[:])
	return out
}

// Families partitions hkls into sign- and order-insensitive permutation
// classes. Classes are returned in the order their first member appears.
// Each class is keyed by its maximal member, which need not be the member
// seen first.
func Families(hkls []MillerIndex) []Family {
	var classes []*familyClass
	for _, hkl := range hkls {
		var found *familyClass
		for _, c := range classes {
			if isPermutation(hkl, c.first) {
				found = c
				break
			}
		}
		if found == nil {
			classes = append(classes, &familyClass{first: hkl, members: []MillerIndex{hkl}})
			continue
		}
		found.members = append(found.members, hkl)
	}

	out := make([]Family, 0, len(classes))
	for _, c := range classes {
		top := c.members[0]
		for _, m := range c.members[1:] {
			if top.Less(m) {
				top = m
			}
		}
		out = append(out, Family{HKL: top, Multiplicity: len(c.members)})
	}
	return out
}

// GroupFamilies returns the multiplicity of each family keyed by the
// family's maximal member. Counts sum to len(hkls).
func GroupFamilies(hkls []MillerIndex) map[MillerIndex]int {
	families := Families(hkls)
	out := make(map[MillerIndex]int, len(families))
	for _, f := range families {
		out[f.HKL] = f.Multiplicity
	}
	return out
}
