package game

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Lanes is the number of key columns on the keyboard layout.
const Lanes = 10

// Three keys alias every lane, one per keyboard row.
var lanes = map[rune]int{
	'q': 0, 'a': 0, 'z': 0,
	'w': 1, 's': 1, 'x': 1,
	'e': 2, 'd': 2, 'c': 2,
	'r': 3, 'f': 3, 'v': 3,
	't': 4, 'g': 4, 'b': 4,
	'y': 5, 'h': 5, 'n': 5,
	'u': 6, 'j': 6, 'm': 6,
	'i': 7, 'k': 7, ',': 7,
	'o': 8, 'l': 8, '.': 8,
	'p': 9, ';': 9, '/': 9,
}

// Rows are weighted 1, 2 and 4 so a key combo's row sum identifies which
// rows it uses.
var rows = map[rune]int{
	'q': 1, 'w': 1, 'e': 1, 'r': 1, 't': 1, 'y': 1, 'u': 1, 'i': 1, 'o': 1, 'p': 1,
	'a': 2, 's': 2, 'd': 2, 'f': 2, 'g': 2, 'h': 2, 'j': 2, 'k': 2, 'l': 2, ';': 2,
	'z': 4, 'x': 4, 'c': 4, 'v': 4, 'b': 4, 'n': 4, 'm': 4, ',': 4, '.': 4, '/': 4,
}

// Lane returns the lane a key belongs to.
func Lane(key rune) (int, bool) {
	l, ok := lanes[key]
	return l, ok
}

// Row returns the row weight of a key, 0 if it is not part of the layout.
func Row(key rune) int {
	return rows[key]
}

// IsKey reports whether the key is part of the playing layout.
func IsKey(key rune) bool {
	_, ok := lanes[key]
	return ok
}

// Keys is a set of keys. It is kept sorted and free of duplicates so two
// sets are equal exactly when their Keys values are equal.
type Keys string

func NewKeys(s string) Keys {
	rs := []rune(strings.ToLower(s))
	slices.Sort(rs)
	out := rs[:0]
	for i, r := range rs {
		if i > 0 && r == rs[i-1] {
			continue
		}
		out = append(out, r)
	}
	return Keys(out)
}

func (k Keys) Runes() []rune {
	return []rune(k)
}

func (k Keys) Contains(key rune) bool {
	return strings.ContainsRune(string(k), key)
}

// Lane returns the lane of the first key in the set, -1 for an empty set or
// an unknown key.
func (k Keys) Lane() int {
	for _, r := range k {
		if l, ok := Lane(r); ok {
			return l
		}
		return -1
	}
	return -1
}

// Rows returns the sum of the row weights of the keys in the set.
func (k Keys) Rows() int {
	sum := 0
	for _, r := range k {
		sum += Row(r)
	}
	return sum
}
