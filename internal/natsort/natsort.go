// Package natsort orders strings the way people read file names: runs of
// digits compare by numeric value, so "f2" sorts before "f12".
package natsort

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Compare returns -1, 0, or 1 as a sorts before, equal to, or after b.
//
// Digit runs compare by value (leading zeros ignored), other runs compare
// case-insensitively. Strings that tie under those rules fall back to a
// byte-wise comparison so the order is total and platform independent.
func Compare(a, b string) int {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		ar, aw := utf8.DecodeRuneInString(a[ai:])
		br, bw := utf8.DecodeRuneInString(b[bi:])

		if isDigit(ar) && isDigit(br) {
			aEnd := digitRunEnd(a, ai)
			bEnd := digitRunEnd(b, bi)
			if c := compareNumeric(a[ai:aEnd], b[bi:bEnd]); c != 0 {
				return c
			}
			ai, bi = aEnd, bEnd
			continue
		}

		if c := compareRune(ar, br); c != 0 {
			return c
		}
		ai += aw
		bi += bw
	}

	switch {
	case ai < len(a):
		return 1
	case bi < len(b):
		return -1
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts s in natural order.
func Sort(s []string) {
	sort.SliceStable(s, func(i, j int) bool { return Less(s[i], s[j]) })
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func digitRunEnd(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// compareNumeric compares two ASCII digit strings by value without parsing,
// so arbitrarily long runs cannot overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func compareRune(a, b rune) int {
	la, lb := unicode.ToLower(a), unicode.ToLower(b)
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	}
	return 0
}
