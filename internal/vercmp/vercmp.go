// Package vercmp orders dotted-integer version strings such as "1.2.0".
//
// Versions are compared segment by segment after padding the shorter one with
// zeros, so "1.2" and "1.2.0" are equal. Segments that are not non-negative
// integers count as 0. An empty version is "absent" and sorts below every
// non-empty version.
package vercmp

import (
	"regexp"
	"strconv"
	"strings"
)

// validRegex matches one or more dot separated non-negative integers.
var validRegex = regexp.MustCompile(`^\d+(\.\d+)*$`)

// IsValid reports whether v is a well formed dotted-integer version.
func IsValid(v string) bool {
	return validRegex.MatchString(v)
}

// Compare returns a negative number when a < b, zero when a == b and a
// positive number when a > b.
func Compare(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := max(len(as), len(bs))
	for i := 0; i < n; i++ {
		av := segment(as, i)
		bv := segment(bs, i)
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Newer reports whether candidate is strictly newer than installed.
func Newer(candidate, installed string) bool {
	return Compare(candidate, installed) > 0
}

// Canonical returns the form under which equal versions collide: numeric
// segments without leading zeros and without trailing zero segments.
// "1.02.0" and "1.2" both canonicalise to "1.2"; "0.0" becomes "0".
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.Split(v, ".")
	nums := make([]string, len(parts))
	for i := range parts {
		nums[i] = strconv.FormatUint(segment(parts, i), 10)
	}
	for len(nums) > 1 && nums[len(nums)-1] == "0" {
		nums = nums[:len(nums)-1]
	}
	return strings.Join(nums, ".")
}

// segment returns the i-th numeric segment, 0 when missing or unparsable.
func segment(parts []string, i int) uint64 {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
