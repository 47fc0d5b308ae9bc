package version

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// ordering compares two versions within one regime.
type ordering interface {
	compare(a, b *Version) int
}

// semanticOrdering defers to semver precedence rules.
type semanticOrdering struct{}

func (semanticOrdering) compare(a, b *Version) int {
	return a.sem.Compare(b.sem)
}

// freeFormOrdering compares numeric cores component-wise (a strict prefix
// sorts lower), then ranks a release above any prerelease of the same core,
// then compares prerelease identifiers.
type freeFormOrdering struct{}

func (freeFormOrdering) compare(a, b *Version) int {
	if c := compareCore(a.core, b.core); c != 0 {
		return c
	}
	return comparePrerelease(a.pre, b.pre)
}

func orderingFor(a, b *Version) ordering {
	if a.sem != nil && b.sem != nil {
		return semanticOrdering{}
	}
	return freeFormOrdering{}
}

// Compare returns -1, 0 or 1 as a sorts before, equal to or after b. Both
// semantic and free-form versions share this ordering, so a mixed tag set is
// totally ordered.
func Compare(a, b *Version) int {
	return orderingFor(a, b).compare(a, b)
}

// LessThan reports whether v sorts before o.
func (v *Version) LessThan(o *Version) bool {
	return Compare(v, o) < 0
}

// GreaterThan reports whether v sorts after o.
func (v *Version) GreaterThan(o *Version) bool {
	return Compare(v, o) > 0
}

// Equal reports whether v and o have equal precedence. Different literals
// may be equal (for example "1.0.0" and "1.00.0").
func (v *Version) Equal(o *Version) bool {
	return Compare(v, o) == 0
}

// Sort orders versions from newest to oldest. Equal versions keep their
// relative order.
func Sort(vs []*Version) {
	slices.SortStableFunc(vs, func(a, b *Version) int {
		return Compare(b, a)
	})
}

// Newest returns the highest version in vs, or nil when vs is empty.
func Newest(vs []*Version) *Version {
	var best *Version
	for _, v := range vs {
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

func compareCore(a, b []uint64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func comparePrerelease(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}

// compareIdentifier ranks numeric identifiers numerically and below
// alphanumeric ones.
func compareIdentifier(a, b string) int {
	an, aErr := strconv.ParseUint(a, 10, 64)
	bn, bErr := strconv.ParseUint(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(an, bn)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}
