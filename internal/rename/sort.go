package rename

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// SortStrategy selects the ordering applied to listed entries before names
// are generated.
type SortStrategy string

const (
	// SortByName orders entries by case-insensitive file name.
	SortByName SortStrategy = "name"
	// SortByNumber orders entries by the first number embedded in the file
	// name, with unnumbered files first.
	SortByNumber SortStrategy = "number"
)

// ParseSortStrategy validates a strategy value from flags or config.
func ParseSortStrategy(s string) (SortStrategy, error) {
	switch SortStrategy(s) {
	case SortByName, SortByNumber:
		return SortStrategy(s), nil
	}
	return "", fmt.Errorf("unknown sort strategy %q (valid: name, number)", s)
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// numberKey extracts the ordering key for SortByNumber: the first maximal
// digit run in the stem, or -1 when the stem has no digits. The extension is
// never inspected. Runs too large for int64 saturate instead of overflowing.
func numberKey(e Entry) int64 {
	run := digitRun.FindString(e.Stem())
	if run == "" {
		return -1
	}
	n, err := strconv.ParseInt(run, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// compareNames orders file names case-insensitively, falling back to the
// case-sensitive name so the order stays total.
func compareNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return strings.Compare(la, lb)
	}
	return strings.Compare(a, b)
}

// SortEntries orders entries in place according to the strategy. The sort is
// stable and deterministic for any input permutation.
func SortEntries(entries []Entry, strategy SortStrategy) {
	switch strategy {
	case SortByNumber:
		slices.SortStableFunc(entries, func(a, b Entry) int {
			ka, kb := numberKey(a), numberKey(b)
			if ka != kb {
				if ka < kb {
					return -1
				}
				return 1
			}
			return compareNames(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(entries, func(a, b Entry) int {
			return compareNames(a.Name, b.Name)
		})
	}
}
