package rename

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NameStrategy selects how the base of each new file name is derived.
type NameStrategy string

const (
	// NameSequential numbers entries 1..n in sorted order.
	NameSequential NameStrategy = "sequential"
	// NameNumbersOnly keeps only the digits of the original stem.
	NameNumbersOnly NameStrategy = "numbers-only"
	// NameTextOnly keeps everything but the digits of the original stem.
	NameTextOnly NameStrategy = "text-only"
	// NameNumbersAtEnd uses the number that ends the original stem.
	NameNumbersAtEnd NameStrategy = "numbers-at-end"
)

// ParseNameStrategy validates a strategy value from flags or config.
func ParseNameStrategy(s string) (NameStrategy, error) {
	switch NameStrategy(s) {
	case NameSequential, NameNumbersOnly, NameTextOnly, NameNumbersAtEnd:
		return NameStrategy(s), nil
	}
	return "", fmt.Errorf("unknown naming strategy %q (valid: sequential, numbers-only, text-only, numbers-at-end)", s)
}

// NameOptions adjusts generated names. Prefix and Suffix are sanitized on
// first use; ZeroPad left-pads all-digit bases with zeros to width ZeroPad+1.
type NameOptions struct {
	Prefix  string
	Suffix  string
	ZeroPad int
}

// sanitized returns a copy with the affixes stripped of characters that
// cannot appear in file names. The generated base never needs this; it is
// derived from names that already exist on disk or from counters.
func (o NameOptions) sanitized() NameOptions {
	o.Prefix = sanitizeAffix(o.Prefix)
	o.Suffix = sanitizeAffix(o.Suffix)
	return o
}

var trailingNumber = regexp.MustCompile(`[^0-9]([0-9]+)$`)

// Generate produces the candidate file name for an entry at 1-based position
// index in the sorted plan. The original extension is always re-appended
// unchanged. Generation is pure: no filesystem access, no shared state.
func Generate(e Entry, index int, strategy NameStrategy, opts NameOptions) string {
	opts = opts.sanitized()
	base := generateBase(e.Stem(), index, strategy)
	if opts.ZeroPad > 0 && isAllDigits(base) {
		base = zeroPad(base, opts.ZeroPad+1)
	}
	return opts.Prefix + base + opts.Suffix + e.Ext
}

func generateBase(stem string, index int, strategy NameStrategy) string {
	switch strategy {
	case NameNumbersOnly:
		var b strings.Builder
		for _, r := range stem {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			return strconv.Itoa(index)
		}
		return b.String()

	case NameTextOnly:
		// Digits are removed; every other character keeps its original
		// position, including interior whitespace.
		var b strings.Builder
		for _, r := range stem {
			if r < '0' || r > '9' {
				b.WriteRune(r)
			}
		}
		if strings.TrimSpace(b.String()) == "" {
			return strconv.Itoa(index)
		}
		return b.String()

	case NameNumbersAtEnd:
		m := trailingNumber.FindStringSubmatch(stem)
		if m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil && n > 0 {
				return strconv.FormatInt(n, 10)
			}
		}
		return strconv.Itoa(index)

	default:
		return strconv.Itoa(index)
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
