package rename

import (
	"fmt"
	"strings"
)

// maxCollisionAttempts bounds the counter suffix search so a pathological
// directory cannot spin the planner forever.
const maxCollisionAttempts = 10000

// resolver hands out unique final names for one plan computation. A name is
// taken when an earlier entry claimed it, or when it exists on disk and is
// not one of the names the plan will vacate.
type resolver struct {
	used    map[string]bool
	disk    map[string]bool
	planned map[string]bool
}

func newResolver(disk, planned map[string]bool) *resolver {
	return &resolver{
		used:    make(map[string]bool),
		disk:    disk,
		planned: planned,
	}
}

func (r *resolver) taken(name string) bool {
	if r.used[name] {
		return true
	}
	return r.disk[name] && !r.planned[name]
}

// claim returns the candidate itself when free, otherwise the first
// candidate_N variant with the counter inserted before the extension.
func (r *resolver) claim(candidate, ext string) (string, error) {
	if !r.taken(candidate) {
		r.used[candidate] = true
		return candidate, nil
	}

	stem := strings.TrimSuffix(candidate, ext)
	for n := 1; n <= maxCollisionAttempts; n++ {
		variant := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !r.taken(variant) {
			r.used[variant] = true
			return variant, nil
		}
	}
	return "", fmt.Errorf("%w: no free variant of %s within %d attempts", ErrCollisionExhausted, candidate, maxCollisionAttempts)
}

// claimExact marks a name as used without searching for variants. The
// planner calls it for entries that keep their original name.
func (r *resolver) claimExact(name string) {
	r.used[name] = true
}
