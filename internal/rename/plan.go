package rename

// PlanOptions configures plan construction for a single run.
type PlanOptions struct {
	Sort    SortStrategy
	Naming  NameStrategy
	Prefix  string
	Suffix  string
	ZeroPad int
}

// PlanEntry pairs an entry with its final name. Err is set only when the
// collision counter was exhausted; the entry then keeps its original name
// and the applier treats it as failed without touching the file.
type PlanEntry struct {
	Entry
	NewName string
	Err     error
}

// Changed reports whether applying this entry would rename the file.
func (pe PlanEntry) Changed() bool {
	return pe.Err == nil && pe.NewName != pe.Name
}

// Plan is the complete set of rename decisions for one directory, in apply
// order. It is pure data: building it twice over the same input yields
// identical plans, and previewing it touches nothing.
type Plan struct {
	Dir     string
	Entries []PlanEntry
}

// Changes counts the entries that would actually be renamed.
func (p *Plan) Changes() int {
	n := 0
	for _, pe := range p.Entries {
		if pe.Changed() {
			n++
		}
	}
	return n
}

// BuildPlan lists dir and produces the rename plan for it.
func BuildPlan(dir string, opts PlanOptions) (*Plan, error) {
	entries, err := List(dir)
	if err != nil {
		return nil, err
	}
	disk, err := DiskNames(dir)
	if err != nil {
		return nil, err
	}
	return PlanEntries(dir, entries, disk, opts), nil
}

// PlanEntries builds a plan from pre-listed entries. diskNames holds every
// name currently present in dir; generated names steer clear of names that
// do not belong to the plan, while names the plan is about to vacate stay
// available. The input slice is not modified.
func PlanEntries(dir string, entries []Entry, diskNames map[string]bool, opts PlanOptions) *Plan {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	SortEntries(ordered, opts.Sort)

	planned := make(map[string]bool, len(ordered))
	for _, e := range ordered {
		planned[e.Name] = true
	}

	res := newResolver(diskNames, planned)
	nameOpts := NameOptions{Prefix: opts.Prefix, Suffix: opts.Suffix, ZeroPad: opts.ZeroPad}

	plan := &Plan{Dir: dir, Entries: make([]PlanEntry, 0, len(ordered))}
	for i, e := range ordered {
		candidate := Generate(e, i+1, opts.Naming, nameOpts)
		final, err := res.claim(candidate, e.Ext)
		if err != nil {
			// The entry keeps its original name so applying it is a no-op.
			res.claimExact(e.Name)
			plan.Entries = append(plan.Entries, PlanEntry{Entry: e, NewName: e.Name, Err: err})
			continue
		}
		plan.Entries = append(plan.Entries, PlanEntry{Entry: e, NewName: final})
	}
	return plan
}
