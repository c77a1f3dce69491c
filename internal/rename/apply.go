package rename

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mediabatch/internal/oplog"

	"github.com/google/uuid"
)

// ApplyFuncs bundles the filesystem and logging callbacks used while a plan
// is applied. Tests and dry-run executions can override any subset.
type ApplyFuncs struct {
	Rename       func(oldPath, newPath string) error
	Stat         func(path string) (os.FileInfo, error)
	StartSession func(command string, args []string) error
	EndSession   func() error
	LogRename    func(sourcePath, destPath string, success bool, err error)
}

func (f ApplyFuncs) withDefaults() ApplyFuncs {
	if f.Rename == nil {
		f.Rename = os.Rename
	}
	if f.Stat == nil {
		f.Stat = os.Stat
	}
	if f.StartSession == nil {
		f.StartSession = oplog.StartSession
	}
	if f.EndSession == nil {
		f.EndSession = oplog.EndSession
	}
	if f.LogRename == nil {
		f.LogRename = oplog.LogRename
	}
	return f
}

// ApplyConfig configures the behaviour of an apply run.
type ApplyConfig struct {
	// DryRun simulates the run: no filesystem access, no operation log.
	DryRun      bool
	Command     string
	CommandArgs []string
	Functions   ApplyFuncs
	Stderr      io.Writer
}

const (
	phaseParking = iota
	phaseFinalizing
)

// Applier executes a plan one rename at a time so interactive front-ends can
// stay responsive between steps. Every changing entry is first parked under
// a run-unique temporary name, then moved to its final name; entries whose
// names trade places therefore never clash.
type Applier struct {
	plan *Plan
	cfg  ApplyConfig
	fns  ApplyFuncs

	runID    string
	changing []int
	parked   []bool
	results  []Result

	phase    int
	pos      int
	rollback bool
	steps    int
	stepsRun int

	started  bool
	finished bool
	stderr   io.Writer
}

// NewApplier prepares an apply run for the plan. Entries that keep their
// name and entries that failed planning are resolved immediately; the
// remaining entries are processed by Next.
func NewApplier(plan *Plan, cfg ApplyConfig) *Applier {
	cfg.Functions = cfg.Functions.withDefaults()
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	a := &Applier{
		plan:    plan,
		cfg:     cfg,
		fns:     cfg.Functions,
		runID:   uuid.NewString(),
		results: make([]Result, len(plan.Entries)),
		stderr:  cfg.Stderr,
	}

	for i, pe := range plan.Entries {
		switch {
		case pe.Err != nil:
			a.results[i] = a.result(pe, OutcomeFailed, pe.Err.Error())
		case !pe.Changed():
			a.results[i] = a.result(pe, OutcomeSkipped, "unchanged")
		default:
			a.changing = append(a.changing, i)
		}
	}
	a.parked = make([]bool, len(a.changing))

	if cfg.DryRun {
		a.steps = len(a.changing)
	} else {
		a.steps = 2 * len(a.changing)
	}
	if a.steps == 0 {
		a.finishRun()
	}
	return a
}

// Steps returns the total number of steps the run will take.
func (a *Applier) Steps() int { return a.steps }

// StepsRun returns the number of steps completed so far.
func (a *Applier) StepsRun() int { return a.stepsRun }

// Finished reports whether the run is complete.
func (a *Applier) Finished() bool { return a.finished }

// Report returns the aggregated results. It is only complete once Finished
// reports true.
func (a *Applier) Report() *Report {
	return Summarize(a.results)
}

// Run drives the applier to completion and returns the final report.
func (a *Applier) Run(ctx context.Context) *Report {
	for !a.Next(ctx) {
	}
	return a.Report()
}

// Next executes a single step and reports whether the run is complete. A
// canceled context stops new work: unparked entries are skipped and parked
// entries are returned to their original names.
func (a *Applier) Next(ctx context.Context) bool {
	if a.finished {
		return true
	}
	if a.cfg.DryRun {
		return a.nextDryRun()
	}
	a.ensureSession()

	switch a.phase {
	case phaseParking:
		if a.pos >= len(a.changing) {
			a.phase = phaseFinalizing
			a.pos = 0
			if ctx.Err() != nil {
				a.rollback = true
			}
			return a.Next(ctx)
		}
		a.parkStep(ctx)
	case phaseFinalizing:
		if a.pos >= len(a.changing) {
			a.finishRun()
			return true
		}
		a.finalizeStep()
	}

	if a.phase == phaseFinalizing && a.pos >= len(a.changing) {
		a.finishRun()
	}
	return a.finished
}

// nextDryRun marks one pending entry as renamed without touching anything.
func (a *Applier) nextDryRun() bool {
	if a.pos >= len(a.changing) {
		a.finishRun()
		return true
	}
	pe := a.plan.Entries[a.changing[a.pos]]
	a.results[a.changing[a.pos]] = a.result(pe, OutcomeRenamed, "")
	a.pos++
	a.stepsRun++
	if a.pos >= len(a.changing) {
		a.finishRun()
	}
	return a.finished
}

// parkStep moves the current entry to its temporary name.
func (a *Applier) parkStep(ctx context.Context) {
	idx := a.changing[a.pos]
	pe := a.plan.Entries[idx]

	if ctx.Err() != nil {
		a.results[idx] = a.result(pe, OutcomeSkipped, "canceled")
		a.pos++
		a.stepsRun++
		return
	}

	oldPath := filepath.Join(a.plan.Dir, pe.Name)
	tempPath := filepath.Join(a.plan.Dir, a.tempName(a.pos))

	if _, err := a.fns.Stat(tempPath); err == nil {
		err := fmt.Errorf("temporary name %s already exists", filepath.Base(tempPath))
		a.fns.LogRename(oldPath, tempPath, false, err)
		a.results[idx] = a.result(pe, OutcomeFailed, err.Error())
	} else if err := a.fns.Rename(oldPath, tempPath); err != nil {
		a.fns.LogRename(oldPath, tempPath, false, err)
		a.results[idx] = a.result(pe, OutcomeFailed, err.Error())
	} else {
		a.parked[a.pos] = true
	}
	a.pos++
	a.stepsRun++
}

// finalizeStep moves the current parked entry to its final name, or back to
// its original name when the run was canceled between phases.
func (a *Applier) finalizeStep() {
	idx := a.changing[a.pos]
	pe := a.plan.Entries[idx]

	if !a.parked[a.pos] {
		// Parking already recorded this entry's outcome.
		a.pos++
		a.stepsRun++
		return
	}

	tempName := a.tempName(a.pos)
	oldPath := filepath.Join(a.plan.Dir, pe.Name)
	tempPath := filepath.Join(a.plan.Dir, tempName)
	finalPath := filepath.Join(a.plan.Dir, pe.NewName)

	switch {
	case a.rollback:
		if err := a.fns.Rename(tempPath, oldPath); err != nil {
			a.fns.LogRename(oldPath, tempPath, true, nil)
			a.results[idx] = a.result(pe, OutcomeFailed, fmt.Sprintf("canceled, left at %s: %v", tempName, err))
		} else {
			a.results[idx] = a.result(pe, OutcomeSkipped, "canceled")
		}

	default:
		if _, err := a.fns.Stat(finalPath); err == nil {
			err := fmt.Errorf("destination already exists")
			a.fns.LogRename(oldPath, tempPath, true, nil)
			a.fns.LogRename(tempPath, finalPath, false, err)
			a.results[idx] = a.result(pe, OutcomeFailed, fmt.Sprintf("%v, left at %s", err, tempName))
		} else if err := a.fns.Rename(tempPath, finalPath); err != nil {
			a.fns.LogRename(oldPath, tempPath, true, nil)
			a.fns.LogRename(tempPath, finalPath, false, err)
			a.results[idx] = a.result(pe, OutcomeFailed, fmt.Sprintf("left at %s: %v", tempName, err))
		} else {
			a.fns.LogRename(oldPath, finalPath, true, nil)
			a.results[idx] = a.result(pe, OutcomeRenamed, "")
		}
	}
	a.pos++
	a.stepsRun++
}

// tempName builds the hidden run-unique parking name for position i.
func (a *Applier) tempName(i int) string {
	return fmt.Sprintf(".mediabatch-%s-%d.tmp", a.runID, i)
}

func (a *Applier) result(pe PlanEntry, outcome Outcome, reason string) Result {
	return Result{
		Path:    pe.Path,
		OldName: pe.Name,
		NewName: pe.NewName,
		Outcome: outcome,
		Reason:  reason,
	}
}

func (a *Applier) ensureSession() {
	if a.started {
		return
	}
	a.started = true
	if err := a.fns.StartSession(a.cfg.Command, a.cfg.CommandArgs); err != nil {
		fmt.Fprintf(a.stderr, "Warning: Failed to start operation log: %v\n", err)
	}
}

func (a *Applier) finishRun() {
	if a.finished {
		return
	}
	a.finished = true
	if a.started && !a.cfg.DryRun {
		if err := a.fns.EndSession(); err != nil {
			fmt.Fprintf(a.stderr, "Warning: Failed to save operation log: %v\n", err)
		}
	}
}
