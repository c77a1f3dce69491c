package components

import (
	"fmt"

	"mediabatch/internal/rename"
	"mediabatch/internal/tui/theme"
	"mediabatch/internal/video"

	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/lipgloss"
)

// EntryMeta carries the plan state for a single file node: the proposed name,
// any planning error, and the outcome once a run has processed the entry.
type EntryMeta struct {
	NewName string
	PlanErr string
	Outcome rename.Outcome
	Reason  string
}

const metaKey = "meta"

// GetMeta returns the plan metadata attached to a node, or nil when absent.
func GetMeta(n *treeview.Node[treeview.FileInfo]) *EntryMeta {
	if n == nil {
		return nil
	}
	if raw, ok := n.Data().Extra[metaKey]; ok {
		if mm, ok := raw.(*EntryMeta); ok {
			return mm
		}
	}
	return nil
}

// EnsureMeta returns the node's plan metadata, attaching a fresh value first
// when none exists yet.
func EnsureMeta(n *treeview.Node[treeview.FileInfo]) *EntryMeta {
	if n == nil {
		return nil
	}
	if mm := GetMeta(n); mm != nil {
		return mm
	}
	mm := &EntryMeta{}
	n.Data().Extra[metaKey] = mm
	return mm
}

// ---- predicate helpers ----

// metaRule adapts a metadata predicate to a node predicate. If a node lacks
// metadata the predicate returns false.
func metaRule(cond func(*treeview.Node[treeview.FileInfo], *EntryMeta) bool) func(*treeview.Node[treeview.FileInfo]) bool {
	return func(n *treeview.Node[treeview.FileInfo]) bool {
		if mm := GetMeta(n); mm != nil {
			return cond(n, mm)
		}
		return false
	}
}

// outcomeIs matches nodes whose last run produced outcome o.
func outcomeIs(o rename.Outcome) func(*treeview.Node[treeview.FileInfo]) bool {
	return metaRule(func(_ *treeview.Node[treeview.FileInfo], mm *EntryMeta) bool {
		return mm.Outcome == o
	})
}

// planFailed matches entries whose name could not be planned at all.
func planFailed() func(*treeview.Node[treeview.FileInfo]) bool {
	return metaRule(func(_ *treeview.Node[treeview.FileInfo], mm *EntryMeta) bool {
		return mm.PlanErr != ""
	})
}

// pendingChange matches entries still waiting to be renamed.
func pendingChange() func(*treeview.Node[treeview.FileInfo]) bool {
	return metaRule(func(n *treeview.Node[treeview.FileInfo], mm *EntryMeta) bool {
		return mm.Outcome == "" && mm.PlanErr == "" && mm.NewName != n.Name()
	})
}

// unchanged matches entries whose planned name equals the current name.
func unchanged() func(*treeview.Node[treeview.FileInfo]) bool {
	return metaRule(func(n *treeview.Node[treeview.FileInfo], mm *EntryMeta) bool {
		return mm.Outcome == "" && mm.PlanErr == "" && mm.NewName == n.Name()
	})
}

// isVideoFile matches nodes named like a video file.
func isVideoFile() func(*treeview.Node[treeview.FileInfo]) bool {
	return func(n *treeview.Node[treeview.FileInfo]) bool {
		return video.IsVideo(n.Name())
	}
}

// CreatePlanProvider constructs the [treeview.DefaultNodeProvider] used to
// render a rename plan. It wires together:
//   - icon rules (run outcome precedes file type so success/error win)
//   - style rules (normal & focused variants) with the same precedence
//   - the custom [PlanFormatter] for inline original→new labeling.
func CreatePlanProvider() *treeview.DefaultNodeProvider[treeview.FileInfo] {
	th := theme.Default()
	colors := th.Colors()
	iconSet := th.IconSet()

	// Icon rules (order matters: outcome first)
	planErrorIconRule := treeview.WithIconRule(planFailed(), iconSet["error"])
	failedIconRule := treeview.WithIconRule(outcomeIs(rename.OutcomeFailed), iconSet["error"])
	renamedIconRule := treeview.WithIconRule(outcomeIs(rename.OutcomeRenamed), iconSet["success"])
	skippedIconRule := treeview.WithIconRule(outcomeIs(rename.OutcomeSkipped), iconSet["nochange"])
	pendingIconRule := treeview.WithIconRule(pendingChange(), iconSet["pending"])
	unchangedIconRule := treeview.WithIconRule(unchanged(), iconSet["nochange"])
	videoIconRule := treeview.WithIconRule(isVideoFile(), iconSet["video"])
	defaultIconRule := treeview.WithDefaultIcon[treeview.FileInfo](iconSet["document"])

	// Style rules (most specific first)
	planErrorStyleRule := treeview.WithStyleRule(
		planFailed(),
		lipgloss.NewStyle().Foreground(colors.Error),
		lipgloss.NewStyle().Foreground(colors.Error).Background(colors.Background),
	)
	failedStyleRule := treeview.WithStyleRule(
		outcomeIs(rename.OutcomeFailed),
		lipgloss.NewStyle().Foreground(colors.Error),
		lipgloss.NewStyle().Foreground(colors.Error).Background(colors.Background),
	)
	renamedStyleRule := treeview.WithStyleRule(
		outcomeIs(rename.OutcomeRenamed),
		lipgloss.NewStyle().Foreground(colors.Success),
		lipgloss.NewStyle().Foreground(colors.Success).Background(colors.Background),
	)
	skippedStyleRule := treeview.WithStyleRule(
		outcomeIs(rename.OutcomeSkipped),
		lipgloss.NewStyle().Foreground(colors.Muted),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Muted),
	)
	pendingStyleRule := treeview.WithStyleRule(
		pendingChange(),
		lipgloss.NewStyle().Foreground(colors.Secondary).Bold(true),
		lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Primary),
	)
	unchangedStyleRule := treeview.WithStyleRule(
		unchanged(),
		lipgloss.NewStyle().Foreground(colors.Muted),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Primary),
	)
	defaultStyleRule := treeview.WithStyleRule(
		func(*treeview.Node[treeview.FileInfo]) bool { return true },
		lipgloss.NewStyle().Foreground(colors.Primary),
		lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Primary),
	)

	formatterRule := treeview.WithFormatter(PlanFormatter)

	return treeview.NewDefaultNodeProvider(
		// Icon rules (order matters - most specific first)
		planErrorIconRule, failedIconRule, renamedIconRule, skippedIconRule,
		pendingIconRule, unchangedIconRule, videoIconRule, defaultIconRule,
		// Style rules (order matters - most specific first)
		planErrorStyleRule, failedStyleRule, renamedStyleRule, skippedStyleRule,
		pendingStyleRule, unchangedStyleRule, defaultStyleRule,
		// Formatter
		formatterRule,
	)
}

// PlanFormatter produces the display label for a node during visualization.
//
//   - If no metadata exists, the original name is returned unchanged.
//   - A planning failure shows the original name plus the reason.
//   - A renamed entry shows only the new name (keeps the tree clean post-run).
//   - A failed entry shows the original name plus the failure reason.
//   - A skipped entry keeps the original name.
//   - If the new name equals the original, the original is shown.
//   - Otherwise: "<new> ← <old>" conveys the pending rename mapping.
func PlanFormatter(node *treeview.Node[treeview.FileInfo]) (string, bool) {
	mm := GetMeta(node)
	if mm == nil {
		return node.Name(), true
	}

	if mm.PlanErr != "" {
		return fmt.Sprintf("%s: %s", node.Name(), mm.PlanErr), true
	}

	switch mm.Outcome {
	case rename.OutcomeRenamed:
		return mm.NewName, true
	case rename.OutcomeFailed:
		return fmt.Sprintf("%s: %s", node.Name(), mm.Reason), true
	case rename.OutcomeSkipped:
		// Entry kept its on-disk name; the icon conveys the skip
		return node.Name(), true
	}

	if mm.NewName == node.Name() {
		return node.Name(), true
	}
	return fmt.Sprintf("%s ← %s", mm.NewName, node.Name()), true
}
