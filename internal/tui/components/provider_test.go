package components

import (
	"errors"
	"testing"

	"mediabatch/internal/rename"

	"github.com/Digital-Shane/treeview"
	"github.com/google/go-cmp/cmp"
)

func newTestNode(name string) *treeview.Node[treeview.FileInfo] {
	return treeview.NewNode(name, name, treeview.FileInfo{
		FileInfo: NewFileInfo(name, false),
		Path:     name,
		Extra:    map[string]any{},
	})
}

func TestEnsureMetaAttachesOnce(t *testing.T) {
	t.Parallel()

	node := newTestNode("a.txt")
	if got := GetMeta(node); got != nil {
		t.Fatalf("GetMeta(fresh node) = %v, want nil", got)
	}

	first := EnsureMeta(node)
	first.NewName = "b.txt"

	second := EnsureMeta(node)
	if first != second {
		t.Errorf("EnsureMeta returned a new value on second call")
	}
	if got := GetMeta(node); got == nil || got.NewName != "b.txt" {
		t.Errorf("GetMeta after EnsureMeta = %+v, want NewName %q", got, "b.txt")
	}
}

func TestPlanFormatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta *EntryMeta
		want string
	}{
		{name: "noMeta", meta: nil, want: "file.txt"},
		{
			name: "pendingChange",
			meta: &EntryMeta{NewName: "photo_1.txt"},
			want: "photo_1.txt ← file.txt",
		},
		{
			name: "unchanged",
			meta: &EntryMeta{NewName: "file.txt"},
			want: "file.txt",
		},
		{
			name: "planError",
			meta: &EntryMeta{NewName: "file.txt", PlanErr: "collision counter exhausted"},
			want: "file.txt: collision counter exhausted",
		},
		{
			name: "renamedShowsNewName",
			meta: &EntryMeta{NewName: "photo_1.txt", Outcome: rename.OutcomeRenamed},
			want: "photo_1.txt",
		},
		{
			name: "failedShowsReason",
			meta: &EntryMeta{NewName: "photo_1.txt", Outcome: rename.OutcomeFailed, Reason: "permission denied"},
			want: "file.txt: permission denied",
		},
		{
			name: "skippedShowsOriginal",
			meta: &EntryMeta{NewName: "photo_1.txt", Outcome: rename.OutcomeSkipped, Reason: "canceled"},
			want: "file.txt",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			node := newTestNode("file.txt")
			if tc.meta != nil {
				node.Data().Extra[metaKey] = tc.meta
			}

			got, ok := PlanFormatter(node)
			if !ok {
				t.Fatalf("PlanFormatter(%s) ok = false, want true", tc.name)
			}
			if got != tc.want {
				t.Errorf("PlanFormatter(%s) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestNewPlanTreeBuildsNodePerEntry(t *testing.T) {
	t.Parallel()

	plan := &rename.Plan{
		Dir: "/media",
		Entries: []rename.PlanEntry{
			{Entry: rename.Entry{Path: "/media/b.mp4", Name: "b.mp4", Ext: ".mp4"}, NewName: "clip_1.mp4"},
			{Entry: rename.Entry{Path: "/media/a.txt", Name: "a.txt", Ext: ".txt"}, NewName: "a.txt"},
			{Entry: rename.Entry{Path: "/media/c.txt", Name: "c.txt", Ext: ".txt"}, NewName: "c.txt", Err: errors.New("collision counter exhausted")},
		},
	}

	tree := NewPlanTree(plan)
	nodes := tree.Nodes()

	gotIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		gotIDs = append(gotIDs, n.ID())
	}
	wantIDs := []string{"/media/b.mp4", "/media/a.txt", "/media/c.txt"}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Fatalf("NewPlanTree node IDs diff (-want +got):\n%s", diff)
	}

	first := GetMeta(nodes[0])
	if first == nil || first.NewName != "clip_1.mp4" || first.PlanErr != "" {
		t.Errorf("first node meta = %+v, want NewName clip_1.mp4", first)
	}

	third := GetMeta(nodes[2])
	if third == nil || third.PlanErr != "collision counter exhausted" {
		t.Errorf("third node meta = %+v, want PlanErr set", third)
	}
}

func TestNewFileInfo(t *testing.T) {
	t.Parallel()

	fi := NewFileInfo("report.pdf", false)
	if fi.Name() != "report.pdf" {
		t.Errorf("NewFileInfo Name() = %q, want %q", fi.Name(), "report.pdf")
	}
	if fi.IsDir() {
		t.Error("NewFileInfo(_, false).IsDir() = true, want false")
	}

	dir := NewFileInfo("media", true)
	if !dir.IsDir() {
		t.Error("NewFileInfo(_, true).IsDir() = false, want true")
	}
}
