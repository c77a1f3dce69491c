package components

import (
	"io/fs"
	"os"
	"time"

	"mediabatch/internal/rename"

	"github.com/Digital-Shane/treeview"
)

// fileInfo is a minimal os.FileInfo for nodes that are rendered from plan
// data rather than a live directory walk.
type fileInfo struct {
	name  string
	isDir bool
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return 0 }
func (f fileInfo) Mode() fs.FileMode  { return 0 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return f.isDir }
func (f fileInfo) Sys() any           { return nil }

// NewFileInfo builds a synthetic os.FileInfo carrying only a name and kind.
func NewFileInfo(name string, isDir bool) os.FileInfo {
	return fileInfo{name: name, isDir: isDir}
}

// NewPlanNode builds a single tree node for a plan entry. The entry path
// doubles as the node ID so run results can be matched back to nodes.
func NewPlanNode(pe rename.PlanEntry) *treeview.Node[treeview.FileInfo] {
	node := treeview.NewNode(pe.Path, pe.Name, treeview.FileInfo{
		FileInfo: NewFileInfo(pe.Name, false),
		Path:     pe.Path,
		Extra:    make(map[string]any),
	})
	mm := EnsureMeta(node)
	mm.NewName = pe.NewName
	if pe.Err != nil {
		mm.PlanErr = pe.Err.Error()
	}
	return node
}

// NewPlanTree builds the flat preview tree for a plan, one node per entry in
// apply order, wired to the plan node provider.
func NewPlanTree(plan *rename.Plan) *treeview.Tree[treeview.FileInfo] {
	nodes := make([]*treeview.Node[treeview.FileInfo], 0, len(plan.Entries))
	for _, pe := range plan.Entries {
		nodes = append(nodes, NewPlanNode(pe))
	}
	return treeview.NewTree(nodes,
		treeview.WithExpandAll[treeview.FileInfo](),
		treeview.WithProvider(CreatePlanProvider()),
	)
}
