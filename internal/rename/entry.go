package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is a single regular file inside the working directory. Entries are
// immutable once listed; planning never mutates them.
type Entry struct {
	// Path is the full path to the file at listing time.
	Path string
	// Name is the file name component of Path.
	Name string
	// Ext is the extension including the leading dot, empty when absent.
	Ext string
}

// Stem returns the file name without its extension.
func (e Entry) Stem() string {
	return strings.TrimSuffix(e.Name, e.Ext)
}

// List collects the regular files directly inside dir. Subdirectories and
// their contents are ignored, as are sockets, device nodes, and other
// irregular entries. The returned order is unspecified; callers sort.
func List(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		name := de.Name()
		entries = append(entries, Entry{
			Path: filepath.Join(dir, name),
			Name: name,
			Ext:  filepath.Ext(name),
		})
	}
	return entries, nil
}

// DiskNames returns the set of names currently present in dir, regular or
// not. The planner uses it to keep generated names away from files it does
// not manage.
func DiskNames(dir string) (map[string]bool, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	names := make(map[string]bool, len(dirEntries))
	for _, de := range dirEntries {
		names[de.Name()] = true
	}
	return names, nil
}
