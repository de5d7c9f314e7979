// Package tree builds deterministic snapshots of a directory subtree.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Voltaic314/DeskSweep/code/logging"
	typestree "github.com/Voltaic314/DeskSweep/code/types/tree"
)

// ScanError means the scan root itself is unusable.
type ScanError struct {
	Root   string
	Reason string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed for %s: %s", e.Root, e.Reason)
}

// Warning records an entry the scanner had to skip (unreadable dir,
// vanished file, etc.). Warnings never fail a scan.
type Warning struct {
	Path   string
	Reason string
}

// Snapshot is an immutable point-in-time capture of a subtree.
type Snapshot struct {
	RootPath string // absolute OS-native path the scan started from
	Root     *typestree.Node
	Warnings []Warning

	excluded map[string]bool
}

// Scan walks rootPath and returns a deterministic snapshot. Children are
// sorted by name. Symlinks are recorded as plain files and never
// followed, so a link cannot pull in entries from outside the root.
// excludeNames are top-level entries to leave out of the snapshot
// (DeskSweep's own state directory, typically).
func Scan(rootPath string, excludeNames ...string) (*Snapshot, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, &ScanError{Root: rootPath, Reason: err.Error()}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &ScanError{Root: abs, Reason: "root does not exist"}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: abs, Reason: "root is not a directory"}
	}

	snap := &Snapshot{
		RootPath: abs,
		Root: &typestree.Node{
			Name: filepath.Base(abs),
			Path: "/",
			Kind: typestree.Directory,
		},
		excluded: make(map[string]bool),
	}
	for _, name := range excludeNames {
		if name != "" {
			snap.excluded[name] = true
		}
	}
	snap.scanDir(abs, snap.Root)

	if logging.GlobalLogger != nil {
		logging.GlobalLogger.Log("info", "scanner", abs, "Snapshot complete", map[string]any{
			"entries":  len(snap.Root.PathSet()),
			"warnings": len(snap.Warnings),
		}, "SCAN_ROOT")
	}
	return snap, nil
}

func (s *Snapshot) scanDir(osPath string, parent *typestree.Node) {
	entries, err := os.ReadDir(osPath)
	if err != nil {
		s.warn(parent.Path, err)
		return
	}

	for _, entry := range entries {
		if parent.Path == "/" && s.excluded[entry.Name()] {
			continue
		}
		childPath := join(parent.Path, entry.Name())
		node := &typestree.Node{
			Name: entry.Name(),
			Path: childPath,
			Kind: typestree.File,
		}

		// DirEntry reports symlinks as non-directories, which is exactly
		// the no-follow behavior we want.
		if entry.IsDir() {
			node.Kind = typestree.Directory
			parent.Children = append(parent.Children, node)
			s.scanDir(filepath.Join(osPath, entry.Name()), node)
			continue
		}

		if info, statErr := entry.Info(); statErr == nil {
			node.Size = info.Size()
		} else {
			s.warn(childPath, statErr)
		}
		parent.Children = append(parent.Children, node)
	}

	parent.SortChildren()
}

func (s *Snapshot) warn(path string, err error) {
	s.Warnings = append(s.Warnings, Warning{Path: path, Reason: err.Error()})
	if logging.GlobalLogger != nil {
		logging.GlobalLogger.Log("warning", "scanner", "", "Skipped unreadable entry", map[string]any{
			"path": path,
			"err":  err.Error(),
		}, "SCAN_SKIP")
	}
}

// Listing renders the snapshot as sorted "[DIR] path" / "[FILE] path"
// lines, the exchange format handed to the plan author.
func (s *Snapshot) Listing() []string {
	var lines []string
	s.Root.Walk(func(n *typestree.Node) {
		if n.Path == "/" {
			return
		}
		if n.IsDir() {
			lines = append(lines, "[DIR] "+n.Path)
		} else {
			lines = append(lines, "[FILE] "+n.Path)
		}
	})
	sort.Strings(lines)
	return lines
}

func join(parentPath, name string) string {
	if parentPath == "/" {
		return "/" + name
	}
	return parentPath + "/" + name
}
