// Package tree provides types for file system snapshots and data structures.
package tree

import "sort"

// Kind distinguishes files from directories in a snapshot.
type Kind string

const (
	File      Kind = "file"
	Directory Kind = "directory"
)

// Node represents a single file system entry in a snapshot.
// Paths are root-relative with forward slashes and a leading "/",
// regardless of OS. The snapshot root itself has Path "/".
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     Kind    `json:"kind"`
	Size     int64   `json:"size"` // files only; directories derive from children
	Children []*Node `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

// SortChildren orders children by name so snapshots are deterministic.
func (n *Node) SortChildren() {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
}

// TotalSize returns the node's size, summing children for directories.
func (n *Node) TotalSize() int64 {
	if !n.IsDir() {
		return n.Size
	}
	var total int64
	for _, c := range n.Children {
		total += c.TotalSize()
	}
	return total
}

// Walk visits the node and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// PathSet flattens the subtree into a path -> kind lookup.
// The root entry ("/") is excluded since it is never a move target.
func (n *Node) PathSet() map[string]Kind {
	set := make(map[string]Kind)
	n.Walk(func(node *Node) {
		if node.Path == "/" {
			return
		}
		set[node.Path] = node.Kind
	})
	return set
}
