package tree

import (
	"sort"

	typestree "github.com/Voltaic314/DeskSweep/code/types/tree"
)

// DiffPaths compares two snapshots and returns the paths present only in
// old (removed) and only in new (added), both sorted. Used for
// post-execution verification, not for planning.
func DiffPaths(old, new *typestree.Node) (removed, added []string) {
	oldSet := old.PathSet()
	newSet := new.PathSet()

	for p := range oldSet {
		if _, ok := newSet[p]; !ok {
			removed = append(removed, p)
		}
	}
	for p := range newSet {
		if _, ok := oldSet[p]; !ok {
			added = append(added, p)
		}
	}
	sort.Strings(removed)
	sort.Strings(added)
	return removed, added
}
