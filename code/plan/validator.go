package plan

import (
	"strings"

	"github.com/Voltaic314/DeskSweep/code/config"
	"github.com/Voltaic314/DeskSweep/code/tree"
	typesplan "github.com/Voltaic314/DeskSweep/code/types/plan"
	typestree "github.com/Voltaic314/DeskSweep/code/types/tree"
)

// Validate is the single gate between an untrusted plan and disk
// mutation. It checks the parsed plan against a pre-plan snapshot and,
// on success, returns the same ordered sequence with every destination
// resolved to its final path (moves into an existing directory pick up
// the source's base name, shutil-style).
//
// Checks run in a fixed order, first failure wins:
//  1. every move source exists in the snapshot
//  2. no two moves share a source
//  3. projected destination collisions (simulated in sequence order)
//  4. no-op moves (source == destination after normalization)
//  5. cyclic moves (a directory becoming its own ancestor)
//
// Validate is a pure function: same plan + same snapshot + same config
// always yields the same verdict, and nothing on disk is touched.
func Validate(ops []typesplan.Op, root *typestree.Node, cfg config.Config) ([]typesplan.Op, error) {
	fold := foldFunc(cfg.CaseSensitive)

	snapSet := make(map[string]typestree.Kind)
	for p, k := range root.PathSet() {
		snapSet[fold(p)] = k
	}

	// 1. Existence against the pre-plan snapshot.
	for _, op := range ops {
		if op.Kind != typesplan.OpMove {
			continue
		}
		if _, ok := snapSet[fold(op.Source)]; !ok {
			return nil, &ValidationError{Kind: UnknownSource, Paths: []string{op.Source}, Line: op.Line}
		}
	}

	// 2. No duplicate sources.
	seen := make(map[string]bool)
	for _, op := range ops {
		if op.Kind != typesplan.OpMove {
			continue
		}
		key := fold(op.Source)
		if seen[key] {
			return nil, &ValidationError{Kind: DuplicateSource, Paths: []string{op.Source}, Line: op.Line}
		}
		seen[key] = true
	}

	// 3. Destination collision projection.
	resolved, err := project(ops, snapSet, cfg, fold)
	if err != nil {
		return nil, err
	}

	// 4. No-op moves. Plans must be minimal; silently dropping no-ops
	// would make rollback size unpredictable.
	for _, op := range resolved {
		if op.Kind == typesplan.OpMove && fold(op.Source) == fold(op.Destination) {
			return nil, &ValidationError{Kind: NoOpMove, Paths: []string{op.Source}, Line: op.Line}
		}
	}

	// 5. Cycle check: nothing may end up inside itself.
	for _, op := range resolved {
		if op.Kind == typesplan.OpMove && tree.IsAncestor(fold(op.Source), fold(op.Destination)) {
			return nil, &ValidationError{Kind: CyclicMove, Paths: []string{op.Source}, Line: op.Line}
		}
	}

	return resolved, nil
}

// project simulates the plan in sequence order against a working copy of
// the snapshot's path set, resolving each destination as it goes.
func project(ops []typesplan.Op, snapSet map[string]typestree.Kind, cfg config.Config, fold func(string) string) ([]typesplan.Op, error) {
	proj := make(map[string]typestree.Kind, len(snapSet))
	for p, k := range snapSet {
		proj[p] = k
	}

	resolved := make([]typesplan.Op, len(ops))
	copy(resolved, ops)

	for i := range resolved {
		op := &resolved[i]
		switch op.Kind {
		case typesplan.OpMkdir:
			if op.Destination == "/" {
				// Root already exists; the engine will skip it.
				continue
			}
			destKey := fold(op.Destination)
			if kind, ok := proj[destKey]; ok {
				if kind == typestree.Directory {
					// Already there; the engine will skip it.
					continue
				}
				return nil, &ValidationError{Kind: DestinationConflict, Paths: []string{op.Destination}, Line: op.Line}
			}
			if verr := addDirWithAncestors(proj, op.Destination, fold, op.Line); verr != nil {
				return nil, verr
			}

		case typesplan.OpMove:
			srcKey := fold(op.Source)
			if _, ok := proj[srcKey]; !ok {
				// An earlier move already relocated this subtree out from
				// under us; the plan must reference post-move paths.
				return nil, &ValidationError{Kind: DestinationConflict, Paths: []string{op.Source}, Line: op.Line}
			}

			subtree := detach(proj, srcKey)

			// The root is always an existing directory even though the
			// path set never lists it.
			dest := op.Destination
			if dest == "/" {
				dest = joinNormalized("/", tree.Base(op.Source))
			} else if kind, ok := proj[fold(dest)]; ok && kind == typestree.Directory {
				dest = joinNormalized(dest, tree.Base(op.Source))
			}

			parent := tree.Parent(dest)
			if parent != "/" {
				parentKind, ok := proj[fold(parent)]
				switch {
				case ok && parentKind != typestree.Directory:
					return nil, &ValidationError{Kind: DestinationConflict, Paths: []string{parent, dest}, Line: op.Line}
				case !ok && cfg.AutoMkdir:
					if verr := addDirWithAncestors(proj, parent, fold, op.Line); verr != nil {
						return nil, verr
					}
				case !ok:
					return nil, &ValidationError{Kind: UnknownDestinationDir, Paths: []string{parent}, Line: op.Line}
				}
			}

			destKey := fold(dest)
			if _, ok := proj[destKey]; ok {
				return nil, &ValidationError{Kind: DestinationConflict, Paths: []string{dest}, Line: op.Line}
			}

			for suffix, kind := range subtree {
				proj[destKey+suffix] = kind
			}
			op.Destination = dest
		}
	}

	return resolved, nil
}

// detach removes key and all its descendants from proj, returning them
// keyed by their suffix relative to key ("" for key itself).
func detach(proj map[string]typestree.Kind, key string) map[string]typestree.Kind {
	subtree := make(map[string]typestree.Kind)
	for p, k := range proj {
		if p == key || strings.HasPrefix(p, key+"/") {
			subtree[p[len(key):]] = k
			delete(proj, p)
		}
	}
	return subtree
}

// addDirWithAncestors adds dir and any missing ancestors as directories,
// failing if an ancestor is already occupied by a file.
func addDirWithAncestors(proj map[string]typestree.Kind, dir string, fold func(string) string, line int) *ValidationError {
	var missing []string
	for p := dir; p != "/"; p = tree.Parent(p) {
		kind, ok := proj[fold(p)]
		if ok {
			if kind != typestree.Directory {
				return &ValidationError{Kind: DestinationConflict, Paths: []string{p}, Line: line}
			}
			break
		}
		missing = append(missing, p)
	}
	for _, p := range missing {
		proj[fold(p)] = typestree.Directory
	}
	return nil
}

func joinNormalized(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

func foldFunc(caseSensitive bool) func(string) string {
	if caseSensitive {
		return func(p string) string { return p }
	}
	return strings.ToLower
}
