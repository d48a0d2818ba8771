package deploy

import (
	"path"
	"slices"
	"strings"
)

// OrderScripts returns the deterministic execution order for the scripts
// of one deployment group.
//
// Scripts are ordered by the version number embedded in their filename,
// ascending. Scripts whose version cannot be parsed sort last. Ties are
// broken by lexical order of the full path; the sort is stable.
func OrderScripts(files []ScriptFile) []ScriptFile {
	ordered := slices.Clone(files)

	slices.SortStableFunc(ordered, func(a, b ScriptFile) int {
		av, bv := scriptVersion(path.Base(a.Path)), scriptVersion(path.Base(b.Path))
		if av != bv {
			return av - bv
		}
		return strings.Compare(a.Path, b.Path)
	})

	return ordered
}
