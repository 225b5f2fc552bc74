package finddups

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandOptions controls how input paths become a file set
type ExpandOptions struct {
	Recursive bool
	Exclude   *ExcludeFilter // applied to entries found inside directories only
}

// maxDepth returns the traversal depth limit, 0 meaning unlimited
func (o ExpandOptions) maxDepth() int {
	if o.Recursive {
		return 0
	}
	return 1
}

// ExpandPaths turns input paths into a sorted, duplicate-free file set.
//
// A directory contributes its direct children verbatim (subdirectories
// included) unless Recursive is set, in which case every leaf below it is
// contributed instead. Anything that is not a directory, including paths that
// do not exist, is passed through unchanged; read problems surface later when
// the file is hashed.
func ExpandPaths(inputs []string, opts ExpandOptions) []string {
	defer VerboseEnter()()

	e := &expander{
		files:    newPathSet(16),
		exclude:  opts.Exclude,
		maxDepth: opts.maxDepth(),
	}

	if opts.Exclude.HasPatterns() {
		DebugLog(DebugExpand, "excluding entries matching: %s", strings.Join(opts.Exclude.Patterns(), " "))
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil || !info.IsDir() {
			e.add(input, input)
			continue
		}
		e.walk(input, input, 1)
	}

	DebugLog(DebugExpand, "expanded %d input path(s) into %d file(s)", len(inputs), e.files.Len())
	return e.files.Paths()
}

type expander struct {
	files    *pathSet
	exclude  *ExcludeFilter
	maxDepth int
}

func (e *expander) add(path, origin string) {
	if first, added := e.files.Add(path, origin); !added {
		DebugLog(DebugExpand, "%s: already contributed by %s, skipped from %s", path, first, origin)
	}
}

// walk lists dir at the given depth. Entries at the depth limit are added as
// they are; below it, directories are descended into and everything else
// becomes a leaf. Unreadable directories contribute nothing.
func (e *expander) walk(dir, origin string, depth int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		DebugLog(DebugExpand, "skipping unreadable directory %s: %v", dir, err)
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())
		if e.exclude.Matches(entryPath) {
			DebugLog(DebugExpand, "%s: excluded", entryPath)
			continue
		}

		if e.maxDepth > 0 && depth >= e.maxDepth {
			e.add(entryPath, origin)
			continue
		}

		// Follows symlinks; a link that cannot be resolved (ELOOP included) is a leaf
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			e.add(entryPath, origin)
			continue
		}
		e.walk(entryPath, origin, depth+1)
	}
}
