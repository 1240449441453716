// Package contextset implements the persistent file selection behind lctx: a
// Context owns a project root, an ordered set of ignore-pattern sources, and
// the set of files currently included for prompt generation.
package contextset

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/temirov/lctx/internal/utils"
)

const (
	// errorRootResolveFormat reports a root path that cannot be resolved.
	errorRootResolveFormat = "resolving root path %s: %w"
	// errorRootStatFormat reports a root path that cannot be inspected.
	errorRootStatFormat = "inspecting root path %s: %w"
	// errorRootNotDirectoryFormat reports a root path that is not a directory.
	errorRootNotDirectoryFormat = "root path %s is not a directory"

	// warnResolveMessage is logged when an added or removed path cannot be resolved.
	warnResolveMessage = "skipping unresolvable path"
	// warnStatMessage is logged when a resolved path cannot be inspected.
	warnStatMessage = "skipping uninspectable path"
	// warnOutsideRootMessage is logged when an added path resolves outside the root.
	warnOutsideRootMessage = "path is not under the context root"
	// warnWalkMessage is logged when a directory walk entry reports an error.
	warnWalkMessage = "skipping unreadable directory entry"

	pathFieldName  = "path"
	rootFieldName  = "root"
	pathSeparator  = "/"
	currentDirName = "."
)

// Context is the persistent selection of files under a single project root.
// It is not safe for concurrent use; the process model is one Context per
// invocation.
type Context struct {
	rootPath      string
	ignoreSources []IgnoreSource
	included      map[string]struct{}
	matcher       gitignore.Matcher
	logger        *zap.Logger
}

// New constructs an empty Context rooted at rootPath. The root is made
// absolute and symlink-resolved once and must name an existing directory.
// A nil logger disables diagnostic output.
func New(rootPath string, ignoreSources []IgnoreSource, logger *zap.Logger) (*Context, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolvedRoot, resolveError := resolveExistingPath(rootPath)
	if resolveError != nil {
		return nil, fmt.Errorf(errorRootResolveFormat, rootPath, resolveError)
	}
	rootInfo, statError := os.Stat(resolvedRoot)
	if statError != nil {
		return nil, fmt.Errorf(errorRootStatFormat, resolvedRoot, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, resolvedRoot)
	}
	for _, source := range ignoreSources {
		if validationError := source.validate(); validationError != nil {
			return nil, validationError
		}
	}
	return &Context{
		rootPath:      resolvedRoot,
		ignoreSources: slices.Clone(ignoreSources),
		included:      make(map[string]struct{}),
		logger:        logger,
	}, nil
}

// Root returns the absolute, symlink-resolved root directory.
func (selection *Context) Root() string {
	return selection.rootPath
}

// IgnoreSources returns the ordered ignore-pattern sources.
func (selection *Context) IgnoreSources() []IgnoreSource {
	return slices.Clone(selection.ignoreSources)
}

// IncludedFiles returns every included file as a sorted absolute path list.
func (selection *Context) IncludedFiles() []string {
	includedPaths := lo.Keys(selection.included)
	sort.Strings(includedPaths)
	return includedPaths
}

// Len returns the number of included files.
func (selection *Context) Len() int {
	return len(selection.included)
}

// Add resolves each path and inserts it into the selection. Files are added
// directly; directories are expanded recursively into their file members,
// hidden entries included. A path that resolves outside the root is reported
// and skipped, a path matching the ignore patterns is skipped silently, and
// per-path failures never abort the remaining paths.
func (selection *Context) Add(paths ...string) {
	for _, inputPath := range paths {
		resolvedPath, resolveError := resolveExistingPath(inputPath)
		if resolveError != nil {
			selection.logger.Warn(warnResolveMessage, zap.String(pathFieldName, inputPath), zap.Error(resolveError))
			continue
		}
		pathInfo, statError := os.Stat(resolvedPath)
		if statError != nil {
			selection.logger.Warn(warnStatMessage, zap.String(pathFieldName, resolvedPath), zap.Error(statError))
			continue
		}
		if !selection.contains(resolvedPath) {
			selection.logger.Error(warnOutsideRootMessage,
				zap.String(pathFieldName, resolvedPath), zap.String(rootFieldName, selection.rootPath))
			continue
		}
		if selection.isIgnored(resolvedPath, pathInfo.IsDir()) {
			continue
		}
		if pathInfo.IsDir() {
			selection.addDirectoryFiles(resolvedPath)
			continue
		}
		selection.included[resolvedPath] = struct{}{}
	}
}

// addDirectoryFiles walks the resolved directory and adds every contained
// file that passes the containment and ignore checks. Ignored directories and
// the .git and .lctx metadata directories are not descended into. Symlinked
// files are stored by their resolved target; symlinked directories are not
// traversed.
func (selection *Context) addDirectoryFiles(resolvedDirectoryPath string) {
	walkError := filepath.WalkDir(resolvedDirectoryPath, func(currentPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			selection.logger.Warn(warnWalkMessage, zap.String(pathFieldName, currentPath), zap.Error(entryError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if directoryEntry.IsDir() {
			if currentPath == resolvedDirectoryPath {
				return nil
			}
			entryName := directoryEntry.Name()
			if entryName == utils.GitDirectoryName || entryName == utils.StoreDirectoryName {
				return filepath.SkipDir
			}
			if selection.isIgnored(currentPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			selection.addSymlinkTarget(currentPath)
			return nil
		}
		selection.addDiscoveredFile(currentPath)
		return nil
	})
	if walkError != nil {
		selection.logger.Warn(warnWalkMessage, zap.String(pathFieldName, resolvedDirectoryPath), zap.Error(walkError))
	}
}

// addSymlinkTarget resolves a symlink encountered during a walk and adds the
// target when it is a regular file. Symlinks to directories are skipped.
func (selection *Context) addSymlinkTarget(symlinkPath string) {
	targetPath, resolveError := filepath.EvalSymlinks(symlinkPath)
	if resolveError != nil {
		selection.logger.Warn(warnResolveMessage, zap.String(pathFieldName, symlinkPath), zap.Error(resolveError))
		return
	}
	targetInfo, statError := os.Stat(targetPath)
	if statError != nil {
		selection.logger.Warn(warnStatMessage, zap.String(pathFieldName, targetPath), zap.Error(statError))
		return
	}
	if targetInfo.IsDir() {
		return
	}
	selection.addDiscoveredFile(targetPath)
}

// addDiscoveredFile applies the containment and ignore checks to a single
// resolved file discovered during directory expansion.
func (selection *Context) addDiscoveredFile(resolvedFilePath string) {
	if !selection.contains(resolvedFilePath) {
		selection.logger.Error(warnOutsideRootMessage,
			zap.String(pathFieldName, resolvedFilePath), zap.String(rootFieldName, selection.rootPath))
		return
	}
	if selection.isIgnored(resolvedFilePath, false) {
		return
	}
	selection.included[resolvedFilePath] = struct{}{}
}

// Remove discards each path from the selection. A file path removes its
// resolved form; a directory path removes every included descendant. Paths
// that are not included are ignored.
func (selection *Context) Remove(paths ...string) {
	for _, inputPath := range paths {
		resolvedPath, resolveError := resolveExistingPath(inputPath)
		if resolveError != nil {
			// The path may already be gone from disk; fall back to the cleaned
			// absolute form so stale entries can still be removed.
			absolutePath, absoluteError := filepath.Abs(inputPath)
			if absoluteError != nil {
				selection.logger.Warn(warnResolveMessage, zap.String(pathFieldName, inputPath), zap.Error(absoluteError))
				continue
			}
			resolvedPath = filepath.Clean(absolutePath)
		}
		delete(selection.included, resolvedPath)
		descendantPrefix := resolvedPath + string(os.PathSeparator)
		for includedPath := range selection.included {
			if strings.HasPrefix(includedPath, descendantPrefix) {
				delete(selection.included, includedPath)
			}
		}
	}
}

// Drop clears the selection. The root and ignore sources are untouched.
func (selection *Context) Drop() {
	selection.included = make(map[string]struct{})
}

// List renders the included files as a newline-joined, lexicographically
// sorted listing, relative to the root or absolute.
func (selection *Context) List(relative bool) string {
	sortedPaths := selection.IncludedFiles()
	if relative {
		sortedPaths = lo.Map(sortedPaths, func(includedPath string, _ int) string {
			return selection.relativeToRoot(includedPath)
		})
	}
	return strings.Join(sortedPaths, "\n")
}

// Equal reports whether both contexts share the same resolved root, the same
// included files, and compile-equivalent ignore sources.
func (selection *Context) Equal(other *Context) bool {
	if other == nil {
		return false
	}
	if selection.rootPath != other.rootPath {
		return false
	}
	if !maps.Equal(selection.included, other.included) {
		return false
	}
	return slices.Equal(effectivePatternLines(selection.ignoreSources), effectivePatternLines(other.ignoreSources))
}

// contains reports whether the resolved path equals the root or lies beneath it.
func (selection *Context) contains(resolvedPath string) bool {
	if resolvedPath == selection.rootPath {
		return true
	}
	return strings.HasPrefix(resolvedPath, selection.rootPath+string(os.PathSeparator))
}

// relativeToRoot returns the forward-slash path of resolvedPath relative to the root.
func (selection *Context) relativeToRoot(resolvedPath string) string {
	relativePath, relativeError := filepath.Rel(selection.rootPath, resolvedPath)
	if relativeError != nil {
		return filepath.ToSlash(resolvedPath)
	}
	return filepath.ToSlash(relativePath)
}

// isIgnored evaluates the compiled ignore matcher against the path relative
// to the root. The matcher is compiled lazily on first use.
func (selection *Context) isIgnored(resolvedPath string, isDirectory bool) bool {
	if selection.matcher == nil {
		selection.matcher = compileMatcher(selection.ignoreSources)
	}
	relativePath := selection.relativeToRoot(resolvedPath)
	if relativePath == currentDirName {
		return false
	}
	return selection.matcher.Match(splitPathSegments(relativePath), isDirectory)
}

// resolveExistingPath makes the input absolute and follows symlinks. It fails
// when the path does not name an existing filesystem location.
func resolveExistingPath(inputPath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(inputPath)
	if absoluteError != nil {
		return "", absoluteError
	}
	return filepath.EvalSymlinks(absolutePath)
}
