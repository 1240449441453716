package contextset

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// SourceKind distinguishes the origin of an ignore-pattern source.
type SourceKind string

const (
	// SourceKindFile marks a source whose patterns are read from a file on disk.
	SourceKindFile SourceKind = "file"
	// SourceKindInline marks a source whose patterns are embedded pattern text.
	SourceKindInline SourceKind = "inline"

	commentLinePrefix = "#"

	// errorUnknownSourceKindFormat reports an unrecognized ignore source kind.
	errorUnknownSourceKindFormat = "unknown ignore source kind %q"
)

// IgnoreSource is one ignore-pattern source, either a pattern file path or inline pattern text.
type IgnoreSource struct {
	Kind  SourceKind `json:"kind"`
	Value string     `json:"value"`
}

// FileSource returns an ignore source backed by the pattern file at filePath.
func FileSource(filePath string) IgnoreSource {
	return IgnoreSource{Kind: SourceKindFile, Value: filePath}
}

// InlineSource returns an ignore source holding the provided pattern text.
func InlineSource(patternText string) IgnoreSource {
	return IgnoreSource{Kind: SourceKindInline, Value: patternText}
}

// validate reports an error when the source kind is not a known variant.
func (source IgnoreSource) validate() error {
	switch source.Kind {
	case SourceKindFile, SourceKindInline:
		return nil
	default:
		return fmt.Errorf(errorUnknownSourceKindFormat, string(source.Kind))
	}
}

// patternLines returns the effective pattern lines the source contributes.
// A pattern file that does not exist or cannot be read contributes nothing.
func (source IgnoreSource) patternLines() []string {
	switch source.Kind {
	case SourceKindFile:
		fileData, readError := os.ReadFile(source.Value)
		if readError != nil {
			return nil
		}
		return splitPatternLines(string(fileData))
	case SourceKindInline:
		return splitPatternLines(source.Value)
	}
	return nil
}

// splitPatternLines breaks pattern text into individual non-empty, non-comment lines.
func splitPatternLines(patternText string) []string {
	var patternLines []string
	for _, rawLine := range strings.Split(patternText, "\n") {
		trimmedLine := strings.TrimSpace(rawLine)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentLinePrefix) {
			continue
		}
		patternLines = append(patternLines, trimmedLine)
	}
	return patternLines
}

// effectivePatternLines flattens every source into the ordered pattern line list,
// re-reading pattern files at call time.
func effectivePatternLines(sources []IgnoreSource) []string {
	var patternLines []string
	for _, source := range sources {
		patternLines = append(patternLines, source.patternLines()...)
	}
	return patternLines
}

// compileMatcher builds a gitignore matcher from the ordered sources. Later
// patterns override earlier ones and "!"-prefixed patterns re-include paths.
func compileMatcher(sources []IgnoreSource) gitignore.Matcher {
	var patterns []gitignore.Pattern
	for _, patternLine := range effectivePatternLines(sources) {
		patterns = append(patterns, gitignore.ParsePattern(patternLine, nil))
	}
	return gitignore.NewMatcher(patterns)
}

// splitPathSegments converts a slash-separated relative path into the segment
// form the gitignore matcher evaluates. Empty and "." segments are dropped.
func splitPathSegments(relativePath string) []string {
	var segments []string
	for _, segment := range strings.Split(relativePath, "/") {
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}
