package contextset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/lctx/internal/utils"
)

const (
	// documentTitle heads the generated context document.
	documentTitle = "## Context - Relevant files"
	// fenceLine delimits code blocks; four backticks so that fenced blocks
	// inside selected files do not terminate the document's own fences.
	fenceLine = "````"
	// fileHeadingFormat renders the per-file heading with the root-relative path.
	fileHeadingFormat = "### `%s`"

	// unreadablePlaceholderFormat substitutes for a file that cannot be read.
	unreadablePlaceholderFormat = "(unreadable file: %v)\n"
	// binaryContentPlaceholder substitutes for a file holding binary data.
	binaryContentPlaceholder = "(binary content omitted)\n"
)

// Generate renders the full context document: the title, the directory tree
// in a generic fenced block, then every included file in sorted order as a
// fenced block tagged with the file's extension. Files that cannot be read
// as text are replaced by a placeholder block; generation itself never
// fails over a single file. An empty selection renders as the empty string.
func (selection *Context) Generate() string {
	if len(selection.included) == 0 {
		return ""
	}
	var documentBuilder strings.Builder
	documentBuilder.WriteString(documentTitle + "\n\n")
	documentBuilder.WriteString(fenceLine + "\n")
	documentBuilder.WriteString(selection.Tree())
	documentBuilder.WriteString(fenceLine + "\n")
	for _, includedPath := range selection.IncludedFiles() {
		relativePath := selection.relativeToRoot(includedPath)
		documentBuilder.WriteString("\n" + fmt.Sprintf(fileHeadingFormat, relativePath) + "\n")
		documentBuilder.WriteString(fenceLine + fileExtensionTag(includedPath) + "\n")
		documentBuilder.WriteString(fileContentOrPlaceholder(includedPath))
		documentBuilder.WriteString(fenceLine + "\n")
	}
	return documentBuilder.String()
}

// fileExtensionTag returns the code-fence language tag for the file: its
// extension without the leading dot, taken verbatim from the file name.
func fileExtensionTag(filePath string) string {
	return strings.TrimPrefix(filepath.Ext(filePath), ".")
}

// fileContentOrPlaceholder reads the file as text, normalizing a missing
// trailing newline so the closing fence starts its own line. Unreadable and
// binary files yield their placeholder instead.
func fileContentOrPlaceholder(filePath string) string {
	fileData, readError := os.ReadFile(filePath)
	if readError != nil {
		return fmt.Sprintf(unreadablePlaceholderFormat, readError)
	}
	if utils.IsBinary(fileData) {
		return binaryContentPlaceholder
	}
	fileContent := string(fileData)
	if !strings.HasSuffix(fileContent, "\n") {
		fileContent += "\n"
	}
	return fileContent
}
