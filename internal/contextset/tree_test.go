package contextset

import (
	"path/filepath"
	"testing"
)

// TestTreeRendersSortedGlyphTree pins the exact glyph layout for a nested selection.
func TestTreeRendersSortedGlyphTree(testingHandle *testing.T) {
	rootDirectory := newFixtureRoot(testingHandle)
	fixturePaths := []string{
		filepath.Join(rootDirectory, ".hidden_dir", ".hidden_file"),
		filepath.Join(rootDirectory, "about.txt"),
		filepath.Join(rootDirectory, "b", "hello.bash"),
		filepath.Join(rootDirectory, "b", "hello.bat"),
		filepath.Join(rootDirectory, "hello.c"),
		filepath.Join(rootDirectory, "j", "hello.java"),
		filepath.Join(rootDirectory, "j", "hello.js"),
		filepath.Join(rootDirectory, "sql", "mysql", "hello.sql"),
		filepath.Join(rootDirectory, "sql", "postgresql", "hello.sql"),
	}
	for _, fixturePath := range fixturePaths {
		writeFixtureFile(testingHandle, fixturePath, "hello\n")
	}

	selection := newTestContext(testingHandle, rootDirectory, nil)
	selection.Add(rootDirectory)

	expectedTree := `.
├── .hidden_dir
│   └── .hidden_file
├── about.txt
├── b
│   ├── hello.bash
│   └── hello.bat
├── hello.c
├── j
│   ├── hello.java
│   └── hello.js
└── sql
    ├── mysql
    │   └── hello.sql
    └── postgresql
        └── hello.sql
`
	if renderedTree := selection.Tree(); renderedTree != expectedTree {
		testingHandle.Fatalf("unexpected tree:\n got:\n%s\nwant:\n%s", renderedTree, expectedTree)
	}
}

// TestTreeReflectsRemovals verifies the tree re-renders after directories are removed.
func TestTreeReflectsRemovals(testingHandle *testing.T) {
	rootDirectory := newFixtureRoot(testingHandle)
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "keep.txt"), "keep\n")
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, "gone", "drop.txt"), "drop\n")

	selection := newTestContext(testingHandle, rootDirectory, nil)
	selection.Add(rootDirectory)
	selection.Remove(filepath.Join(rootDirectory, "gone"))

	expectedTree := ".\n└── keep.txt\n"
	if renderedTree := selection.Tree(); renderedTree != expectedTree {
		testingHandle.Fatalf("unexpected tree after removal:\n got %q\nwant %q", renderedTree, expectedTree)
	}
}

// TestTreeEmptySelection verifies that an empty selection renders as the empty string.
func TestTreeEmptySelection(testingHandle *testing.T) {
	rootDirectory := newFixtureRoot(testingHandle)
	selection := newTestContext(testingHandle, rootDirectory, nil)
	if renderedTree := selection.Tree(); renderedTree != "" {
		testingHandle.Fatalf("expected empty tree, got %q", renderedTree)
	}
}
