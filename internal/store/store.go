// Package store manages the on-disk lifecycle of a project's context record:
// the hidden .lctx directory holding exactly one serialized context file.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/lctx/internal/contextset"
	"github.com/temirov/lctx/internal/utils"
)

const (
	// DirectoryName is the hidden per-project directory holding the context record.
	DirectoryName = utils.StoreDirectoryName
	// recordFileName is the single serialized context file inside DirectoryName.
	recordFileName = "context.json"

	storeDirectoryPermissions = 0o755
	recordFilePermissions     = 0o600

	// errorAlreadyInitializedFormat reports an init attempt over an existing store.
	errorAlreadyInitializedFormat = "context already initialized at %s"
	// errorInspectStoreFormat reports a failure to inspect the store directory.
	errorInspectStoreFormat = "inspecting context store %s: %w"
	// errorCreateStoreFormat reports a failure to create the store directory.
	errorCreateStoreFormat = "creating context store %s: %w"
	// errorReadRecordFormat reports a failure to read the context record.
	errorReadRecordFormat = "reading context record %s: %w"
	// errorWriteRecordFormat reports a failure to write the context record.
	errorWriteRecordFormat = "writing context record %s: %w"
	// errorRemoveStoreFormat reports a failure to remove the store directory.
	errorRemoveStoreFormat = "removing context store %s: %w"
	// errorNotInitializedFormat reports that no store exists at or above a directory.
	errorNotInitializedFormat = "no context initialized in %s or any parent directory"
	// errorResolveStartFormat reports a discovery starting point that cannot be resolved.
	errorResolveStartFormat = "resolving %s: %w"
)

// Initialize creates the .lctx store under rootDirectory with a fresh empty
// context record carrying the provided ignore sources. It fails when a store
// already exists unless force is set, and returns the store directory path.
func Initialize(rootDirectory string, ignoreSources []contextset.IgnoreSource, force bool, logger *zap.Logger) (string, error) {
	created, constructionError := contextset.New(rootDirectory, ignoreSources, logger)
	if constructionError != nil {
		return "", constructionError
	}
	storeDirectory := filepath.Join(created.Root(), DirectoryName)
	if _, statError := os.Stat(storeDirectory); statError == nil {
		if !force {
			return "", fmt.Errorf(errorAlreadyInitializedFormat, storeDirectory)
		}
	} else if !os.IsNotExist(statError) {
		return "", fmt.Errorf(errorInspectStoreFormat, storeDirectory, statError)
	}
	if makeDirectoryError := os.MkdirAll(storeDirectory, storeDirectoryPermissions); makeDirectoryError != nil {
		return "", fmt.Errorf(errorCreateStoreFormat, storeDirectory, makeDirectoryError)
	}
	if saveError := Save(created); saveError != nil {
		return "", saveError
	}
	return storeDirectory, nil
}

// Destroy removes the store governing startDirectory. It fails when no store
// is found at or above the starting directory.
func Destroy(startDirectory string) error {
	rootDirectory, discoverError := Discover(startDirectory)
	if discoverError != nil {
		return discoverError
	}
	storeDirectory := filepath.Join(rootDirectory, DirectoryName)
	if removeError := os.RemoveAll(storeDirectory); removeError != nil {
		return fmt.Errorf(errorRemoveStoreFormat, storeDirectory, removeError)
	}
	return nil
}

// Discover walks upward from startDirectory until it finds a directory
// containing the .lctx store and returns that directory.
func Discover(startDirectory string) (string, error) {
	absoluteStart, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf(errorResolveStartFormat, startDirectory, absoluteError)
	}
	currentDirectory := absoluteStart
	for {
		storeDirectory := filepath.Join(currentDirectory, DirectoryName)
		storeInfo, statError := os.Stat(storeDirectory)
		if statError == nil && storeInfo.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}
	return "", fmt.Errorf(errorNotInitializedFormat, absoluteStart)
}

// Load reads the context record governing startDirectory and reconstructs
// the Context. Structural failures are returned as hard errors.
func Load(startDirectory string, logger *zap.Logger) (*contextset.Context, error) {
	rootDirectory, discoverError := Discover(startDirectory)
	if discoverError != nil {
		return nil, discoverError
	}
	recordPath := filepath.Join(rootDirectory, DirectoryName, recordFileName)
	recordData, readError := os.ReadFile(recordPath)
	if readError != nil {
		return nil, fmt.Errorf(errorReadRecordFormat, recordPath, readError)
	}
	return contextset.FromJSON(string(recordData), logger)
}

// Save serializes the context and writes it into the store beneath its root.
func Save(selection *contextset.Context) error {
	serializedRecord, serializeError := selection.ToJSON()
	if serializeError != nil {
		return serializeError
	}
	recordPath := filepath.Join(selection.Root(), DirectoryName, recordFileName)
	if writeError := os.WriteFile(recordPath, []byte(serializedRecord+"\n"), recordFilePermissions); writeError != nil {
		return fmt.Errorf(errorWriteRecordFormat, recordPath, writeError)
	}
	return nil
}
