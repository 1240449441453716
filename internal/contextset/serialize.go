package contextset

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// errorEncodeRecordFormat reports a failure to marshal the context record.
	errorEncodeRecordFormat = "encoding context record: %w"
	// errorDecodeRecordFormat reports a malformed serialized context record.
	errorDecodeRecordFormat = "decoding context record: %w"
	// errorMissingRootMessage reports a record without the required root field.
	errorMissingRootMessage = "context record is missing the root path"

	recordIndent = "  "
)

// serializedContext is the persisted JSON form of a Context. Root uses a
// pointer so an absent field is distinguishable from an empty string.
type serializedContext struct {
	Root   *string        `json:"root"`
	Ignore []IgnoreSource `json:"ignore"`
	Files  []string       `json:"files"`
}

// ToJSON emits the deterministic serialized record: the resolved root, the
// ordered tagged ignore sources, and the sorted absolute file list.
func (selection *Context) ToJSON() (string, error) {
	record := serializedContext{
		Root:   &selection.rootPath,
		Ignore: make([]IgnoreSource, 0, len(selection.ignoreSources)),
		Files:  selection.IncludedFiles(),
	}
	record.Ignore = append(record.Ignore, selection.ignoreSources...)
	encodedRecord, encodeError := json.MarshalIndent(record, "", recordIndent)
	if encodeError != nil {
		return "", fmt.Errorf(errorEncodeRecordFormat, encodeError)
	}
	return string(encodedRecord), nil
}

// FromJSON reconstructs a Context from a serialized record. The root is
// re-resolved and must still exist, pattern-file sources are re-read lazily
// on the next match, and the stored file list is restored verbatim without
// re-validating containment or re-applying ignore filtering. Malformed
// records fail fast.
func FromJSON(serializedRecord string, logger *zap.Logger) (*Context, error) {
	var record serializedContext
	if decodeError := json.Unmarshal([]byte(serializedRecord), &record); decodeError != nil {
		return nil, fmt.Errorf(errorDecodeRecordFormat, decodeError)
	}
	if record.Root == nil || *record.Root == "" {
		return nil, errors.New(errorMissingRootMessage)
	}
	restored, constructionError := New(*record.Root, record.Ignore, logger)
	if constructionError != nil {
		return nil, constructionError
	}
	for _, includedPath := range record.Files {
		restored.included[includedPath] = struct{}{}
	}
	return restored, nil
}
