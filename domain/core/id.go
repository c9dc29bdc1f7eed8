package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// ModelID addresses a persisted model artifact.
	ModelID string
	// FileRef addresses a stored dataset or generated result file.
	FileRef string
)

func (id ModelID) String() string { return string(id) }
func (r FileRef) String() string  { return string(r) }

// ParseModelID parses a string into a ModelID
func ParseModelID(s string) (ModelID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("model ID cannot be empty")
	}
	return ModelID(s), nil
}

// ParseFileRef parses a string into a FileRef. Path separators are rejected so
// a reference can never escape the storage directory.
func ParseFileRef(s string) (FileRef, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("file reference cannot be empty")
	}
	if filepath.Base(s) != s {
		return "", fmt.Errorf("file reference must not contain path separators: %q", s)
	}
	return FileRef(s), nil
}

// DeriveModelID derives a model identifier from the uploaded file reference
// and the target column. The derivation is deterministic: retraining the same
// file against the same target overwrites the prior artifact (last writer
// wins, no versioning).
func DeriveModelID(fileRef FileRef, target string) ModelID {
	base := strings.TrimSuffix(string(fileRef), filepath.Ext(string(fileRef)))
	return ModelID(base + "_" + target)
}
