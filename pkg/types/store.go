package types

import (
	"errors"
	"fmt"
)

// Store provides CRUD over the project registry. Every operation reads the
// backing file fresh; mutations rewrite it in full.
type Store interface {
	// Load returns the whole mapping.
	// Returns ErrNotFound if the backing file is absent and the store was not
	// configured to create it, ErrCorruptData if it cannot be decoded.
	Load() (Projects, error)

	// Bootstrap creates the backing file holding an empty mapping, and its
	// parent directories, if it does not exist.
	Bootstrap() error

	// Save replaces the backing file with the given mapping.
	Save(projects Projects) error

	// Add creates a project and returns its generated ID.
	// Returns ErrValidation if name or directory is empty.
	Add(name, directory string) (string, error)

	// Get returns the project with the given ID. ok is false if absent.
	Get(id string) (project Project, ok bool, err error)

	// Delete removes the project with the given ID. Absent IDs are a no-op.
	Delete(id string) error

	// Update changes the mutable fields of a project.
	// Returns ErrProjectNotFound if no project has that ID.
	Update(id string, u ProjectUpdate) (Project, error)

	// List returns all projects ordered by creation time.
	List() ([]Project, error)

	// Path returns the backing file path.
	Path() string
}

// Store errors.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("backing file not found")
	ErrCorruptData     = errors.New("backing file is corrupt")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidFilter   = errors.New("invalid filter")
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CorruptDataError reports a backing file that could not be decoded.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt project file %s: %v", e.Path, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCorruptData) match.
func (e *CorruptDataError) Is(target error) bool {
	return target == ErrCorruptData
}
