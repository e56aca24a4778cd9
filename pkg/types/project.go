package types

import (
	"strings"
	"time"
)

// Project is one managed entry in the registry.
type Project struct {
	ID        string `json:"-"`          // map key in the backing file
	Name      string `json:"name"`       // required, non-empty
	Directory string `json:"directory"`  // absolute path, not checked for existence
	AddedDate string `json:"added_date"` // ISO-8601, set once at creation
}

// Projects is the full mapping held by the backing file, keyed by project ID.
type Projects map[string]Project

// timestampLayouts are the ISO-8601 forms accepted by ParseTimestamp. Files
// written by older tools carry local time without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp or date. Values without an
// offset are read as local time.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// AddedTime parses AddedDate.
func (p Project) AddedTime() (time.Time, error) {
	return ParseTimestamp(p.AddedDate)
}

// ProjectUpdate carries the mutable fields of a project. Nil fields are left
// unchanged.
type ProjectUpdate struct {
	Name      *string
	Directory *string
}

// Empty reports whether the update sets no field.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Directory == nil
}

// ValidateProjectFields checks the user-supplied fields of a project.
func ValidateProjectFields(name, directory string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(directory) == "" {
		return &ValidationError{Field: "directory"}
	}
	return nil
}
