package types

import "errors"

// DefaultIndent matches the indentation of files written by earlier releases.
const DefaultIndent = 4

// Config holds the parameters for opening a project store.
type Config struct {
	// Path is the backing JSON file.
	Path string `json:"path" yaml:"store_path"`

	// CreateIfMissing makes Load bootstrap an absent backing file and return
	// an empty mapping instead of ErrNotFound.
	CreateIfMissing bool `json:"create_if_missing" yaml:"create_if_missing"`

	// Indent is the JSON indentation width. Zero selects DefaultIndent.
	Indent int `json:"indent,omitempty" yaml:"indent,omitempty"`
}

// Config validation errors.
var (
	ErrPathEmpty     = errors.New("store path must not be empty")
	ErrIndentInvalid = errors.New("indent must not be negative")
)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Path == "" {
		return ErrPathEmpty
	}
	if c.Indent < 0 {
		return ErrIndentInvalid
	}
	return nil
}

// GetIndent returns the configured indent or DefaultIndent when unset.
func (c Config) GetIndent() int {
	if c.Indent == 0 {
		return DefaultIndent
	}
	return c.Indent
}
