// This file provides the read/write helpers for the backing JSON file.
package jsonstore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/relmap/pkg/types"
)

// emptyDocument is the content of a freshly bootstrapped backing file.
const emptyDocument = "{}\n"

// readProjects decodes the backing file at path. The returned mapping is
// never nil. A missing file is reported with an os.ErrNotExist-wrapping error.
func readProjects(path string) (types.Projects, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return decodeProjects(path, data)
}

// decodeProjects parses a backing file body. Anything other than a JSON
// object whose values are project objects is corrupt.
func decodeProjects(path string, data []byte) (types.Projects, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &types.CorruptDataError{Path: path, Err: fmt.Errorf("file is empty")}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &types.CorruptDataError{Path: path, Err: err}
	}
	if raw == nil {
		// A literal null decodes to a nil map.
		return nil, &types.CorruptDataError{Path: path, Err: fmt.Errorf("top-level value is null")}
	}

	projects := make(types.Projects, len(raw))
	for id, rec := range raw {
		if strings.TrimSpace(string(rec)) == "null" {
			return nil, &types.CorruptDataError{Path: path, Err: fmt.Errorf("project %q is null", id)}
		}
		var p types.Project
		if err := json.Unmarshal(rec, &p); err != nil {
			return nil, &types.CorruptDataError{Path: path, Err: fmt.Errorf("project %q: %w", id, err)}
		}
		p.ID = id
		projects[id] = p
	}
	return projects, nil
}

// encodeProjects renders the mapping with the given indent width. Map keys
// are emitted in sorted order, so equal mappings encode to equal bytes.
// Characters such as & and < are written literally.
func encodeProjects(projects types.Projects, indent int) ([]byte, error) {
	if projects == nil {
		projects = types.Projects{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(projects); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to path using the temp-file, fsync, rename
// pattern so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".projects-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing projects: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
