// Package jsonstore implements the project store on top of a single JSON
// file. The file is the only source of truth: every operation reads it fresh
// and every mutation rewrites it in full, so the cost of a mutation grows
// linearly with the number of projects.
package jsonstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/relmap/pkg/types"
)

// Store implements types.Store backed by one JSON file.
type Store struct {
	mu     sync.Mutex
	path   string
	config types.Config
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
}

var _ types.Store = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the time source used to stamp new projects.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the function that produces project IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New creates a store for the file named by config.Path. The file is not
// touched; call Bootstrap or rely on CreateIfMissing.
func New(config types.Config, opts ...Option) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	config.Path = path

	s := &Store{
		path:   path,
		config: config,
		log:    zap.NewNop(),
		now:    time.Now,
		newID:  generateUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("path", path))
	return s, nil
}

// Path returns the absolute path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Bootstrap creates the parent directories and an empty backing file if they
// do not exist. An existing file is left untouched.
func (s *Store) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.bootstrapLocked()
	return err
}

// bootstrapLocked reports whether it created the file.
func (s *Store) bootstrapLocked() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("create store directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.log.Debug("project file already exists")
			return false, nil
		}
		return false, fmt.Errorf("create project file: %w", err)
	}
	if _, err := f.WriteString(emptyDocument); err != nil {
		f.Close()
		return false, fmt.Errorf("write project file: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close project file: %w", err)
	}
	s.log.Info("created project file")
	return true, nil
}

// Load reads the whole mapping from disk.
func (s *Store) Load() (types.Projects, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (types.Projects, error) {
	projects, err := readProjects(s.path)
	if err == nil {
		s.log.Info("loaded projects", zap.Int("count", len(projects)))
		return projects, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		if errors.Is(err, types.ErrCorruptData) {
			return nil, err
		}
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if !s.config.CreateIfMissing {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, s.path)
	}

	s.log.Warn("project file does not exist, creating it")
	if _, err := s.bootstrapLocked(); err != nil {
		return nil, err
	}
	return types.Projects{}, nil
}

// Save replaces the backing file with projects.
func (s *Store) Save(projects types.Projects) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(projects)
}

func (s *Store) saveLocked(projects types.Projects) error {
	data, err := encodeProjects(projects, s.config.GetIndent())
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	s.log.Info("saved projects", zap.Int("count", len(projects)))
	return nil
}

// Add creates a project, stamps it with the current time, and persists it.
// A relative directory is made absolute against the working directory.
func (s *Store) Add(name, directory string) (string, error) {
	name = strings.TrimSpace(name)
	directory = strings.TrimSpace(directory)
	if err := types.ValidateProjectFields(name, directory); err != nil {
		return "", err
	}
	dir, err := absDir(directory)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadLocked()
	if err != nil {
		return "", err
	}

	id, err := s.freshID(projects)
	if err != nil {
		return "", err
	}

	projects[id] = types.Project{
		ID:        id,
		Name:      name,
		Directory: dir,
		AddedDate: s.now().Format(time.RFC3339Nano),
	}
	if err := s.saveLocked(projects); err != nil {
		return "", err
	}
	s.log.Info("added project", zap.String("project_id", id), zap.String("name", name))
	return id, nil
}

// Get returns the project with the given ID.
func (s *Store) Get(id string) (types.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadLocked()
	if err != nil {
		return types.Project{}, false, err
	}
	p, ok := projects[id]
	return p, ok, nil
}

// Delete removes the project with the given ID. The file is not rewritten
// when no such project exists.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadLocked()
	if err != nil {
		return err
	}
	p, ok := projects[id]
	if !ok {
		s.log.Debug("delete of unknown project ignored", zap.String("project_id", id))
		return nil
	}
	delete(projects, id)
	if err := s.saveLocked(projects); err != nil {
		return err
	}
	s.log.Info("deleted project", zap.String("project_id", id), zap.String("name", p.Name))
	return nil
}

// Update applies the non-nil fields of u to the project with the given ID.
// ID and AddedDate never change.
func (s *Store) Update(id string, u types.ProjectUpdate) (types.Project, error) {
	if u.Empty() {
		return types.Project{}, fmt.Errorf("%w: no field to update", types.ErrValidation)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return types.Project{}, &types.ValidationError{Field: "name"}
	}
	if u.Directory != nil && strings.TrimSpace(*u.Directory) == "" {
		return types.Project{}, &types.ValidationError{Field: "directory"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.loadLocked()
	if err != nil {
		return types.Project{}, err
	}
	p, ok := projects[id]
	if !ok {
		return types.Project{}, fmt.Errorf("%w: %s", types.ErrProjectNotFound, id)
	}

	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Directory != nil {
		dir, err := absDir(strings.TrimSpace(*u.Directory))
		if err != nil {
			return types.Project{}, err
		}
		p.Directory = dir
	}
	projects[id] = p

	if err := s.saveLocked(projects); err != nil {
		return types.Project{}, err
	}
	s.log.Info("updated project", zap.String("project_id", id), zap.String("name", p.Name))
	return p, nil
}

// List returns every project ordered by AddedDate, then ID.
func (s *Store) List() ([]types.Project, error) {
	projects, err := s.Load()
	if err != nil {
		return nil, err
	}
	return SortedProjects(projects), nil
}

// SortedProjects flattens a mapping into a slice ordered by creation time.
// Projects whose AddedDate does not parse sort after those that do.
func SortedProjects(projects types.Projects) []types.Project {
	list := make([]types.Project, 0, len(projects))
	for id, p := range projects {
		p.ID = id
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		ti, erri := list[i].AddedTime()
		tj, errj := list[j].AddedTime()
		switch {
		case erri == nil && errj == nil && !ti.Equal(tj):
			return ti.Before(tj)
		case erri == nil && errj != nil:
			return true
		case erri != nil && errj == nil:
			return false
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// maxIDAttempts bounds the retries when a generated ID is already taken.
const maxIDAttempts = 8

func (s *Store) freshID(projects types.Projects) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if _, taken := projects[id]; !taken && id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate project id: %d attempts collided", maxIDAttempts)
}

func absDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", dir, err)
	}
	return abs, nil
}

// generateUUID generates a new UUID v7 for project IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
