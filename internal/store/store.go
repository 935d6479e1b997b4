// Package store persists projects as JSON documents under a data directory.
// Each project owns a directory holding project_info.json and an attachments folder.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/focusboard/internal/models"
)

const (
	infoFile       = "project_info.json"
	attachmentsDir = "attachments"
	archivedDir    = "archived"
)

var (
	ErrNotFound        = errors.New("project not found")
	ErrCorrupt         = errors.New("project metadata is corrupt")
	ErrInvalidName     = errors.New("invalid project name")
	ErrAlreadyArchived = errors.New("a project with this name is already archived")
	ErrPartialDelete   = errors.New("project could not be fully deleted")
	ErrAttachmentType  = errors.New("attachment type not allowed")
)

// DefaultAttachmentTypes are the extensions accepted when none are configured
var DefaultAttachmentTypes = []string{"pdf", "txt", "png", "jpg", "jpeg"}

// Options configures a Store
type Options struct {
	// AttachmentTypes lists allowed extensions without the dot. Empty uses the defaults.
	AttachmentTypes []string
	Logger          *zap.Logger
	Now             func() time.Time
}

// Store reads and writes project directories under root
type Store struct {
	root    string
	allowed map[string]bool
	log     *zap.Logger
	now     func() time.Time
	mu      sync.Mutex
}

// New creates the root directory if needed and returns a Store
func New(root string, opts Options) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	types := opts.AttachmentTypes
	if len(types) == 0 {
		types = DefaultAttachmentTypes
	}
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[strings.ToLower(strings.TrimPrefix(t, "."))] = true
	}
	return &Store{root: root, allowed: allowed, log: opts.Logger, now: opts.Now}, nil
}

// Root returns the directory holding all projects
func (s *Store) Root() string {
	return s.root
}

// ValidateName rejects names that cannot be used as a single directory name
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "",
		name == archivedDir, name == ".", name == "..",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Store) projectDir(name string) string {
	return filepath.Join(s.root, name)
}

// Save writes the full record for name, replacing any previous version.
// Missing todo ids are assigned first.
func (s *Store) Save(name string, p *models.Project) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	p.EnsureTodoIDs(s.now())
	if p.Todos == nil {
		p.Todos = []models.Todo{}
	}
	if p.Documents == nil {
		p.Documents = []models.Document{}
	}

	data, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return fmt.Errorf("encode project %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.projectDir(name)
	if err := os.MkdirAll(filepath.Join(dir, attachmentsDir), 0755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, infoFile), data, 0644); err != nil {
		return fmt.Errorf("write project %s: %w", name, err)
	}

	s.log.Debug("project saved", zap.String("project", name), zap.Int("todos", len(p.Todos)), zap.Int("documents", len(p.Documents)))
	return nil
}

// Load reads the record for name. It returns ErrNotFound when the metadata
// file is missing and ErrCorrupt when it does not parse.
func (s *Store) Load(name string) (*models.Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return readProject(filepath.Join(s.projectDir(name), infoFile))
}

func readProject(path string) (*models.Project, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &p, nil
}

// List returns the names of all active projects with valid metadata
func (s *Store) List() ([]string, error) {
	return s.listIn(s.root, true)
}

// ListArchived returns the names of archived projects with valid metadata
func (s *Store) ListArchived() ([]string, error) {
	return s.listIn(filepath.Join(s.root, archivedDir), false)
}

func (s *Store) listIn(dir string, skipArchive bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() || (skipArchive && e.Name() == archivedDir) {
			continue
		}
		if _, err := readProject(filepath.Join(dir, e.Name(), infoFile)); err != nil {
			if errors.Is(err, ErrCorrupt) {
				s.log.Warn("skipping project with corrupt metadata", zap.String("project", e.Name()), zap.Error(err))
			}
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ListByCategory returns active projects in category. An empty category or
// "All" matches every project.
func (s *Store) ListByCategory(category string) ([]string, error) {
	names, err := s.List()
	if err != nil || category == "" || category == "All" {
		return names, err
	}

	filtered := []string{}
	for _, name := range names {
		p, err := s.Load(name)
		if err != nil {
			continue
		}
		if p.Category == category {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}

// Archive moves the project directory under the archive namespace
func (s *Store) Archive(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.projectDir(name)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}

	dstParent := filepath.Join(s.root, archivedDir)
	if err := os.MkdirAll(dstParent, 0755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	dst := filepath.Join(dstParent, name)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyArchived, name)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archive project %s: %w", name, err)
	}

	s.log.Info("project archived", zap.String("project", name))
	return nil
}

// Delete removes the project directory and everything in it. Permissions
// are relaxed first. If anything is left behind ErrPartialDelete is returned;
// what was already removed stays removed.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.projectDir(name)
	if _, err := os.Lstat(dir); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		mode := os.FileMode(0666)
		if d.IsDir() {
			mode = 0777
		}
		if chErr := os.Chmod(path, mode); chErr != nil {
			s.log.Debug("chmod failed", zap.String("path", path), zap.Error(chErr))
		}
		return nil
	})

	removeErr := os.RemoveAll(dir)
	if _, err := os.Lstat(dir); err == nil {
		s.log.Warn("project partially deleted", zap.String("project", name), zap.Error(removeErr))
		if removeErr != nil {
			return fmt.Errorf("%w: %v", ErrPartialDelete, removeErr)
		}
		return ErrPartialDelete
	}

	s.log.Info("project deleted", zap.String("project", name))
	return nil
}

// SaveAttachment writes data under the project's attachment directory using
// the base name of fileName. Existing files with the same name are overwritten.
// The returned reference is what documents store.
func (s *Store) SaveAttachment(name, fileName string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	base := filepath.Base(filepath.Clean(fileName))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid attachment name %q", fileName)
	}
	if !s.AllowedAttachment(base) {
		return "", fmt.Errorf("%w: %s", ErrAttachmentType, base)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.projectDir(name), attachmentsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create attachment directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, base), data, 0644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}

	s.log.Info("attachment saved", zap.String("project", name), zap.String("file", base), zap.Int("bytes", len(data)))
	return filepath.ToSlash(filepath.Join(attachmentsDir, base)), nil
}

// AllowedAttachment reports whether fileName has an accepted extension
func (s *Store) AllowedAttachment(fileName string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	return s.allowed[ext]
}

// AttachmentPath resolves a stored reference to a file path. Only the base
// name of ref is used, so references written with a data directory prefix
// still resolve.
func (s *Store) AttachmentPath(name, ref string) string {
	return filepath.Join(s.projectDir(name), attachmentsDir, filepath.Base(filepath.FromSlash(ref)))
}

// ReadAttachment returns the bytes of an attachment reference
func (s *Store) ReadAttachment(name, ref string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.AttachmentPath(name, ref))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return data, nil
}
