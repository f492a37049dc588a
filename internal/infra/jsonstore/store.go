// Package jsonstore provides a JSON file-based implementation of the ralph repositories.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/tidwall/jsonc"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/infra/fingerprint"
)

// Store implements the tree, worker and project repositories using one
// directory per project under <ralphDir>/projects.
type Store struct {
	dir string
}

// Ensure Store implements the repository ports.
var (
	_ domain.TreeRepository    = (*Store)(nil)
	_ domain.WorkerRepository  = (*Store)(nil)
	_ domain.ProjectRepository = (*Store)(nil)
	_ domain.StoreInitializer  = (*Store)(nil)
)

// New creates a new Store rooted at the .ralph directory.
// The directory does not need to exist; it will be created on first write.
func New(ralphDir string) *Store {
	return &Store{dir: ralphDir}
}

// Dir returns the .ralph directory.
func (s *Store) Dir() string {
	return s.dir
}

// Initialize creates the store directories if they don't exist.
func (s *Store) Initialize() error {
	for _, dir := range []string{
		filepath.Join(s.dir, "projects"),
		filepath.Join(s.dir, "logs"),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return nil
}

// IsInitialized checks if the store directory exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(s.dir, "projects"))
	return err == nil
}

// === Tree ===

// LoadTree reads tree.json. Comments and trailing commas are accepted.
func (s *Store) LoadTree(projectID string) (domain.Tree, bool, error) {
	var tree domain.Tree
	path := domain.TreePath(s.dir, projectID)
	found, err := s.readLocked(path, &tree)
	if err != nil || !found {
		return domain.Tree{}, false, err
	}
	tree = domain.Normalize(tree)
	if err := domain.Validate(tree); err != nil {
		return domain.Tree{}, false, fmt.Errorf("invalid %s: %w", path, err)
	}
	return tree, true, nil
}

// SaveTree writes tree.json.
func (s *Store) SaveTree(projectID string, tree domain.Tree) error {
	if err := domain.Validate(tree); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return s.writeLocked(domain.TreePath(s.dir, projectID), domain.Normalize(tree))
}

// === Workers ===

// LoadWorkers reads workers.json, returning an empty pool if it is missing.
func (s *Store) LoadWorkers(projectID string) (domain.WorkerPool, error) {
	var pool domain.WorkerPool
	if _, err := s.readLocked(domain.WorkersPath(s.dir, projectID), &pool); err != nil {
		return domain.WorkerPool{}, err
	}
	if pool.Workers == nil {
		pool.Workers = []domain.Worker{}
	}
	return pool, nil
}

// SaveWorkers writes workers.json.
func (s *Store) SaveWorkers(projectID string, pool domain.WorkerPool) error {
	if pool.Workers == nil {
		pool.Workers = []domain.Worker{}
	}
	return s.writeLocked(domain.WorkersPath(s.dir, projectID), pool)
}

// === Projects ===

// GetProject reads project.json.
func (s *Store) GetProject(id string) (domain.Project, bool, error) {
	var p domain.Project
	found, err := s.readLocked(domain.ProjectFilePath(s.dir, id), &p)
	if err != nil || !found {
		return domain.Project{}, false, err
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, true, nil
}

// ListProjects returns every project that has a project.json, sorted by id.
func (s *Store) ListProjects() ([]domain.Project, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, "projects"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	var projects []domain.Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, ok, err := s.GetProject(e.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			projects = append(projects, p)
		}
	}

	slices.SortFunc(projects, func(a, b domain.Project) int {
		return strings.Compare(a.ID, b.ID)
	})
	return projects, nil
}

// SaveProject writes project.json.
func (s *Store) SaveProject(p domain.Project) error {
	if err := domain.ValidateProjectID(p.ID); err != nil {
		return err
	}
	return s.writeLocked(domain.ProjectFilePath(s.dir, p.ID), p)
}

// LoadRequirements reads requirements.md, returning "" if it is missing.
func (s *Store) LoadRequirements(projectID string) (string, error) {
	content, err := os.ReadFile(domain.RequirementsPath(s.dir, projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read requirements: %w", err)
	}
	return string(content), nil
}

// SaveRequirements writes requirements.md.
func (s *Store) SaveRequirements(projectID, content string) error {
	path := domain.RequirementsPath(s.dir, projectID)
	lock, err := s.acquireLock(path, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)
	return writeAtomic(path, []byte(content))
}

// AppendProgress appends entry to progress.txt.
func (s *Store) AppendProgress(projectID, entry string) error {
	path := domain.ProgressPath(s.dir, projectID)
	lock, err := s.acquireLock(path, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open progress log: %w", err)
	}
	if _, err := f.WriteString(entry); err != nil {
		_ = f.Close()
		return fmt.Errorf("append progress log: %w", err)
	}
	return f.Close()
}

// === File handling ===

// readLocked decodes the document at path with a shared lock.
// found is false if the file does not exist.
func (s *Store) readLocked(path string, v any) (found bool, err error) {
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		return false, nil
	}

	lock, err := s.acquireLock(path, syscall.LOCK_SH)
	if err != nil {
		return false, err
	}
	defer s.releaseLock(lock)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := decode(content, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeLocked encodes v to path with an exclusive lock.
// The file is left untouched when its content would not change.
func (s *Store) writeLocked(path string, v any) error {
	content, err := encode(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	lock, err := s.acquireLock(path, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	if current, err := os.ReadFile(path); err == nil &&
		fingerprint.Digest(current) == fingerprint.Digest(content) {
		return nil
	}
	return writeAtomic(path, content)
}

func (s *Store) acquireLock(path string, lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// decode parses JSON that may contain comments or trailing commas.
func decode(content []byte, v any) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return errors.New("empty document")
	}
	return json.Unmarshal(jsonc.ToJSON(content), v)
}

func encode(v any) ([]byte, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(content, '\n'), nil
}

func writeAtomic(path string, content []byte) error {
	// Write to temp file first, then rename for atomicity
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// DecodeTree parses a tree document the way LoadTree does.
func DecodeTree(content []byte) (domain.Tree, error) {
	var tree domain.Tree
	if err := decode(content, &tree); err != nil {
		return domain.Tree{}, err
	}
	tree = domain.Normalize(tree)
	if err := domain.Validate(tree); err != nil {
		return domain.Tree{}, err
	}
	return tree, nil
}

// DecodeNode parses a single task node, e.g. the argument of `ralph add`.
func DecodeNode(content []byte) (domain.TaskNode, error) {
	var node domain.TaskNode
	if err := decode(content, &node); err != nil {
		return domain.TaskNode{}, err
	}
	return node, nil
}

// EncodeTree renders a tree the way SaveTree writes it.
func EncodeTree(tree domain.Tree) ([]byte, error) {
	return encode(domain.Normalize(tree))
}
