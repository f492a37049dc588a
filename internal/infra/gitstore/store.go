// Package gitstore provides a Git plumbing-based implementation of the tree and worker repositories.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gopkg.in/yaml.v3"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/infra/fingerprint"
)

// Store implements domain.TreeRepository, domain.WorkerRepository and
// domain.SnapshotStore using Git plumbing (refs and blobs). Nothing is
// written to the working tree or the branch history.
//
// Data structure:
//
//	refs/<namespace>/<project>/
//	  tree      → blob (tree YAML)
//	  workers   → blob (worker pool YAML)
//	  snapshots/
//	    <seq>   → tree {tree.yaml, meta.yaml}
type Store struct {
	repo      *git.Repository
	namespace string // e.g., "ralph"
	mu        sync.RWMutex
}

// Ensure Store implements the repository ports.
var (
	_ domain.TreeRepository   = (*Store)(nil)
	_ domain.WorkerRepository = (*Store)(nil)
	_ domain.SnapshotStore    = (*Store)(nil)
)

const (
	snapshotTreeFile = "tree.yaml"
	snapshotMetaFile = "meta.yaml"
)

// snapshotMeta is stored next to the tree in every snapshot.
type snapshotMeta struct {
	CreatedAt time.Time        `yaml:"created_at"`
	Digest    string           `yaml:"digest"`
	Stats     domain.TreeStats `yaml:"stats"`
}

// New creates a new Store for the given repository.
func New(repoPath, namespace string) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return NewWithRepo(repo, namespace), nil
}

// NewWithRepo creates a new Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	return &Store{
		repo:      repo,
		namespace: namespace,
	}
}

// projectPrefix returns the ref prefix for a project.
func (s *Store) projectPrefix(projectID string) string {
	return "refs/" + s.namespace + "/" + projectID + "/"
}

func (s *Store) treeRef(projectID string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.projectPrefix(projectID) + "tree")
}

func (s *Store) workersRef(projectID string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.projectPrefix(projectID) + "workers")
}

func (s *Store) snapshotRef(projectID string, seq int) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.projectPrefix(projectID) + "snapshots/" + strconv.Itoa(seq))
}

// === Tree ===

// LoadTree reads the project's tree blob.
func (s *Store) LoadTree(projectID string) (domain.Tree, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok, err := s.readRef(s.treeRef(projectID))
	if err != nil || !ok {
		return domain.Tree{}, false, err
	}
	tree, err := decodeTree(data)
	if err != nil {
		return domain.Tree{}, false, err
	}
	return tree, true, nil
}

// SaveTree writes the project's tree blob and moves the ref.
func (s *Store) SaveTree(projectID string, tree domain.Tree) error {
	if err := domain.Validate(tree); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(domain.Normalize(tree))
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return s.writeRef(s.treeRef(projectID), data)
}

// === Workers ===

// LoadWorkers reads the project's worker pool blob.
func (s *Store) LoadWorkers(projectID string) (domain.WorkerPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := domain.WorkerPool{Workers: []domain.Worker{}}
	data, ok, err := s.readRef(s.workersRef(projectID))
	if err != nil || !ok {
		return pool, err
	}
	if err := yaml.Unmarshal(data, &pool); err != nil {
		return domain.WorkerPool{}, fmt.Errorf("decode workers: %w", err)
	}
	if pool.Workers == nil {
		pool.Workers = []domain.Worker{}
	}
	return pool, nil
}

// SaveWorkers writes the project's worker pool blob.
func (s *Store) SaveWorkers(projectID string, pool domain.WorkerPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(pool)
	if err != nil {
		return fmt.Errorf("encode workers: %w", err)
	}
	return s.writeRef(s.workersRef(projectID), data)
}

// === Snapshots ===

// Snapshot records tree under the next sequence number.
func (s *Store) Snapshot(projectID string, tree domain.Tree, now time.Time) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots, err := s.listSnapshotsLocked(projectID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	seq := 1
	if len(snapshots) > 0 {
		seq = snapshots[len(snapshots)-1].Seq + 1
	}

	treeData, err := yaml.Marshal(domain.Normalize(tree))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("encode tree: %w", err)
	}
	meta := snapshotMeta{
		CreatedAt: now.UTC(),
		Digest:    fingerprint.Digest(treeData),
		Stats:     domain.Stats(tree),
	}
	metaData, err := yaml.Marshal(meta)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("encode snapshot meta: %w", err)
	}

	treeHash, err := s.writeBlob(treeData)
	if err != nil {
		return domain.Snapshot{}, err
	}
	metaHash, err := s.writeBlob(metaData)
	if err != nil {
		return domain.Snapshot{}, err
	}

	// Entries must be sorted by name for a canonical tree object
	dir := &object.Tree{Entries: []object.TreeEntry{
		{Name: snapshotMetaFile, Mode: filemode.Regular, Hash: metaHash},
		{Name: snapshotTreeFile, Mode: filemode.Regular, Hash: treeHash},
	}}
	obj := s.repo.Storer.NewEncodedObject()
	if err := dir.Encode(obj); err != nil {
		return domain.Snapshot{}, fmt.Errorf("encode snapshot tree: %w", err)
	}
	dirHash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("store snapshot tree: %w", err)
	}

	refName := s.snapshotRef(projectID, seq)
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(refName, dirHash)); err != nil {
		return domain.Snapshot{}, fmt.Errorf("set snapshot ref: %w", err)
	}

	return domain.Snapshot{
		Ref:       string(refName),
		Seq:       seq,
		Digest:    meta.Digest,
		CreatedAt: meta.CreatedAt,
		Stats:     meta.Stats,
	}, nil
}

// ListSnapshots returns the project's snapshots, oldest first.
func (s *Store) ListSnapshots(projectID string) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listSnapshotsLocked(projectID)
}

// LoadSnapshot returns the tree recorded by a snapshot.
func (s *Store) LoadSnapshot(projectID string, seq int) (domain.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Reference(s.snapshotRef(projectID, seq), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return domain.Tree{}, fmt.Errorf("snapshot %d: %w", seq, domain.ErrNoSnapshots)
		}
		return domain.Tree{}, fmt.Errorf("get snapshot ref: %w", err)
	}
	data, err := s.readTreeFile(ref.Hash(), snapshotTreeFile)
	if err != nil {
		return domain.Tree{}, err
	}
	return decodeTree(data)
}

// listSnapshotsLocked lists snapshots without locking.
func (s *Store) listSnapshotsLocked(projectID string) ([]domain.Snapshot, error) {
	var snapshots []domain.Snapshot
	prefix := s.projectPrefix(projectID) + "snapshots/"

	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		refName := string(ref.Name())
		suffix, ok := strings.CutPrefix(refName, prefix)
		if !ok {
			return nil
		}
		seq, parseErr := strconv.Atoi(suffix)
		if parseErr != nil {
			return nil // Skip invalid refs
		}

		data, readErr := s.readTreeFile(ref.Hash(), snapshotMetaFile)
		if readErr != nil {
			return readErr
		}
		var meta snapshotMeta
		if decodeErr := yaml.Unmarshal(data, &meta); decodeErr != nil {
			return fmt.Errorf("decode snapshot meta: %w", decodeErr)
		}

		snapshots = append(snapshots, domain.Snapshot{
			Ref:       refName,
			Seq:       seq,
			Digest:    meta.Digest,
			CreatedAt: meta.CreatedAt,
			Stats:     meta.Stats,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(snapshots, func(a, b domain.Snapshot) int {
		return a.Seq - b.Seq
	})
	return snapshots, nil
}

// === Plumbing ===

// readRef returns the blob a ref points to. ok is false if the ref does not exist.
func (s *Store) readRef(name plumbing.ReferenceName) ([]byte, bool, error) {
	ref, err := s.repo.Reference(name, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get ref %s: %w", name, err)
	}
	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// writeRef stores data as a blob and points name at it.
func (s *Store) writeRef(name plumbing.ReferenceName, data []byte) error {
	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return fmt.Errorf("set ref %s: %w", name, err)
	}
	return nil
}

// writeBlob writes data to a blob object.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	return hash, nil
}

// readBlob reads data from a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

// readTreeFile reads one entry of a snapshot tree object.
func (s *Store) readTreeFile(treeHash plumbing.Hash, name string) ([]byte, error) {
	dir, err := s.repo.TreeObject(treeHash)
	if err != nil {
		return nil, fmt.Errorf("get snapshot tree: %w", err)
	}
	entry, err := dir.FindEntry(name)
	if err != nil {
		return nil, fmt.Errorf("snapshot entry %s: %w", name, err)
	}
	return s.readBlob(entry.Hash)
}

func decodeTree(data []byte) (domain.Tree, error) {
	var tree domain.Tree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return domain.Tree{}, fmt.Errorf("decode tree: %w", err)
	}
	tree = domain.Normalize(tree)
	if err := domain.Validate(tree); err != nil {
		return domain.Tree{}, fmt.Errorf("decode tree: %w", err)
	}
	return tree, nil
}
