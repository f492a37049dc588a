package domain

import (
	"fmt"
	"slices"
	"time"
)

// WorkerStatus is the reported state of an execution lane.
type WorkerStatus string

// Worker statuses.
const (
	WorkerAssigned   WorkerStatus = "assigned"
	WorkerInProgress WorkerStatus = "in-progress"
	WorkerDone       WorkerStatus = "done"
)

// Worker is one parallel execution lane working on one task on its own branch.
// Fields are ordered to minimize memory padding.
type Worker struct {
	Branch string       `json:"branch" yaml:"branch"`
	Task   string       `json:"task" yaml:"task"`
	Path   string       `json:"path" yaml:"path"` // Dot-joined task path
	Status WorkerStatus `json:"status" yaml:"status"`
	ID     int          `json:"id" yaml:"id"`
}

// TaskPath parses the worker's serialized path.
func (w Worker) TaskPath() Path {
	return ParsePath(w.Path)
}

// IsActive returns true if the worker has not finished.
func (w Worker) IsActive() bool {
	return w.Status != WorkerDone
}

// WorkerPool is the ordered set of lanes for a project.
// NextID is persisted so that removing a worker never frees its id.
type WorkerPool struct {
	Workers []Worker `json:"workers" yaml:"workers"`
	NextID  int      `json:"next_id,omitempty" yaml:"next_id,omitempty"`
}

// WorkerCompleted is emitted when a lane reports its task finished.
// Fields are ordered to minimize memory padding.
type WorkerCompleted struct {
	At       time.Time
	Branch   string
	TaskName string
	TaskPath Path
	WorkerID int
}

// NewWorker creates a lane for a task.
func NewWorker(id int, task TaskWithPath, branchPrefix string) Worker {
	return Worker{
		ID:     id,
		Branch: BranchName(branchPrefix, task.Task.Name, id),
		Task:   task.Task.Name,
		Path:   task.Path.String(),
		Status: WorkerAssigned,
	}
}

// NextWorkerID returns the next unused id: one past the highest id ever
// handed out, or 1 for an empty pool.
func (p WorkerPool) NextWorkerID() int {
	next := max(p.NextID, 1)
	for _, w := range p.Workers {
		next = max(next, w.ID+1)
	}
	return next
}

// Get returns the worker with the given id.
func (p WorkerPool) Get(id int) (Worker, bool) {
	for _, w := range p.Workers {
		if w.ID == id {
			return w, true
		}
	}
	return Worker{}, false
}

// Active returns the workers that are not done.
func (p WorkerPool) Active() []Worker {
	var out []Worker
	for _, w := range p.Workers {
		if w.IsActive() {
			out = append(out, w)
		}
	}
	return out
}

// HasActiveTask reports whether an active worker holds the task at path.
func (p WorkerPool) HasActiveTask(path Path) bool {
	key := path.String()
	for _, w := range p.Workers {
		if w.IsActive() && w.Path == key {
			return true
		}
	}
	return false
}

// Add returns a new pool with w appended. The id must be positive and never
// handed out before in this pool, even to a lane that has since been removed.
func (p WorkerPool) Add(w Worker) (WorkerPool, error) {
	if w.ID <= 0 {
		return p, fmt.Errorf("%w: %d", ErrInvalidWorkerID, w.ID)
	}
	if _, ok := p.Get(w.ID); ok {
		return p, fmt.Errorf("%w: %d", ErrWorkerExists, w.ID)
	}
	next := p.NextWorkerID()
	if w.ID < next {
		return p, fmt.Errorf("%w: %d (next free id is %d)", ErrWorkerIDUsed, w.ID, next)
	}
	out := WorkerPool{
		Workers: append(slices.Clone(p.Workers), w),
		NextID:  max(next, w.ID+1),
	}
	return out, nil
}

// Complete marks the worker done and emits a completion event.
// The task tree is not touched.
func (p WorkerPool) Complete(id int, now time.Time) (WorkerPool, WorkerCompleted, error) {
	i := slices.IndexFunc(p.Workers, func(w Worker) bool { return w.ID == id })
	if i < 0 {
		return p, WorkerCompleted{}, fmt.Errorf("%w: %d", ErrWorkerNotFound, id)
	}
	w := p.Workers[i]
	if w.Status == WorkerDone {
		return p, WorkerCompleted{}, fmt.Errorf("worker %d: %w", id, ErrAlreadyDone)
	}
	workers := slices.Clone(p.Workers)
	workers[i].Status = WorkerDone
	out := WorkerPool{Workers: workers, NextID: p.NextWorkerID()}
	return out, completedEvent(w, now), nil
}

// CompleteOne marks the worker done and removes it from the pool, freeing
// the lane. The id stays consumed.
func (p WorkerPool) CompleteOne(id int, now time.Time) (WorkerPool, WorkerCompleted, error) {
	i := slices.IndexFunc(p.Workers, func(w Worker) bool { return w.ID == id })
	if i < 0 {
		return p, WorkerCompleted{}, fmt.Errorf("%w: %d", ErrWorkerNotFound, id)
	}
	w := p.Workers[i]
	out := WorkerPool{
		Workers: slices.Delete(slices.Clone(p.Workers), i, i+1),
		NextID:  p.NextWorkerID(),
	}
	return out, completedEvent(w, now), nil
}

// ClearDone returns a pool without done workers.
func (p WorkerPool) ClearDone() WorkerPool {
	return WorkerPool{Workers: p.Active(), NextID: p.NextWorkerID()}
}

func completedEvent(w Worker, now time.Time) WorkerCompleted {
	return WorkerCompleted{
		At:       now,
		Branch:   w.Branch,
		TaskName: w.Task,
		TaskPath: w.TaskPath(),
		WorkerID: w.ID,
	}
}

// AssignBatch builds a fresh pool with up to n lanes for the next pending
// leaves. Ids start at 1.
func AssignBatch(t Tree, n int, opts ScheduleOptions, branchPrefix string) (WorkerPool, error) {
	tasks := NPending(t, n, opts)
	if len(tasks) == 0 {
		return WorkerPool{}, ErrNoPendingTasks
	}
	var pool WorkerPool
	for i, task := range tasks {
		var err error
		if pool, err = pool.Add(uniqueBranch(pool, NewWorker(i+1, task, branchPrefix))); err != nil {
			return WorkerPool{}, err
		}
	}
	return pool, nil
}

// AssignOne appends one lane for the first pending leaf that no active worker
// holds. A zero id picks the next unused id.
func AssignOne(pool WorkerPool, t Tree, opts ScheduleOptions, branchPrefix string, id int) (WorkerPool, Worker, error) {
	task, ok := Find(Visible(t, opts), func(n TaskNode, p Path) bool {
		return isPendingLeaf(n, p) && !pool.HasActiveTask(p)
	})
	if !ok {
		return pool, Worker{}, ErrNoPendingTasks
	}
	if id == 0 {
		id = pool.NextWorkerID()
	}
	w := uniqueBranch(pool, NewWorker(id, task, branchPrefix))
	out, err := pool.Add(w)
	if err != nil {
		return pool, Worker{}, err
	}
	return out, w, nil
}

// uniqueBranch suffixes the worker id when another active lane already uses
// the branch, which happens for equally named tasks under different parents.
func uniqueBranch(pool WorkerPool, w Worker) Worker {
	for _, other := range pool.Active() {
		if other.Branch == w.Branch {
			w.Branch = fmt.Sprintf("%s-%d", w.Branch, w.ID)
			return w
		}
	}
	return w
}
