// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"thingsync/internal/service"
)

// DefaultListID is the ID used for the default list.
const DefaultListID = "@default"

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  map[string][]service.Task // listID -> tasks
	nextID int

	// Error injection for testing
	ListListsErr    error
	ResolveListErr  error
	ListAllTasksErr map[string]error // listID -> error
	InsertTaskErr   error
	DeleteTaskErr   error
	DeleteListErr   error
	RenameListErr   error

	// TransientFailures makes ListAllTasks fail with ErrTransient this
	// many times per list before succeeding.
	TransientFailures map[string]int

	// Deleted records task IDs passed to DeleteTask, in order.
	Deleted []string
}

// NewFakeService creates a new FakeService with a default list.
func NewFakeService() *FakeService {
	fs := &FakeService{
		tasks:             make(map[string][]service.Task),
		ListAllTasksErr:   make(map[string]error),
		TransientFailures: make(map[string]int),
	}
	fs.lists = []service.TaskList{
		{ID: DefaultListID, Title: "Today", IsDefault: true},
	}
	fs.tasks[DefaultListID] = nil
	return fs
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title, IsDefault: false})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask adds a task to a list.
func (f *FakeService) AddTask(listID string, t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Status == "" {
		t.Status = service.StatusNeedsAction
	}
	f.tasks[listID] = append(f.tasks[listID], t)
}

// Tasks returns a copy of the tasks in a list.
func (f *FakeService) Tasks(listID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks[listID]))
	copy(out, f.tasks[listID])
	return out
}

// Lists returns a copy of the current lists.
func (f *FakeService) Lists() []service.TaskList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.TaskList, len(f.lists))
	copy(out, f.lists)
	return out
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	return f.Lists(), nil
}

// ResolveList implements service.Service.
func (f *FakeService) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	if f.ResolveListErr != nil {
		return service.TaskList{}, f.ResolveListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	nameLower := strings.ToLower(strings.TrimSpace(name))
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			return l, nil
		}
	}
	return service.TaskList{}, fmt.Errorf("list %q: %w", name, service.ErrNotFound)
}

// ListAllTasks implements service.Service.
func (f *FakeService) ListAllTasks(ctx context.Context, listID string, includeCompleted bool) ([]service.Task, error) {
	f.mu.Lock()
	if n := f.TransientFailures[listID]; n > 0 {
		f.TransientFailures[listID] = n - 1
		f.mu.Unlock()
		return nil, fmt.Errorf("list tasks: %w", service.ErrTransient)
	}
	f.mu.Unlock()

	if err, ok := f.ListAllTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, fmt.Errorf("list %q: %w", listID, service.ErrNotFound)
	}

	var out []service.Task
	for _, t := range tasks {
		if !includeCompleted && t.Status == service.StatusCompleted {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// InsertTask implements service.Service.
func (f *FakeService) InsertTask(ctx context.Context, listID string, t service.Task) (service.Task, error) {
	if f.InsertTaskErr != nil {
		return service.Task{}, f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return service.Task{}, fmt.Errorf("list %q: %w", listID, service.ErrNotFound)
	}

	f.nextID++
	t.ID = fmt.Sprintf("g-%d", f.nextID)
	if t.Status == "" {
		t.Status = service.StatusNeedsAction
	}
	f.tasks[listID] = append(f.tasks[listID], t)
	return t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return fmt.Errorf("list %q: %w", listID, service.ErrNotFound)
	}

	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[listID] = append(tasks[:i], tasks[i+1:]...)
			f.Deleted = append(f.Deleted, taskID)
			return nil
		}
	}
	return fmt.Errorf("task %q: %w", taskID, service.ErrNotFound)
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.tasks, listID)
			return nil
		}
	}
	return fmt.Errorf("list %q: %w", listID, service.ErrNotFound)
}

// RenameList implements service.Service.
func (f *FakeService) RenameList(ctx context.Context, listID, title string) error {
	if f.RenameListErr != nil {
		return f.RenameListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists[i].Title = title
			return nil
		}
	}
	return fmt.Errorf("list %q: %w", listID, service.ErrNotFound)
}
