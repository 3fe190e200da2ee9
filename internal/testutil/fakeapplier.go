package testutil

import (
	"context"
	"sync"

	"thingsync/internal/things"
)

// AppliedUpdate records an Update call and the task it targeted.
type AppliedUpdate struct {
	ID     string
	Update things.Update
}

// FakeApplier is a recording implementation of things.Applier for testing.
type FakeApplier struct {
	mu sync.Mutex

	Adds     []things.AddParams
	Updates  []AppliedUpdate
	Canceled []string

	// Error injection for testing
	AddErr    error
	UpdateErr error
	CancelErr error
}

// NewFakeApplier creates a new FakeApplier.
func NewFakeApplier() *FakeApplier {
	return &FakeApplier{}
}

// Add implements things.Applier.
func (f *FakeApplier) Add(ctx context.Context, p things.AddParams) error {
	if f.AddErr != nil {
		return f.AddErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Adds = append(f.Adds, p)
	return nil
}

// Update implements things.Applier.
func (f *FakeApplier) Update(ctx context.Context, id string, u things.Update) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updates = append(f.Updates, AppliedUpdate{ID: id, Update: u})
	return nil
}

// Cancel implements things.Applier.
func (f *FakeApplier) Cancel(ctx context.Context, id string) error {
	if f.CancelErr != nil {
		return f.CancelErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Canceled = append(f.Canceled, id)
	return nil
}
