// Package extract pulls task records out of Things3 views and moves them
// through CSV files toward the cloud store. The four views (Today,
// Upcoming, Anytime, Someday) traverse overlapping windows of the same
// underlying task list, so later views are filtered against the titles
// already extracted by earlier ones.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"thingsync/internal/canon"
	"thingsync/internal/things"
)

const (
	// MaxWorkers is the number of concurrent AppleScript queries.
	MaxWorkers = 12

	// BatchSize is the number of tasks fetched per batch.
	BatchSize = 10
)

// Record is one task handed over by an extraction adapter. LocalID may
// be empty for tasks never before synced.
type Record struct {
	Title     string
	Notes     string
	Project   string
	StartDate string // YYYY-MM-DD or empty
	DueDate   string // YYYY-MM-DD or empty
	DueTime   string // HH:MM or empty
	Tags      string
	LocalID   string
}

// Source reads tasks from the local store. *SourceQuery is the real
// implementation; tests substitute a fake.
type Source interface {
	// Count returns the number of tasks in a view list.
	Count(ctx context.Context, list string) (int, error)

	// Task reads the full record of the task at a 1-based index.
	Task(ctx context.Context, index int, list string) (Record, error)
}

// View describes one extraction pass over a Things list.
type View struct {
	// Name is the short view name used in file paths ("today").
	Name string

	// List is the Things list title, which is also the cloud list the
	// view's output is pushed to ("Today").
	List string

	// Keep decides whether a record survives the view's filter. prior
	// holds canonical titles already extracted by earlier views.
	Keep func(r Record, prior map[string]struct{}) bool
}

// Views are the four tracked extraction views in processing order.
// Today keeps only non-English tasks (English ones take the translation
// route instead); the later views drop anything an earlier view already
// produced.
var Views = []View{
	{Name: "today", List: "Today", Keep: func(r Record, _ map[string]struct{}) bool {
		return !isPureEnglish(r.Title)
	}},
	{Name: "upcoming", List: "Upcoming", Keep: keepUnseen},
	{Name: "anytime", List: "Anytime", Keep: keepUnseen},
	{Name: "someday", List: "Someday", Keep: keepUnseen},
}

// ViewByName returns the view with the given short name.
func ViewByName(name string) (View, bool) {
	for _, v := range Views {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

func keepUnseen(r Record, prior map[string]struct{}) bool {
	_, seen := prior[canon.Title(r.Title)]
	return !seen
}

var engLetter = regexp.MustCompile(`[A-Za-z]`)

// isPureEnglish reports whether the text is entirely ASCII and contains
// at least one English letter.
func isPureEnglish(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return engLetter.MatchString(s)
}

// Run extracts every task in the view's list, filtering with the view's
// Keep function against the prior-title set. Tasks are read in batches
// of BatchSize with up to MaxWorkers concurrent queries; each query
// addresses a disjoint task index, so the concurrency is read-safe.
func Run(ctx context.Context, src Source, view View, prior map[string]struct{}) ([]Record, error) {
	count, err := src.Count(ctx, view.List)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", view.List, err)
	}
	if count == 0 {
		return nil, nil
	}

	var records []Record
	for start := 1; start <= count; start += BatchSize {
		end := start + BatchSize
		if end > count+1 {
			end = count + 1
		}
		batch, err := fetchBatch(ctx, src, view.List, start, end)
		if err != nil {
			return nil, err
		}
		for _, r := range batch {
			if view.Keep(r, prior) {
				records = append(records, r)
			}
		}
	}
	return records, nil
}

// fetchBatch reads indices [start, end) concurrently, preserving index
// order in the result. A failed read drops that single task.
func fetchBatch(ctx context.Context, src Source, list string, start, end int) ([]Record, error) {
	n := end - start
	results := make([]*Record, n)

	sem := make(chan struct{}, MaxWorkers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := src.Task(ctx, start+i, list)
			if err != nil {
				return
			}
			results[i] = &r
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Record
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// SourceQuery adapts things.Query to the Source interface.
type SourceQuery struct {
	Q *things.Query
}

// Count implements Source.
func (s *SourceQuery) Count(ctx context.Context, list string) (int, error) {
	return s.Q.TaskCount(ctx, list)
}

// Task implements Source. The activation date doubles as the start date;
// the due date carries an optional time component.
func (s *SourceQuery) Task(ctx context.Context, index int, list string) (Record, error) {
	title, err := s.Q.TaskProperty(ctx, index, "name", list)
	if err != nil {
		return Record{}, err
	}
	notes, err := s.Q.TaskProperty(ctx, index, "notes", list)
	if err != nil {
		return Record{}, err
	}
	id, err := s.Q.TaskUUID(ctx, index, list)
	if err != nil {
		return Record{}, err
	}
	start, err := s.Q.FormattedDate(ctx, index, "activation date", list)
	if err != nil {
		return Record{}, err
	}
	due, err := s.Q.FormattedDate(ctx, index, "due date", list)
	if err != nil {
		return Record{}, err
	}
	dueTime := ""
	if due != "" {
		dueTime, err = s.Q.FormattedTime(ctx, index, "due date", list)
		if err != nil {
			return Record{}, err
		}
	}
	project, err := s.Q.TaskProject(ctx, index, list)
	if err != nil {
		return Record{}, err
	}
	tags, err := s.Q.TaskTags(ctx, index, list)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Title:     title,
		Notes:     notes,
		Project:   project,
		StartDate: start,
		DueDate:   due,
		DueTime:   dueTime,
		Tags:      tags,
		LocalID:   id,
	}, nil
}
