// Package engine reconciles Things3 with Google Tasks. Neither store
// offers change feeds or transactions, so each pass re-derives the drift
// from a full fetch and applies changes idempotently: local effects
// first, cloud deletions second, state persisted atomically at the end.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"thingsync/internal/extract"
	"thingsync/internal/service"
	"thingsync/internal/state"
	"thingsync/internal/things"
)

// DefaultLists are the cloud lists tracked by a pass, in processing order.
var DefaultLists = []string{"Today", "Upcoming", "Anytime", "Someday"}

const defaultRetryDelay = 500 * time.Millisecond

// Summary reports what one reconciliation pass did.
type Summary struct {
	// Updated counts local tasks that accepted a field update.
	Updated int

	// DeletedFromCloud counts completed cloud tasks removed after their
	// completion was forwarded locally.
	DeletedFromCloud int

	// RemovedFromLocal counts local tasks cancelled because their cloud
	// counterpart disappeared.
	RemovedFromLocal int
}

// Engine orchestrates sync passes. A pass is strictly sequential: the
// mapping and observed-state stores are mutated in place and consumed by
// later steps of the same pass.
type Engine struct {
	cloud      service.Service
	local      things.Applier
	store      *state.Store
	lists      []string
	logger     *slog.Logger
	now        func() time.Time
	retryDelay time.Duration
}

// New creates an engine. lists defaults to DefaultLists when empty.
func New(cloud service.Service, local things.Applier, st *state.Store, lists []string, logger *slog.Logger) *Engine {
	if len(lists) == 0 {
		lists = DefaultLists
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cloud:      cloud,
		local:      local,
		store:      st,
		lists:      lists,
		logger:     logger,
		now:        time.Now,
		retryDelay: defaultRetryDelay,
	}
}

// SetNow overrides the clock (for testing).
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// SetRetryDelay overrides the transient-retry delay (for testing).
func (e *Engine) SetRetryDelay(d time.Duration) { e.retryDelay = d }

// fetchedList pairs a cloud list with its full task fetch.
type fetchedList struct {
	list  service.TaskList
	tasks []service.Task
}

// RunPass performs one full reconciliation pass. Per-task failures are
// logged and skipped; only auth failures and an unpersistable state
// abort the pass.
func (e *Engine) RunPass(ctx context.Context) (Summary, error) {
	var sum Summary
	now := e.now()
	log := e.logger.With("pass", shortID())

	lists, err := e.cloud.ListLists(ctx)
	if err != nil {
		return sum, fmt.Errorf("list tasklists: %w", err)
	}
	byTitle := make(map[string]service.TaskList, len(lists))
	for _, l := range lists {
		byTitle[l.Title] = l
	}

	// Step 1: full fetch of every tracked list. The union of task IDs
	// seen here is the liveness set.
	live := make(map[string]struct{})
	var fetched []fetchedList
	fetchComplete := true
	for _, name := range e.lists {
		tl, ok := byTitle[name]
		if !ok {
			log.Warn("tracked list missing on cloud side", "list", name)
			continue
		}
		var tasks []service.Task
		err := e.retryTransient(ctx, func() error {
			var err error
			tasks, err = e.cloud.ListAllTasks(ctx, tl.ID, true)
			return err
		})
		if err != nil {
			if errors.Is(err, service.ErrAuth) {
				return sum, fmt.Errorf("fetch %s: %w", name, err)
			}
			// A list missing from the fetch must not count its tasks as
			// deleted, so orphan pruning is disabled for this pass.
			log.Error("fetch failed, skipping list", "list", name, "err", err)
			fetchComplete = false
			continue
		}
		for _, t := range tasks {
			if t.ID != "" {
				live[t.ID] = struct{}{}
			}
		}
		fetched = append(fetched, fetchedList{list: tl, tasks: tasks})
	}

	// Step 2: detect and apply per-task changes, local store first,
	// cloud deletion second. That ordering means a crash between the two
	// re-applies an idempotent local update next pass instead of losing
	// a completion signal.
	resolver := Resolver{Store: e.store}
	for _, f := range fetched {
		for _, t := range f.tasks {
			if t.ID == "" {
				log.Warn("task has no id", "list", f.list.Title, "title", t.Title)
				continue
			}

			prior, hadPrior := e.store.TaskState(t.ID)
			cs, warn := Detect(t, prior, hadPrior)
			if warn != nil {
				log.Warn("skipping due date field", "task", t.ID, "title", t.Title, "err", warn)
			}
			e.store.SetTaskState(t.ID, Observed(t))

			localID, ok := resolver.Resolve(t)
			if !ok {
				log.Debug("no local counterpart", "task", t.ID, "title", t.Title)
				continue
			}

			if cs.Empty() {
				e.store.ConfirmSynced(localID, now)
				continue
			}

			markForDeletion := cs.MarkForDeletion
			upd := things.Update{Completed: cs.Completed, Deadline: cs.Deadline}
			if err := e.local.Update(ctx, localID, upd); err != nil {
				log.Error("local update not accepted", "op", "update",
					"task", t.ID, "local", localID, "title", t.Title, "err", err)
				continue
			}
			sum.Updated++
			e.store.ConfirmSynced(localID, now)
			log.Info("local task updated", "local", localID, "title", t.Title,
				"completed", cs.Completed != nil, "deadline", cs.Deadline != nil)

			if !markForDeletion {
				continue
			}
			err := e.retryTransient(ctx, func() error {
				return e.cloud.DeleteTask(ctx, f.list.ID, t.ID)
			})
			switch {
			case err == nil || errors.Is(err, service.ErrNotFound):
				sum.DeletedFromCloud++
				e.store.DeleteMapping(localID)
				e.store.DeleteTaskState(t.ID)
			case errors.Is(err, service.ErrAuth):
				return sum, fmt.Errorf("delete task %s: %w", t.ID, err)
			default:
				log.Error("cloud delete failed", "op", "delete",
					"task", t.ID, "title", t.Title, "err", err)
			}
		}
	}

	// Step 3: orphan pruning. A non-provisional mapping whose cloud task
	// was not seen anywhere this pass means the task was deleted on the
	// cloud side; cancel the local counterpart. Provisional entries are
	// left alone, they may be mid-creation.
	if fetchComplete {
		type orphan struct{ localID, googleID, title string }
		var orphans []orphan
		e.store.EachMapping(func(localID string, m state.MappingEntry) {
			if m.Provisional() || m.GoogleID == "" {
				return
			}
			if _, ok := live[m.GoogleID]; !ok {
				orphans = append(orphans, orphan{localID, m.GoogleID, m.Title})
			}
		})
		for _, o := range orphans {
			if err := e.local.Cancel(ctx, o.localID); err != nil {
				log.Error("local cancel not accepted", "op", "cancel",
					"local", o.localID, "title", o.title, "err", err)
				continue
			}
			sum.RemovedFromLocal++
			e.store.DeleteTaskState(o.googleID)
			e.store.DeleteMapping(o.localID)
			log.Info("local task cancelled, cloud counterpart gone",
				"local", o.localID, "title", o.title)
		}
		e.store.PruneTaskStates(live)
	}

	// Step 4: persist atomically.
	e.store.SetLastSync(now)
	if err := e.store.Save(); err != nil {
		return sum, fmt.Errorf("persist state: %w", err)
	}

	log.Info("pass complete", "updated", sum.Updated,
		"deleted_from_cloud", sum.DeletedFromCloud,
		"removed_from_local", sum.RemovedFromLocal)
	return sum, nil
}

// Ingest pushes candidate records into the named cloud list after
// deduplication, recording a provisional mapping for each created task
// that carries a stable local identifier. seen accumulates canonical
// titles across the views of one run.
func (e *Engine) Ingest(ctx context.Context, listName string, candidates []extract.Record, seen map[string]struct{}) (int, error) {
	accepted := FilterNew(candidates, seen, e.store)
	if len(accepted) == 0 {
		return 0, nil
	}

	tl, err := e.cloud.ResolveList(ctx, listName)
	if err != nil {
		return 0, fmt.Errorf("resolve list %s: %w", listName, err)
	}

	log := e.logger.With("list", listName)
	created := 0
	for _, r := range accepted {
		task := service.Task{
			Title: r.Title,
			Notes: r.Notes,
			Due:   dueRFC3339(r.DueDate),
		}
		var inserted service.Task
		err := e.retryTransient(ctx, func() error {
			var err error
			inserted, err = e.cloud.InsertTask(ctx, tl.ID, task)
			return err
		})
		if err != nil {
			if errors.Is(err, service.ErrAuth) {
				return created, err
			}
			log.Error("insert failed", "op", "insert", "title", r.Title, "err", err)
			continue
		}
		created++
		if r.LocalID != "" {
			// Provisional until a pass confirms it; no last_synced yet.
			e.store.SetMapping(r.LocalID, state.MappingEntry{
				GoogleID: inserted.ID,
				Title:    r.Title,
			})
		}
		log.Info("task pushed", "title", r.Title, "task", inserted.ID)
	}

	if err := e.store.Save(); err != nil {
		return created, fmt.Errorf("persist state: %w", err)
	}
	return created, nil
}

// dueRFC3339 encodes a bare calendar date as the midnight-UTC timestamp
// the cloud store uses for date-only due dates.
func dueRFC3339(date string) string {
	if date == "" {
		return ""
	}
	return date + "T00:00:00.000Z"
}

// retryTransient runs op, retrying once after a short delay if the
// failure is transient.
func (e *Engine) retryTransient(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || !errors.Is(err, service.ErrTransient) {
		return err
	}
	select {
	case <-time.After(e.retryDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return op()
}

func shortID() string {
	return uuid.NewString()[:8]
}
