package engine

import (
	"thingsync/internal/canon"
	"thingsync/internal/service"
	"thingsync/internal/state"
)

// Resolver determines which local task a cloud task corresponds to.
type Resolver struct {
	Store *state.Store
}

// Resolve returns the Things UUID for a cloud task. The mapping is
// checked by cloud ID first (authoritative); when that misses, entries
// are scanned for one whose recorded title canonicalizes to the same key
// as the task's title. A title match re-keys the entry to the task's
// current cloud ID: the stored ID is stale (the cloud task was deleted
// and recreated, or never confirmed), and left as-is it would be absent
// from the liveness set and the entry pruned at pass end.
//
// A miss is not an error: the task may belong to a list not under sync.
func (r Resolver) Resolve(task service.Task) (string, bool) {
	if localID, ok := r.Store.FindByGoogleID(task.ID); ok {
		return localID, true
	}
	localID, ok := r.Store.FindByCanonTitle(canon.Title(task.Title))
	if !ok {
		return "", false
	}
	if e, found := r.Store.Mapping(localID); found && task.ID != "" && e.GoogleID != task.ID {
		e.GoogleID = task.ID
		r.Store.SetMapping(localID, e)
	}
	return localID, true
}
