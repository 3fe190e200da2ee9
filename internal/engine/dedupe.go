package engine

import (
	"thingsync/internal/canon"
	"thingsync/internal/extract"
	"thingsync/internal/state"
)

// FilterNew drops candidate records that already exist in the cloud
// store under any view. A candidate is rejected when its stable local
// identifier is already mapped (cheap, authoritative) or when its
// canonical title is in the set accumulated from views ingested earlier
// in the same run (heuristic, needed because an identifier only exists
// after the task's first extraction).
//
// Accepted titles are added to seen, so a title appearing in two views
// in the same run survives only in the first-processed view.
func FilterNew(candidates []extract.Record, seen map[string]struct{}, st *state.Store) []extract.Record {
	var accepted []extract.Record
	for _, c := range candidates {
		if c.LocalID != "" && st.HasLocalID(c.LocalID) {
			continue
		}
		key := canon.Title(c.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, c)
	}
	return accepted
}
