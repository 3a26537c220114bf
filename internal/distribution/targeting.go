package distribution

import (
	"sort"

	"winsbygroup.com/licserver/internal/update"
	"winsbygroup.com/licserver/internal/vercmp"
)

// Resolution is the set of updates a client must apply, oldest first.
type Resolution struct {
	Required     []update.Update
	AnyMandatory bool
}

// Resolve computes the required update set from catalog candidates.
//
// Global updates (no targeting) are reduced to the newest one per component
// (API, Frontend); targeted updates are all kept, since they can be
// sequential fixes for one client. A nil clientID selects the legacy path
// where every candidate is visible and scoped updates count as targeted.
func Resolve(candidates []update.Update, clientID *int64) Resolution {
	var targeted, global []update.Update
	for _, u := range candidates {
		switch {
		case !u.Targeted():
			global = append(global, u)
		case clientID == nil || u.TargetsClient(*clientID):
			targeted = append(targeted, u)
		}
	}

	var required []update.Update
	seen := map[int64]bool{}
	add := func(u update.Update) {
		if seen[u.UpdateID] {
			return
		}
		seen[u.UpdateID] = true
		required = append(required, u)
	}

	for _, u := range targeted {
		if u.PackageType.CoversAPI() || u.PackageType.CoversFrontend() {
			add(u)
		}
	}
	if u, ok := latest(global, update.PackageType.CoversAPI); ok {
		add(u)
	}
	if u, ok := latest(global, update.PackageType.CoversFrontend); ok {
		add(u)
	}

	sort.SliceStable(required, func(i, j int) bool {
		return before(&required[i], &required[j])
	})

	return Resolution{
		Required:     required,
		AnyMandatory: len(required) > 0,
	}
}

// latest returns the newest update whose package type covers a component.
func latest(updates []update.Update, covers func(update.PackageType) bool) (update.Update, bool) {
	var best update.Update
	found := false
	for _, u := range updates {
		if !covers(u.PackageType) {
			continue
		}
		if !found || before(&best, &u) {
			best = u
			found = true
		}
	}
	return best, found
}

// before orders by version, then by id so equal versions sort deterministically.
func before(a, b *update.Update) bool {
	if c := vercmp.Compare(a.Version, b.Version); c != 0 {
		return c < 0
	}
	return a.UpdateID < b.UpdateID
}
