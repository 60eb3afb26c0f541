package friendreq

import (
	"sort"

	"ubae_shell/internal/model"
)

// Index is the set of users the current user has a pending outgoing request
// to. It is immutable; a new server snapshot produces a new Index.
type Index struct {
	ids map[string]struct{}
}

// Rebuild produces the full replacement index for a server snapshot.
// A nil or empty snapshot yields an empty index.
func Rebuild(reqs []model.FriendRequest) Index {
	ids := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if id := req.RecipientID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	return Index{ids: ids}
}

// Has reports whether a request to id is pending.
func (ix Index) Has(id string) bool {
	_, ok := ix.ids[id]
	return ok
}

func (ix Index) Len() int {
	return len(ix.ids)
}

// IDs returns the recipient ids in sorted order.
func (ix Index) IDs() []string {
	out := make([]string, 0, len(ix.ids))
	for id := range ix.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasPendingRequestTo gates the "send request" affordance for id.
func HasPendingRequestTo(ix Index, id string) bool {
	return ix.Has(id)
}
