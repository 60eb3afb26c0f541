package friendreq

import (
	"log"
	"sync"
	"sync/atomic"

	"ubae_shell/internal/model"
	"ubae_shell/internal/query"
)

// Reconciler keeps the outgoing-request index in step with the server's
// outgoing-requests query. It never writes the index from local mutations:
// a successful send only invalidates the query, and the refetch replaces the
// index wholesale.
type Reconciler struct {
	store       *query.Store
	invalidator query.Invalidator
	current     atomic.Pointer[Index]
	unsubscribe func()

	// applyMu orders applies; applied is the generation of the last one.
	applyMu sync.Mutex
	applied uint64
}

// NewReconciler subscribes to the outgoing-requests key of store. Mutations
// request refetches through invalidator, which may fan out beyond store.
func NewReconciler(store *query.Store, invalidator query.Invalidator) *Reconciler {
	r := &Reconciler{
		store:       store,
		invalidator: invalidator,
	}
	empty := Rebuild(nil)
	r.current.Store(&empty)

	r.unsubscribe = store.Subscribe(query.KeyOutgoingFriendReqs, r.onResolved)
	// The query may have settled before we subscribed.
	r.apply(store.State(query.KeyOutgoingFriendReqs))
	return r
}

func (r *Reconciler) onResolved(_ query.Key, state query.State) {
	r.apply(state)
}

func (r *Reconciler) apply(state query.State) {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	// The constructor's catch-up read can race the first delivery; the older
	// snapshot loses.
	if state.Generation <= r.applied {
		return
	}
	r.applied = state.Generation

	switch state.Status {
	case query.StatusSuccess:
		reqs, _ := query.Value[[]model.FriendRequest](state)
		next := Rebuild(reqs)
		r.current.Store(&next)
		log.Printf("[Reconciler] Rebuilt outgoing index: size=%d", next.Len())
	case query.StatusError:
		log.Printf("[Reconciler] Outgoing fetch failed, keeping index: size=%d err=%v",
			r.current.Load().Len(), state.Err)
	}
}

// Index returns the current snapshot.
func (r *Reconciler) Index() Index {
	return *r.current.Load()
}

func (r *Reconciler) HasPendingRequestTo(id string) bool {
	return HasPendingRequestTo(r.Index(), id)
}

// OnSendSucceeded requests a refetch of the outgoing requests. Until that
// refetch resolves the new recipient is not in the index.
func (r *Reconciler) OnSendSucceeded() {
	r.invalidator.Invalidate(query.KeyOutgoingFriendReqs)
}

// Close stops following the store.
func (r *Reconciler) Close() {
	r.unsubscribe()
}
