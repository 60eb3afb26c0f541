package session

import (
	"context"
	"encoding/json"
	"fmt"

	"ubae_shell/internal/model"
	"ubae_shell/internal/query"
)

// AccessLevel classifies a session for route visibility.
type AccessLevel int

const (
	Unauthenticated AccessLevel = iota
	NeedsOnboarding
	Ready
)

func (l AccessLevel) String() string {
	switch l {
	case Unauthenticated:
		return "unauthenticated"
	case NeedsOnboarding:
		return "needs_onboarding"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("access_level(%d)", int(l))
	}
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Session is the navigation view of the current user.
type Session struct {
	AuthUser *model.User
	// Loading is true only until the first profile fetch resolves or fails.
	Loading bool
}

func (s Session) IsAuthenticated() bool {
	return s.AuthUser != nil
}

// IsOnboarded is false whenever the session is not authenticated.
func (s Session) IsOnboarded() bool {
	return s.AuthUser != nil && s.AuthUser.IsOnboarded
}

func (s Session) AccessLevel() AccessLevel {
	switch {
	case !s.IsAuthenticated():
		return Unauthenticated
	case !s.IsOnboarded():
		return NeedsOnboarding
	default:
		return Ready
	}
}

func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Authenticated bool        `json:"authenticated"`
		Onboarded     bool        `json:"onboarded"`
		AccessLevel   AccessLevel `json:"access_level"`
		Loading       bool        `json:"loading"`
		User          *model.User `json:"user,omitempty"`
	}{
		Authenticated: s.IsAuthenticated(),
		Onboarded:     s.IsOnboarded(),
		AccessLevel:   s.AccessLevel(),
		Loading:       s.Loading,
		User:          s.AuthUser,
	})
}

// Resolve projects the state of the current-user query onto a Session.
// A failed fetch is treated exactly like "no profile".
func Resolve(state query.State) Session {
	if state.IsLoading() {
		return Session{Loading: true}
	}
	if state.Status == query.StatusError {
		return Session{}
	}
	user, _ := query.Value[*model.User](state)
	return Session{AuthUser: user}
}

// Resolver reads the shared current-user entry of a store.
type Resolver struct {
	store *query.Store
}

func NewResolver(store *query.Store) *Resolver {
	return &Resolver{store: store}
}

// Current returns the session as of now.
func (r *Resolver) Current() Session {
	return Resolve(r.store.State(query.KeyAuthUser))
}

// Subscribe calls fn with the recomputed session every time the current-user
// fetch settles.
func (r *Resolver) Subscribe(fn func(Session)) (unsubscribe func()) {
	return r.store.Subscribe(query.KeyAuthUser, func(_ query.Key, state query.State) {
		fn(Resolve(state))
	})
}

// Await blocks until no current-user fetch is in flight and returns the
// resulting session.
func (r *Resolver) Await(ctx context.Context) (Session, error) {
	state, err := r.store.Await(ctx, query.KeyAuthUser)
	if err != nil {
		return Session{}, err
	}
	return Resolve(state), nil
}
