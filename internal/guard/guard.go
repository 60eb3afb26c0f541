package guard

import (
	"encoding/json"
	"errors"
	"fmt"

	"ubae_shell/internal/session"
)

// MaxRedirectHops bounds Settle. Every reachable (path, level) pair settles
// in at most two hops; anything longer is a broken route table.
const MaxRedirectHops = 4

// ErrRedirectLoop is returned by Settle when a chain does not terminate.
var ErrRedirectLoop = errors.New("redirect loop")

type Kind int

const (
	KindRender Kind = iota
	KindRedirect
	KindShowLoader
)

func (k Kind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindRedirect:
		return "redirect"
	case KindShowLoader:
		return "loader"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is the outcome of one guard evaluation. Path is the page to render
// or the redirect target; it is empty for ShowLoader.
type Action struct {
	Kind Kind
	Path string
}

func Render(path string) Action   { return Action{Kind: KindRender, Path: path} }
func Redirect(path string) Action { return Action{Kind: KindRedirect, Path: path} }
func ShowLoader() Action          { return Action{Kind: KindShowLoader} }

func (a Action) String() string {
	if a.Kind == KindShowLoader {
		return a.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", a.Kind, a.Path)
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Path string `json:"path,omitempty"`
	}{Kind: a.Kind.String(), Path: a.Path})
}

// Decide maps one navigation to an action. It is pure and never fails:
// loading wins over everything, unknown paths fall through to the catch-all.
func Decide(path string, level session.AccessLevel, loading bool) Action {
	if loading {
		return ShowLoader()
	}

	path = normalize(path)
	route, ok := declared.lookup(path)
	if !ok {
		return Redirect(PathHome)
	}
	if route.Allows(level) {
		return Render(path)
	}
	return Redirect(route.Fallback(level))
}

// Navigation is a settled chain of guard evaluations.
type Navigation struct {
	Final Action   `json:"final"`
	Hops  []string `json:"hops"`
}

// Settle re-evaluates redirect targets until the guard renders a page or
// shows the loader.
func Settle(path string, level session.AccessLevel, loading bool) (Navigation, error) {
	nav := Navigation{Hops: []string{}}
	seen := map[string]bool{}

	current := normalize(path)
	for {
		action := Decide(current, level, loading)
		if action.Kind != KindRedirect {
			nav.Final = action
			return nav, nil
		}

		seen[current] = true
		nav.Hops = append(nav.Hops, action.Path)
		if seen[action.Path] || len(nav.Hops) > MaxRedirectHops {
			nav.Final = action
			return nav, fmt.Errorf("settle %s at %s: %w", path, level, ErrRedirectLoop)
		}
		current = action.Path
	}
}
