// Package confighandlers is the in-process side of the REST configuration
// contract: a stateless route->handler map the REST collaborator dispatches
// into, with glob-pattern route matching.
package confighandlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"barracuda/internal/app/errors"
)

// Handler is stateless with respect to the registry: its Handle method
// takes no receiver-level lock, so the registry can hand out the same
// value to every caller without a take-and-reinsert dance.
type Handler interface {
	Handle(body []byte) ([]byte, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(body []byte) ([]byte, error)

// Handle calls f.
func (f HandlerFunc) Handle(body []byte) ([]byte, error) { return f(body) }

type binding struct {
	method  string
	pattern string
	glob    glob.Glob
	handler Handler
}

// Registry maps "METHOD route" keys - route may contain glob wildcards,
// e.g. "PUT wl/*" - to a Handler. Registration happens once during
// HighLevelInit; dispatch is read-only and safe for concurrent callers.
type Registry struct {
	mu       sync.RWMutex
	bindings []binding
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register binds handler to method+route. Route may use glob syntax.
// Registering the same exact method+route twice returns ErrRouteAlreadyBound.
func (r *Registry) Register(method, route string, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bindings {
		if b.method == method && b.pattern == route {
			return errors.ErrRouteAlreadyBound
		}
	}

	g, err := glob.Compile(route, '/')
	if err != nil {
		return fmt.Errorf("compiling route pattern %q: %w", route, err)
	}

	r.bindings = append(r.bindings, binding{method: method, pattern: route, glob: g, handler: handler})

	return nil
}

// Status mirrors the three outcomes the REST collaborator maps onto HTTP
// status codes.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusNotFound
)

// Dispatch looks up the handler bound to method+route (route matched
// against every registered glob pattern for that method) and invokes it.
func (r *Registry) Dispatch(method, route string, body []byte) ([]byte, Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bindings {
		if b.method != method {
			continue
		}

		if b.glob.Match(route) {
			out, err := b.handler.Handle(body)
			if err != nil {
				return nil, StatusNotFound, err
			}

			if len(out) == 0 {
				return nil, StatusEmpty, nil
			}

			return out, StatusOK, nil
		}
	}

	return nil, StatusNotFound, errors.ErrRouteNotFound
}

// HTTPStatus maps a Status to the status code the REST collaborator
// contract names.
func HTTPStatus(s Status) int {
	switch s {
	case StatusOK:
		return http.StatusOK
	case StatusEmpty:
		return 406
	default:
		return http.StatusNotFound
	}
}

// Key formats a method+route pair the way registrations are logged.
func Key(method, route string) string {
	return strings.ToUpper(method) + " " + route
}
