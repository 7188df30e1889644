// Package router decides which screen the client shows for a requested
// path, given whether a user is signed in.
package router

import (
	"strings"
	"sync"
)

// Route is a screen of the client.
type Route string

const (
	Login Route = "login"
	Home  Route = "home"
	Todos Route = "todos"
)

var paths = map[Route]string{
	Login: "/login",
	Home:  "/",
	Todos: "/todos",
}

// Path returns the URL-style path of r.
func (r Route) Path() string {
	return paths[r]
}

// Protected reports whether r requires a signed-in user.
func (r Route) Protected() bool {
	return r != Login
}

// Match maps a path to its route. Unknown paths resolve to Home.
func Match(path string) Route {
	p := strings.TrimSpace(path)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	for r, rp := range paths {
		if p == rp {
			return r
		}
	}
	return Home
}

// Resolve returns the route that is actually shown when r is requested.
func Resolve(r Route, authenticated bool) Route {
	switch {
	case r.Protected() && !authenticated:
		return Login
	case r == Login && authenticated:
		return Home
	default:
		return r
	}
}

// Navigator holds the current route.
type Navigator struct {
	mu      sync.RWMutex
	current Route
	auth    func() bool
}

// NewNavigator starts at the route resolved for Home. authenticated is
// consulted on every navigation.
func NewNavigator(authenticated func() bool) *Navigator {
	n := &Navigator{auth: authenticated}
	n.current = Resolve(Home, authenticated())
	return n
}

// Go navigates to r through the guard and returns where it landed.
func (n *Navigator) Go(r Route) Route {
	to := Resolve(r, n.auth())
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = to
	return to
}

// Redirect forces the current route without consulting the guard. It is
// used when the session has just been dropped.
func (n *Navigator) Redirect(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = r
}

func (n *Navigator) Current() Route {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}
