// Package authstate tracks whether the application currently has an
// authenticated user. It is the client-side source of truth UI layers
// subscribe to.
package authstate

import (
	"context"
	"sync"

	"github.com/taskdeck/taskdeck/client"
)

// Status is the authentication state of the container.
type Status int

const (
	// StatusUnknown means the initial session check has not finished.
	// UI should hold rather than render a logged-out view.
	StatusUnknown Status = iota
	// StatusAuthenticated means a user is logged in.
	StatusAuthenticated
	// StatusAnonymous means there is no session.
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot of the container. User is non-nil exactly when
// Status is StatusAuthenticated.
type State struct {
	Status Status
	User   *client.User
}

// UserSource resolves the current session to a user.
// Implemented by client.Client.
type UserSource interface {
	CurrentUser(ctx context.Context) (*client.User, error)
}

// Container holds the auth state and notifies subscribers on change.
// It starts in StatusUnknown until Mount completes the first check.
type Container struct {
	source UserSource

	mu     sync.RWMutex
	state  State
	subs   map[int]func(State)
	nextID int

	mountOnce sync.Once
}

// New creates a Container in StatusUnknown.
func New(source UserSource) *Container {
	return &Container{
		source: source,
		state:  State{Status: StatusUnknown},
		subs:   make(map[int]func(State)),
	}
}

// Mount performs the initial session check. It is idempotent: repeated
// or concurrent calls run the check once. Any failure, whether a missing
// session or an unreachable server, resolves to StatusAnonymous so the
// UI is never stuck in StatusUnknown.
func (c *Container) Mount(ctx context.Context) {
	c.mountOnce.Do(func() {
		user, err := c.source.CurrentUser(ctx)
		if err != nil {
			c.SetAnonymous()
			return
		}
		c.SetAuthenticated(user)
	})
}

// State returns the current snapshot.
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsAuthenticated reports whether a user is logged in.
func (c *Container) IsAuthenticated() bool {
	return c.State().Status == StatusAuthenticated
}

// SetAuthenticated records a successful login or session check.
func (c *Container) SetAuthenticated(user *client.User) {
	c.setState(State{Status: StatusAuthenticated, User: user})
}

// SetAnonymous records a logout or failed session check.
func (c *Container) SetAnonymous() {
	c.setState(State{Status: StatusAnonymous})
}

// Subscribe registers a callback invoked on every state change.
// The returned function removes the subscription.
func (c *Container) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Container) setState(state State) {
	c.mu.Lock()
	c.state = state
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
