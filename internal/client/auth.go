package client

import (
	"context"
	"sync"
)

// AuthSession tracks the signed-in patient and notifies observers when the
// identity changes. A nil user means signed out.
type AuthSession struct {
	client *Client

	mu        sync.Mutex
	current   *LoginResult
	nextID    int
	listeners map[int]func(*LoginResult)
}

// NewAuthSession creates an auth session bound to the given client.
func NewAuthSession(client *Client) *AuthSession {
	return &AuthSession{
		client:    client,
		listeners: make(map[int]func(*LoginResult)),
	}
}

// CurrentUser returns the signed-in patient, or nil.
func (a *AuthSession) CurrentUser() *LoginResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	user := *a.current
	return &user
}

// SignIn authenticates and broadcasts the new identity.
func (a *AuthSession) SignIn(ctx context.Context, email, password string) (LoginResult, error) {
	result, err := a.client.Login(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}

	a.client.setIdentity(result.PatientID)
	a.setCurrent(&result)
	return result, nil
}

// SignOut clears the identity and broadcasts nil.
func (a *AuthSession) SignOut() {
	a.client.setIdentity("")
	a.setCurrent(nil)
}

// OnChange registers an observer called with the current user on every
// sign-in and sign-out. The returned function unregisters it.
func (a *AuthSession) OnChange(fn func(*LoginResult)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *AuthSession) setCurrent(user *LoginResult) {
	a.mu.Lock()
	a.current = user

	notify := make([]func(*LoginResult), 0, len(a.listeners))
	for _, fn := range a.listeners {
		notify = append(notify, fn)
	}
	a.mu.Unlock()

	for _, fn := range notify {
		fn(user)
	}
}
