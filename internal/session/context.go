package session

import (
	"context"
	"errors"
	"net/http"
)

// Context binds the session store to a single HTTP exchange. It replaces
// ambient session globals: handlers build one per request and pass it to the
// auth lifecycle explicitly.
type Context struct {
	store        *Store
	w            http.ResponseWriter
	r            *http.Request
	isProduction bool
}

func NewContext(store *Store, w http.ResponseWriter, r *http.Request, isProduction bool) *Context {
	return &Context{
		store:        store,
		w:            w,
		r:            r,
		isProduction: isProduction,
	}
}

// Current returns the principal for the request's session cookie, or
// ErrNoSession. A cookie pointing at a vanished session is cleared.
func (c *Context) Current(ctx context.Context) (*Principal, error) {
	id, err := readSessionCookie(c.r, c.store.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	p, err := c.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			clearSessionCookie(c.w, c.store.cookieName, c.isProduction)
		}
		return nil, err
	}

	return p, nil
}

// Establish creates a session for the principal and sets the cookie. An
// existing session for the request is replaced. Persistence completes before
// Establish returns.
func (c *Context) Establish(ctx context.Context, p *Principal) error {
	if id, err := readSessionCookie(c.r, c.store.cookieName); err == nil {
		_ = c.store.Delete(ctx, id)
	}

	id, err := c.store.Create(ctx, p)
	if err != nil {
		return err
	}

	setSessionCookie(c.w, c.store.cookieName, id, c.store.ttl, c.isProduction)
	return nil
}

// Destroy removes the session state and clears the cookie.
func (c *Context) Destroy(ctx context.Context) error {
	id, err := readSessionCookie(c.r, c.store.cookieName)
	if err != nil {
		return ErrNoSession
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	clearSessionCookie(c.w, c.store.cookieName, c.isProduction)
	return nil
}
