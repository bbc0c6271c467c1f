// Package auth decides who may mutate content. There is one admin account;
// a successful login yields a signed session token carried in a cookie.
package auth

import "context"

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "admin-session"

type adminKey struct{}

// WithAdmin marks ctx as belonging to the authenticated admin.
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey{}, true)
}

// IsAdmin reports whether ctx was marked by WithAdmin.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(adminKey{}).(bool)
	return ok
}
