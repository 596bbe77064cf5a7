// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package auth forwards authorization from an incoming canvas request to outgoing backend requests.
//
// The canvas does not authenticate users, it passes the caller's credentials through
// so the backend applies its own access rules.
package auth

import (
	"context"
	"net/http"
)

// Context returns an authorization-forwarding context for an incoming request.
func Context(req *http.Request) context.Context {
	return WithAuthorization(req.Context(), req.Header.Get(Header))
}

// WithAuthorization returns a context that forwards the authorization header value auth.
// An empty value is forwarded as no header.
func WithAuthorization(ctx context.Context, auth string) context.Context {
	return context.WithValue(ctx, authKey{}, auth)
}

// Wrap adds authorization-forwarding for outgoing requests with an authorization-forwarding context.
func Wrap(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &roundTripper{next: next}
}

type roundTripper struct{ next http.RoundTripper }

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if auth, ok := req.Context().Value(authKey{}).(string); ok {
		req = req.Clone(req.Context()) // RoundTrippers must not modify the request.
		if auth == "" {
			req.Header.Del(Header)
		} else {
			req.Header.Set(Header, auth)
		}
	}
	return rt.next.RoundTrip(req)
}

type authKey struct{}

const Header = "Authorization"
