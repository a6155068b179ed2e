package testutil

import (
	"net/http"

	"dealer/pkg/requestcontext"
)

// WithActor attaches an actor and roles to the request context, as the auth
// middleware does for a valid bearer token.
func WithActor(req *http.Request, actor string, roles ...string) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), actor)
	ctx = requestcontext.WithRoles(ctx, roles)
	return req.WithContext(ctx)
}

func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
