package testutil

import (
	"net/http"
	"time"

	id "confpaper/pkg/domain"
	"confpaper/pkg/requestcontext"
)

// WithIdentity stamps req with the user and roles the auth middleware would
// have placed on an authenticated request.
func WithIdentity(req *http.Request, userID id.UserID, roles ...id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRoles(ctx, roles)
	return req.WithContext(ctx)
}

// AsCaller is middleware that authenticates every request as whoever who
// returns at the time of the call. A non-zero now pins the request time.
func AsCaller(who func() (id.UserID, []id.Role), now time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, roles := who()
			r = WithIdentity(r, userID, roles...)
			if !now.IsZero() {
				r = r.WithContext(requestcontext.WithTime(r.Context(), now))
			}
			next.ServeHTTP(w, r)
		})
	}
}
