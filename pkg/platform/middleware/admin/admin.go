package admin

import (
	"log/slog"
	"net/http"

	id "confpaper/pkg/domain"
	request "confpaper/pkg/platform/middleware/request"
	"confpaper/pkg/requestcontext"
)

// RequirePrivileged admits only callers holding an admin or chair role.
// It must run after auth.RequireAuth.
func RequirePrivileged(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !id.AnyPrivileged(requestcontext.Roles(ctx)) {
				logger.WarnContext(ctx, "privileged route denied",
					"user_id", requestcontext.UserID(ctx),
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"chair or admin role required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
