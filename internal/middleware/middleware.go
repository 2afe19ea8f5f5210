package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadawaker/internal/access"
	"leadawaker/internal/logger"
	"leadawaker/internal/models"
	"leadawaker/internal/repo"
	"leadawaker/internal/utils"
)

// UserLookup loads the current state of a user named by a token.
type UserLookup interface {
	GetUser(ctx context.Context, id int) (models.User, error)
}

// AuthMiddleware validates the bearer token and stores the caller's id, role
// and account from its claims in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return Authenticate(nil)(next)
}

// Authenticate is AuthMiddleware backed by the user table: role and account
// come from the stored user, so a role change or deactivation applies to
// tokens already issued. A nil lookup trusts the claims.
func Authenticate(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.RespondError(w, http.StatusUnauthorized, "Bearer token required")
				return
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			role, accountID := claims.Role, claims.AccountID
			if users != nil {
				user, err := users.GetUser(r.Context(), claims.UserID)
				switch {
				case errors.Is(err, repo.ErrNotFound):
					utils.RespondError(w, http.StatusUnauthorized, "User no longer exists")
					return
				case err != nil:
					utils.RespondError(w, http.StatusInternalServerError, "Database error")
					return
				case user.Status == models.UserStatusInactive:
					utils.RespondError(w, http.StatusUnauthorized, "User is inactive, Contact administrator to configure your user")
					return
				}
				role, accountID = user.Role, user.AccountID
			}

			ctx := context.WithValue(r.Context(), models.UserIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, models.RoleContextKey, role)
			ctx = context.WithValue(ctx, models.AccountIDContextKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability rejects callers whose role lacks c. Must run after AuthMiddleware.
func RequireCapability(g *access.Guard, c access.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := access.ParseRole(RoleFrom(r.Context()))
			if !ok || !g.Allowed(role, c) {
				utils.RespondError(w, http.StatusForbidden, "Missing permission "+string(c))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request and tags it with an X-Request-ID.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			ctx := context.WithValue(r.Context(), models.RequestIDContextKey, reqID)
			next.ServeHTTP(rec, r.WithContext(ctx))

			log.With("request_id", reqID).Info("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func UserIDFrom(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(models.UserIDContextKey).(int)
	return id, ok && id > 0
}

func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(models.RoleContextKey).(string)
	return role
}

func AccountIDFrom(ctx context.Context) int {
	id, _ := ctx.Value(models.AccountIDContextKey).(int)
	return id
}
