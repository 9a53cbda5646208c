package middleware

import (
	"context"
	"net/http"
	"strings"

	"loantrack/internal/domain/apperr"
	"loantrack/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const subjectKey = "loantrack.subject"

// Resolver turns a bearer token into an authenticated subject.
type Resolver interface {
	Resolve(ctx context.Context, token string) (identity.Subject, error)
}

// Authenticate requires "Authorization: Bearer <token>" and stores the
// resolved subject on the echo context.
func Authenticate(r Resolver, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorBody("missing bearer token", apperr.KindAuthentication))
			}
			sub, err := r.Resolve(c.Request().Context(), token)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindStore {
					log.Error("resolve subject failed", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, errorBody("internal error", "INTERNAL"))
				}
				return c.JSON(http.StatusUnauthorized, errorBody("invalid or expired token", apperr.KindAuthentication))
			}
			c.Set(subjectKey, sub)
			return next(c)
		}
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...identity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sub, ok := SubjectFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorBody("not authenticated", apperr.KindAuthentication))
			}
			for _, r := range roles {
				if sub.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, errorBody("insufficient role", apperr.KindAuthorization))
		}
	}
}

func SubjectFrom(c echo.Context) (identity.Subject, bool) {
	sub, ok := c.Get(subjectKey).(identity.Subject)
	return sub, ok
}

func bearerToken(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func errorBody(msg string, code apperr.Kind) map[string]string {
	return map[string]string{"error": msg, "code": string(code)}
}
