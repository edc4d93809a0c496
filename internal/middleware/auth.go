package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emonotate/emonotate/internal/infra/cache"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
)

// SessionAuth rejects requests without a live session with 401.
// The resolved user is stored under "user".
func SessionAuth(auth service.AuthService, cookieName string) gin.HandlerFunc {
	return sessionAuth(auth, cookieName, true)
}

// OptionalAuth resolves the session when present and never rejects.
func OptionalAuth(auth service.AuthService, cookieName string) gin.HandlerFunc {
	return sessionAuth(auth, cookieName, false)
}

func sessionAuth(auth service.AuthService, cookieName string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := otel.Tracer("middleware").Start(c.Request.Context(), "session_auth",
			trace.WithAttributes(attribute.String("middleware", "session_auth")))

		reject := func() {
			span.SetAttributes(attribute.Bool("authenticated", false))
			span.End()
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			c.Next()
		}

		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			reject()
			return
		}

		u, err := auth.ResolveSession(ctx, token)
		if err != nil {
			if errors.Is(err, cache.ErrSessionNotFound) {
				reject()
				return
			}
			span.RecordError(err)
			span.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.Int64("user_id", int64(u.ID)))
		}
		span.SetAttributes(
			attribute.Int64("user_id", int64(u.ID)),
			attribute.Bool("authenticated", true),
		)
		span.End()

		c.Set("user", u)
		c.Next()
	}
}

func userFrom(c *gin.Context) *model.EmailUser {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, _ := v.(*model.EmailUser)
	return u
}

// RequirePerm answers 403 unless the session user holds perm.
// Must run after SessionAuth.
func RequirePerm(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := userFrom(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		if !u.IsStaff && !u.HasPerm(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr(""))
			return
		}
		c.Next()
	}
}

// RequireStaff answers 403 for non-staff users.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := userFrom(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		if !u.IsStaff && !u.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr(""))
			return
		}
		c.Next()
	}
}
