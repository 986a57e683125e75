package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	library "lending-service/internal/domain/library"
)

// actorKey is the gin context key the resolved actor is stored under.
const actorKey = "actor"

// ActorResolver turns a user id into an acting identity.
type ActorResolver interface {
	Resolve(ctx context.Context, userID int64) (*library.Actor, error)
}

// Actor resolves the acting identity from the X-User-ID header against
// the users collection and stashes it in the request context. A missing
// or unknown id leaves the request anonymous; operations decide for
// themselves whether that is acceptable.
func Actor(resolver ActorResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			c.Next()
			return
		}

		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			c.Next()
			return
		}

		actor, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			log.Warn("failed to resolve actor", zap.Int64("user_id", id), zap.Error(err))
			c.Next()
			return
		}
		if actor != nil {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

// CurrentActor returns the resolved actor, or nil for anonymous requests.
func CurrentActor(c *gin.Context) *library.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, ok := v.(*library.Actor)
	if !ok {
		return nil
	}
	return actor
}

// RequireAdmin aborts with 403 unless the actor has the admin role, or
// 401 when there is no actor at all.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "sign in required",
			})
			return
		}
		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin role required",
			})
			return
		}
		c.Next()
	}
}
