package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/blogspace/internal/actorctx"
	"github.com/geocoder89/blogspace/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate resolves the caller from a bearer token when one is present.
// It never rejects: a missing or bad token just leaves the request anonymous,
// and each handler decides whether it needs an identity.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			c.Next()
			return
		}

		id := auth.IdentityFromClaims(claims)
		c.Set(CtxIdentity, &id)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), id.ID))

		c.Next()
	}
}

// RequireAuth rejects anonymous requests. Use it on routes that have no path
// parameters to validate first.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":      "unauthorized",
					"message":   "Missing or invalid access token",
					"requestId": c.GetString(CtxRequestID),
				},
			})
			return
		}
		c.Next()
	}
}

func IdentityFromContext(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*auth.Identity)
	return id, ok && id != nil && id.ID != ""
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
