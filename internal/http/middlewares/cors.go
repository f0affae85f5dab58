package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders  = "Authorization,Content-Type,If-None-Match,X-Request-Id"
	corsExposeHeaders = "ETag,Retry-After,X-Request-Id"
	corsMaxAge        = "600"
)

// CORSMiddleware answers browser clients of the blog API. "*" in
// allowedOrigins opens reads and writes to any origin but never sends
// credentials. Preflights stop here with 204.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := false

	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			anyOrigin = true
			continue
		}
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")

		if origin != "" {
			ctx.Writer.Header().Add("Vary", "Origin")

			_, listed := allowed[origin]
			switch {
			case listed:
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
			case anyOrigin:
				ctx.Header("Access-Control-Allow-Origin", "*")
			}

			if listed || anyOrigin {
				ctx.Header("Access-Control-Expose-Headers", corsExposeHeaders)
				if ctx.Request.Method == http.MethodOptions {
					ctx.Header("Access-Control-Allow-Methods", corsAllowMethods)
					ctx.Header("Access-Control-Allow-Headers", corsAllowHeaders)
					ctx.Header("Access-Control-Max-Age", corsMaxAge)
				}
			}
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
