package handlers

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a content-derived ETag. A matching
// If-None-Match on a 200 turns into 304 with no body. The tag hashes the exact
// bytes written.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	tag := contentETag(body)
	ctx.Header("ETag", tag)
	// clients may cache but must revalidate; posts change under them
	ctx.Header("Cache-Control", "no-cache")

	if status == http.StatusOK && etagListMatches(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func contentETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + base64.RawURLEncoding.EncodeToString(sum[:18]) + `"`
}

// etagListMatches applies the weak comparison If-None-Match calls for.
func etagListMatches(header, tag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	want := strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
