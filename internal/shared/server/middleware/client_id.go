package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/respond"
)

const (
	clientIDKey = "clientId"

	// ClientIDHeader carries the opaque identity that owns screening runs.
	ClientIDHeader = "X-Client-Id"
	// AnonymousClient owns runs created without a client header.
	AnonymousClient = "anonymous"

	maxClientIDLength = 128
)

// ClientID resolves the caller identity from the X-Client-Id header and stores it in context.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		id := strings.TrimSpace(c.GetHeader(ClientIDHeader))
		if id == "" {
			id = AnonymousClient
		}
		if !validClientID(id) {
			respond.Error(c, http.StatusBadRequest, respond.CodeInvalidClientID, "X-Client-Id must be 1-128 letters, digits, '-', '_', ':' or '.'", nil)
			return
		}

		c.Set(clientIDKey, id)
		c.Next()
	}
}

// ClientIDFromContext fetches the client ID set by the ClientID middleware.
func ClientIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(clientIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

func validClientID(id string) bool {
	if len(id) > maxClientIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}
