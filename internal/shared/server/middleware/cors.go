package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const corsMaxAge = 600

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}, ",")
	corsHeaders = strings.Join([]string{"Content-Type", ClientIDHeader, RequestIDHeader}, ", ")
	corsExposed = strings.Join([]string{RequestIDHeader, "Retry-After", "Content-Disposition"}, ", ")
)

type originSet struct {
	any     bool
	origins map[string]bool
}

func newOriginSet(allowed []string) originSet {
	set := originSet{origins: make(map[string]bool)}
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			set.any = true
		default:
			set.origins[o] = true
		}
	}
	return set
}

func (s originSet) allows(origin string) bool {
	return origin != "" && (s.any || s.origins[origin])
}

// CORS answers preflights for the screening API and decorates responses to
// allowed origins. "*" allows every origin but never with credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	set := newOriginSet(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		if set.allows(origin) {
			h := c.Writer.Header()
			h.Add("Vary", "Origin")
			if set.any && !set.origins[origin] {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Expose-Headers", corsExposed)
			if preflight {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
			}
		}

		if preflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
