package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the identity runs are scoped to.
func meHandler(c *gin.Context) {
	clientID := middleware.ClientIDFromContext(c)
	respond.JSON(c, http.StatusOK, gin.H{
		"clientId":  clientID,
		"anonymous": clientID == middleware.AnonymousClient,
	})
}
