package handlers

import (
	"fmt"
	"net/http"

	"github.com/epeers/stocktrack/internal/auth"
	"github.com/epeers/stocktrack/internal/middleware"
	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SessionHandler handles identity bootstrap
type SessionHandler struct {
	provider *auth.Provider
	registry *services.Registry
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(provider *auth.Provider, registry *services.Registry) *SessionHandler {
	return &SessionHandler{
		provider: provider,
		registry: registry,
	}
}

// Start handles POST /session
// @Summary Start a session
// @Description Resume the identity behind a presented bearer token, or sign in anonymously
// @Tags session
// @Produce json
// @Param Authorization header string false "Bearer session token"
// @Success 200 {object} models.SessionResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /session [post]
func (h *SessionHandler) Start(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token != "" {
		if _, err := h.provider.Verify(token); err != nil {
			log.Debugf("ignoring unverifiable session token: %v", err)
			token = ""
		}
	}

	session := h.provider.NewSession()
	if err := session.Start(c.Request.Context(), token); err != nil {
		log.Errorf("Error signing in: %v", err)
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "bootstrap_failed",
			Message: fmt.Sprintf("Authentication error: %v", err),
		})
		return
	}

	user := session.CurrentUser()
	h.registry.Open(user.ID)

	c.JSON(http.StatusOK, models.SessionResponse{
		UserID:    user.ID,
		Token:     session.Token(),
		Anonymous: user.Anonymous,
	})
}
