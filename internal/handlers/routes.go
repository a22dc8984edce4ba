package handlers

import (
	"github.com/epeers/stocktrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the session and view-model routes on router
func RegisterRoutes(router gin.IRouter, verifier middleware.TokenVerifier, session *SessionHandler, view *ViewHandler, portfolio *PortfolioHandler) {
	router.POST("/session", session.Start)

	authed := router.Group("/")
	authed.Use(middleware.Authenticate(verifier), middleware.RequireAuth())

	authed.GET("/state", view.GetState)
	authed.GET("/events", view.Events)
	authed.PUT("/input", view.SetInput)
	authed.POST("/suggestions/select", view.SelectSuggestion)
	authed.POST("/suggestions/dismiss", view.DismissSuggestions)
	authed.POST("/quote", view.FetchQuote)

	authed.POST("/portfolios", portfolio.Create)
	authed.PUT("/portfolios/active", portfolio.Select)
	authed.PUT("/portfolios/form", portfolio.SetForm)
	authed.DELETE("/portfolios/:id", portfolio.Delete)

	authed.POST("/holdings", portfolio.AddHolding)
	authed.POST("/holdings/reorder", portfolio.Reorder)
	authed.DELETE("/holdings/:symbol", portfolio.RemoveHolding)
}
