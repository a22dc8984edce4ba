package handlers

import (
	"io"
	"net/http"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/services"
	"github.com/gin-gonic/gin"
)

// ViewHandler handles view state, symbol search and quote endpoints
type ViewHandler struct {
	registry *services.Registry
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(registry *services.Registry) *ViewHandler {
	return &ViewHandler{registry: registry}
}

// GetState handles GET /state
// @Summary Get view state
// @Description Get the caller's full view state
// @Tags view
// @Produce json
// @Success 200 {object} models.ViewState
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /state [get]
func (h *ViewHandler) GetState(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, vm.State())
}

// Events handles GET /events
// @Summary Stream view state
// @Description Server-sent events; one "state" event per view state change
// @Tags view
// @Produce text/event-stream
// @Success 200 {object} models.ViewState
// @Failure 401 {object} models.ErrorResponse
// @Router /events [get]
func (h *ViewHandler) Events(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	states := vm.Subscribe(c.Request.Context())
	c.Stream(func(w io.Writer) bool {
		st, ok := <-states
		if !ok {
			return false
		}
		c.SSEvent("state", st)
		return true
	})
}

// SetInput handles PUT /input
// @Summary Update the symbol input
// @Description Set the search text; suggestions follow after a quiet period
// @Tags view
// @Accept json
// @Produce json
// @Param request body models.SymbolInputRequest true "Symbol input"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /input [put]
func (h *ViewHandler) SetInput(c *gin.Context) {
	var req models.SymbolInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	vm.SetSymbolInput(req.Symbol)
	respondAction(c, vm, nil, nil)
}

// SelectSuggestion handles POST /suggestions/select
// @Summary Pick a suggestion
// @Description Fill the input with the chosen symbol and clear the suggestion list
// @Tags view
// @Accept json
// @Produce json
// @Param request body models.SelectSuggestionRequest true "Chosen symbol"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /suggestions/select [post]
func (h *ViewHandler) SelectSuggestion(c *gin.Context) {
	var req models.SelectSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	vm.SelectSuggestion(req.Symbol)
	respondAction(c, vm, nil, nil)
}

// DismissSuggestions handles POST /suggestions/dismiss
// @Summary Hide suggestions
// @Tags view
// @Produce json
// @Success 200 {object} models.ActionResponse
// @Router /suggestions/dismiss [post]
func (h *ViewHandler) DismissSuggestions(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	vm.DismissSuggestions()
	respondAction(c, vm, nil, nil)
}

// FetchQuote handles POST /quote
// @Summary Fetch a quote
// @Description Look up the live quote for the current symbol input
// @Tags view
// @Produce json
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /quote [post]
func (h *ViewHandler) FetchQuote(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	err := vm.FetchQuote(ctx)
	respondAction(c, vm, wc, err)
}
