package handlers

import (
	"net/http"
	"strings"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/services"
	"github.com/gin-gonic/gin"
)

// PortfolioHandler handles portfolio and holding endpoints
type PortfolioHandler struct {
	registry *services.Registry
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(registry *services.Registry) *PortfolioHandler {
	return &PortfolioHandler{registry: registry}
}

// Create handles POST /portfolios
// @Summary Create a portfolio
// @Description Create an empty portfolio and make it active. An empty name uses the create-form name.
// @Tags portfolios
// @Accept json
// @Produce json
// @Param request body models.CreatePortfolioRequest true "Portfolio name"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /portfolios [post]
func (h *PortfolioHandler) Create(c *gin.Context) {
	var req models.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	err := vm.CreatePortfolio(c.Request.Context(), req.Name)
	respondAction(c, vm, nil, err)
}

// Delete handles DELETE /portfolios/:id
// @Summary Delete a portfolio
// @Description Delete a portfolio. The last remaining portfolio cannot be deleted.
// @Tags portfolios
// @Produce json
// @Param id path string true "Portfolio ID"
// @Success 200 {object} models.ActionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /portfolios/{id} [delete]
func (h *PortfolioHandler) Delete(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	err := vm.DeletePortfolio(c.Request.Context(), c.Param("id"))
	respondAction(c, vm, nil, err)
}

// Select handles PUT /portfolios/active
// @Summary Select the active portfolio
// @Tags portfolios
// @Accept json
// @Produce json
// @Param request body models.SelectPortfolioRequest true "Portfolio ID"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /portfolios/active [put]
func (h *PortfolioHandler) Select(c *gin.Context) {
	var req models.SelectPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	vm.SelectPortfolio(req.ID)
	respondAction(c, vm, nil, nil)
}

// SetForm handles PUT /portfolios/form
// @Summary Update the create-portfolio form
// @Tags portfolios
// @Accept json
// @Produce json
// @Param request body models.CreateFormRequest true "Form state"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /portfolios/form [put]
func (h *PortfolioHandler) SetForm(c *gin.Context) {
	var req models.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	vm.SetCreateForm(req.Open, req.Name)
	respondAction(c, vm, nil, nil)
}

// AddHolding handles POST /holdings
// @Summary Add the displayed quote
// @Description Append the displayed quote to the active portfolio
// @Tags holdings
// @Produce json
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /holdings [post]
func (h *PortfolioHandler) AddHolding(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	err := vm.AddToPortfolio(c.Request.Context())
	respondAction(c, vm, nil, err)
}

// RemoveHolding handles DELETE /holdings/:symbol
// @Summary Remove a holding
// @Tags holdings
// @Produce json
// @Param symbol path string true "Ticker symbol"
// @Success 200 {object} models.ActionResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /holdings/{symbol} [delete]
func (h *PortfolioHandler) RemoveHolding(c *gin.Context) {
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	err := vm.RemoveFromPortfolio(c.Request.Context(), strings.ToUpper(c.Param("symbol")))
	respondAction(c, vm, nil, err)
}

// Reorder handles POST /holdings/reorder
// @Summary Reorder holdings
// @Description Move the dragged holding to the target holding's position
// @Tags holdings
// @Accept json
// @Produce json
// @Param request body models.ReorderRequest true "Dragged and target symbols"
// @Success 200 {object} models.ActionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /holdings/reorder [post]
func (h *PortfolioHandler) Reorder(c *gin.Context) {
	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "dragged and target symbols are required",
		})
		return
	}
	vm, ok := viewModelFor(c, h.registry)
	if !ok {
		return
	}

	err := vm.Reorder(c.Request.Context(), req.Dragged, req.Target)
	respondAction(c, vm, nil, err)
}
