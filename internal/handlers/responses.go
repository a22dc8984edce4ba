package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/stocktrack/internal/middleware"
	"github.com/epeers/stocktrack/internal/models"
	"github.com/epeers/stocktrack/internal/services"
	"github.com/gin-gonic/gin"
)

// viewModelFor returns the caller's view-model, writing an error response
// when the caller is unauthenticated or the session failed to bootstrap
func viewModelFor(c *gin.Context, registry *services.Registry) (*services.ViewModel, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return nil, false
	}

	vm := registry.Get(userID)
	if msg := vm.BootstrapError(); msg != "" {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "bootstrap_failed",
			Message: msg,
		})
		return nil, false
	}
	return vm, true
}

// respondAction writes the post-action view state, or the action's error
func respondAction(c *gin.Context, vm *services.ViewModel, wc *services.WarningCollector, err error) {
	if err != nil {
		status, code := actionStatus(err)
		c.JSON(status, models.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	resp := models.ActionResponse{State: vm.State()}
	if wc != nil {
		resp.Warnings = wc.GetWarnings()
	}
	c.JSON(http.StatusOK, resp)
}

func actionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, services.ErrRemote):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}
