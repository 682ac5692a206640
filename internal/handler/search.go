package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/fareradar/internal/models"
)

type SearchService interface {
	SearchAndScore(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

type SearchHandler struct {
	service SearchService
}

func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search answers with 200 for both "ok" and "no_offers" results; only a bad
// request body or failed validation is a client error.
func (h *SearchHandler) Search(c echo.Context) error {
	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	resp, err := h.service.SearchAndScore(c.Request().Context(), req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func errorJSON(c echo.Context, err error) error {
	var verr models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Register mounts the API on e. routes may be nil when no store is configured.
func Register(e *echo.Echo, search *SearchHandler, routes *RouteHandler) {
	e.GET("/health", HealthHandler)

	api := e.Group("/api/v1")
	api.POST("/flights/search", search.Search)

	if routes != nil {
		api.GET("/routes", routes.List)
		api.POST("/routes", routes.Create)
		api.GET("/routes/:id/analysis", routes.Analyze)
		api.POST("/routes/:id/snapshots", routes.Snapshot)
	}
}
