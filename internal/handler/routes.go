package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/internal/pipeline"
	"github.com/dharmasatrya/fareradar/internal/storage"
)

type RouteService interface {
	AnalyzeRoute(ctx context.Context, routeID string) (models.AnalysisResult, error)
	RecordSnapshot(ctx context.Context, routeID string) (models.AnalysisResult, error)
}

// RouteHandler manages tracked routes and exposes their price analysis.
type RouteHandler struct {
	service RouteService
	store   storage.Store
}

func NewRouteHandler(service RouteService, store storage.Store) *RouteHandler {
	return &RouteHandler{service: service, store: store}
}

func (h *RouteHandler) List(c echo.Context) error {
	routes, err := h.store.Routes(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	if routes == nil {
		routes = []models.Route{}
	}
	return c.JSON(http.StatusOK, routes)
}

func (h *RouteHandler) Create(c echo.Context) error {
	var route models.Route
	if err := c.Bind(&route); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	req := route.SearchRequest()
	if err := req.Validate(); err != nil {
		return errorJSON(c, err)
	}
	route.ID = ""
	route.Origin, route.Destination = req.Origin, req.Destination
	route.CabinClass, route.Currency = req.CabinClass, req.Currency
	route.CurrentPrice = nil

	saved, err := h.store.SaveRoute(c.Request().Context(), route)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *RouteHandler) Analyze(c echo.Context) error {
	res, err := h.service.AnalyzeRoute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return routeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *RouteHandler) Snapshot(c echo.Context) error {
	res, err := h.service.RecordSnapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return routeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func routeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrRouteNotFound):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "route_not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, pipeline.ErrNoOffers):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "no_offers",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	}
	return errorJSON(c, err)
}
